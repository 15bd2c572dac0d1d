package interaction

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/chat"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/llm"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/router"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/speech"
	"go.uber.org/zap"
)

// Fixed user-facing strings for degraded turns.
const (
	NotConfiguredMessage  = "AI service not configured. Please add OPENAI_API_KEY (or the Ark credentials) to your .env file."
	ApologyMessage        = "Sorry, I encountered an error. Please check your API key and try again."
	ExampleApologyMessage = "Sorry, I encountered an error. Please try again."
)

// Model tags for degraded turns.
const (
	ModelNotConfigured = "llm-not-configured"
	ModelError         = "llm-error"
)

// ErrBusy is returned when an event arrives while a turn is processing.
// Callers drop the event.
var ErrBusy = errors.New("turn already in progress")

// State is the controller's position in the listen/process cycle.
type State int

const (
	Idle State = iota
	Listening
	Processing
)

func (s State) String() string {
	switch s {
	case Listening:
		return "listening"
	case Processing:
		return "processing"
	default:
		return "idle"
	}
}

// Router resolves a query to a reply.
type Router interface {
	Route(ctx context.Context, query string, history []chat.Message) (router.Result, error)
}

// Conversation is the per-session history.
type Conversation interface {
	History() []chat.Message
	AppendUser(content string) chat.Message
	AppendAssistant(content string) chat.Message
}

// Recorder logs completed turns.
type Recorder interface {
	Record(ctx context.Context, userInput, aiResponse string, meta turnlog.Metadata) turnlog.Record
	RecordWelcome(ctx context.Context) (turnlog.Record, bool)
}

// Readiness reports whether the model backend has credentials.
type Readiness interface {
	Configured() bool
}

// Observer counts turns and dropped events.
type Observer interface {
	ObserveTurn(provenance, outcome string, seconds float64)
	ObserveDropped(event string)
}

// Deps are the collaborators of one controller.
type Deps struct {
	Router         Router
	Conversation   Conversation
	Recorder       Recorder
	Speaker        speech.Speaker
	LLM            Readiness
	WelcomeMessage string
	Observer       Observer
	Logger         *zap.Logger
}

// Turn describes what a finished turn produced.
type Turn struct {
	UserInput  string
	Reply      string
	Provenance string
	Degraded   bool
	Record     turnlog.Record
}

// Controller sequences one session's turns: route, update the conversation,
// record, speak. At most one turn runs at a time.
type Controller struct {
	deps   Deps
	logger *zap.Logger

	mu    sync.Mutex
	state State
}

func New(deps Deps) *Controller {
	if deps.Speaker == nil {
		deps.Speaker = speech.Discard{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Controller{deps: deps, logger: deps.Logger.Named("interaction")}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// StartListening moves Idle to Listening and silences playback.
func (c *Controller) StartListening() error {
	c.mu.Lock()
	if c.state == Processing {
		c.mu.Unlock()
		c.dropped("start")
		return ErrBusy
	}
	c.state = Listening
	c.mu.Unlock()

	c.deps.Speaker.Stop()
	return nil
}

// StopListening returns to Idle without processing anything.
func (c *Controller) StopListening() {
	c.mu.Lock()
	if c.state == Listening {
		c.state = Idle
	}
	c.mu.Unlock()
}

// Finalize processes a final transcript. Blank input returns to Idle and
// yields router.ErrInvalidInput; an overlapping call yields ErrBusy.
func (c *Controller) Finalize(ctx context.Context, transcript string) (Turn, error) {
	p, err := c.BeginTranscript(transcript)
	if err != nil {
		return Turn{}, err
	}
	return p.Run(ctx)
}

// SubmitExample runs an example prompt with its quotes removed.
func (c *Controller) SubmitExample(ctx context.Context, example string) (Turn, error) {
	p, err := c.BeginExample(example)
	if err != nil {
		return Turn{}, err
	}
	return p.Run(ctx)
}

// BeginTranscript claims the controller for a final transcript without
// running it. Events are ordered by when they are claimed, so a caller that
// runs turns in the background claims first and runs second.
func (c *Controller) BeginTranscript(transcript string) (*Pending, error) {
	return c.begin(transcript, "transcript", ApologyMessage)
}

// BeginExample claims the controller for an example prompt.
func (c *Controller) BeginExample(example string) (*Pending, error) {
	return c.begin(strings.ReplaceAll(example, `"`, ""), "example", ExampleApologyMessage)
}

// Welcome records and speaks the greeting the first time it is called.
func (c *Controller) Welcome(ctx context.Context) bool {
	if _, ok := c.deps.Recorder.RecordWelcome(ctx); !ok {
		return false
	}
	c.speak(ctx, c.deps.WelcomeMessage)
	return true
}

func (c *Controller) begin(input, event, apology string) (*Pending, error) {
	text := strings.TrimSpace(input)

	c.mu.Lock()
	if c.state == Processing {
		c.mu.Unlock()
		c.dropped(event)
		return nil, ErrBusy
	}
	if text == "" {
		c.state = Idle
		c.mu.Unlock()
		return nil, router.ErrInvalidInput
	}
	c.state = Processing
	c.mu.Unlock()

	return &Pending{c: c, text: text, apology: apology}, nil
}

// Pending is a claimed turn. The controller stays in Processing until Run
// returns, so Run must be called exactly once.
type Pending struct {
	c       *Controller
	text    string
	apology string
}

// Text is the trimmed input the turn will answer.
func (p *Pending) Text() string { return p.text }

// Run executes the turn and returns the controller to Idle. When ctx ends
// before a reply arrives the turn is abandoned: nothing is recorded or
// spoken and ctx.Err() is returned.
func (p *Pending) Run(ctx context.Context) (Turn, error) {
	defer p.c.setState(Idle)
	return p.c.runTurn(ctx, p.text, p.apology)
}

func (c *Controller) runTurn(ctx context.Context, text, apology string) (Turn, error) {
	start := time.Now()

	if c.deps.LLM != nil && !c.deps.LLM.Configured() {
		return c.degrade(ctx, text, NotConfiguredMessage, ModelNotConfigured, "not_configured", start), nil
	}

	result, err := c.deps.Router.Route(ctx, text, c.deps.Conversation.History())
	if err != nil {
		if ctx.Err() != nil {
			c.logger.Debug("turn abandoned", zap.String("input", text), zap.Error(err))
			c.observe(ModelError, "canceled", start)
			return Turn{}, ctx.Err()
		}
		c.logger.Warn("turn failed", zap.String("input", text), zap.Error(err))
		if errors.Is(err, llm.ErrNotConfigured) {
			return c.degrade(ctx, text, NotConfiguredMessage, ModelNotConfigured, "not_configured", start), nil
		}
		return c.degrade(ctx, text, apology, ModelError, "upstream_error", start), nil
	}

	c.deps.Conversation.AppendUser(text)
	c.deps.Conversation.AppendAssistant(result.Reply)

	rec := c.deps.Recorder.Record(ctx, text, result.Reply, turnlog.Metadata{
		ProcessingTimeMs: result.TookMs,
		Model:            result.Provenance,
	})
	c.observe(result.Provenance, "ok", start)
	c.speak(ctx, result.Reply)

	return Turn{UserInput: text, Reply: result.Reply, Provenance: result.Provenance, Record: rec}, nil
}

// degrade speaks and records a fixed message; the conversation is untouched.
func (c *Controller) degrade(ctx context.Context, text, message, model, outcome string, start time.Time) Turn {
	rec := c.deps.Recorder.Record(ctx, text, message, turnlog.Metadata{
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Model:            model,
	})
	c.observe(model, outcome, start)
	c.speak(ctx, message)

	return Turn{UserInput: text, Reply: message, Provenance: model, Degraded: true, Record: rec}
}

func (c *Controller) speak(ctx context.Context, text string) {
	if err := c.deps.Speaker.Speak(ctx, text); err != nil {
		c.logger.Warn("playback failed", zap.Error(err))
	}
}

func (c *Controller) observe(provenance, outcome string, start time.Time) {
	if c.deps.Observer != nil {
		c.deps.Observer.ObserveTurn(provenance, outcome, time.Since(start).Seconds())
	}
}

func (c *Controller) dropped(event string) {
	c.logger.Debug("event dropped while processing", zap.String("event", event))
	if c.deps.Observer != nil {
		c.deps.Observer.ObserveDropped(event)
	}
}
