package voice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/crystal-voice/backend/internal/middleware"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/assistant"
	speechModel "github.com/zhouzirui/crystal-voice/backend/internal/model/speech"
	chatservice "github.com/zhouzirui/crystal-voice/backend/internal/service/chat"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/interaction"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/recorder"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/router"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingInterval = 54 * time.Second
)

// Sessions 管理每个连接对应的对话。
type Sessions interface {
	CreateSession(ctx context.Context) (*chatservice.Conversation, error)
	EndSession(ctx context.Context, sessionID string)
}

// Voice 提供播放参数与可选的服务端合成。
type Voice interface {
	Playback() speechModel.Playback
	Capture() speechModel.Capture
	SynthesisEnabled() bool
	SynthesizeToBuffer(ctx context.Context, sessionID, text, voice string) (*speechModel.TTSResponse, error)
}

// Metrics 统计轮次、丢弃事件与在线会话。
type Metrics interface {
	interaction.Observer
	SessionOpened()
	SessionClosed()
}

// Config 汇总语音会话所需的协作者。
type Config struct {
	Profile  assistant.Profile
	Sessions Sessions
	Router   interaction.Router
	LLM      interaction.Readiness
	Logbook  recorder.Appender
	Voice    Voice
	Metrics  Metrics
	Logger   *zap.Logger
	// AllowedOrigins lists cross-origin pages that may open a session.
	AllowedOrigins []string
}

// WebSocketHandler WebSocket语音会话处理器
type WebSocketHandler struct {
	cfg      Config
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(cfg Config) *WebSocketHandler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &WebSocketHandler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(cfg.AllowedOrigins, r)
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: cfg.Logger.Named("voice"),
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/voice/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TranscriptMessage 客户端识别结果；只有 IsFinal 的结果会触发一轮对话。
type TranscriptMessage struct {
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// ExampleMessage 点击示例问题。
type ExampleMessage struct {
	Text string `json:"text"`
}

type readyPayload struct {
	SessionID string               `json:"sessionId"`
	Profile   assistant.Profile    `json:"profile"`
	Capture   speechModel.Capture  `json:"capture"`
	Playback  speechModel.Playback `json:"playback"`
	Synthesis bool                 `json:"serverSynthesis"`
}

type replyPayload struct {
	UserInput  string `json:"userInput"`
	Reply      string `json:"reply"`
	Provenance string `json:"provenance"`
	Degraded   bool   `json:"degraded"`
	RecordID   string `json:"recordId"`
	TookMs     int64  `json:"processingTime"`
}

type statePayload struct {
	State string `json:"state"`
}

// handleWebSocket 每个连接即一个会话：独立的对话历史、记录器与状态机。
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())

	conv, err := h.cfg.Sessions.CreateSession(ctx)
	if err != nil {
		cancel()
		h.logger.Error("create session failed", zap.Error(err))
		newOutbound(conn, "").sendError("session unavailable")
		return
	}
	sessionID := conv.Info().ID
	logger := h.logger.With(zap.String("session", sessionID))

	if h.cfg.Metrics != nil {
		h.cfg.Metrics.SessionOpened()
		defer h.cfg.Metrics.SessionClosed()
	}
	defer h.cfg.Sessions.EndSession(context.Background(), sessionID)

	out := newOutbound(conn, sessionID)
	sess := &session{
		out:    out,
		logger: logger,
		controller: interaction.New(interaction.Deps{
			Router:         h.cfg.Router,
			Conversation:   conv,
			Recorder:       recorder.New(sessionID, h.cfg.Profile, h.cfg.Logbook, logger),
			Speaker:        newSocketSpeaker(out, h.cfg.Voice, h.cfg.Profile.VoiceID, logger),
			LLM:            h.cfg.LLM,
			WelcomeMessage: h.cfg.Profile.WelcomeMessage,
			Observer:       h.cfg.Metrics,
			Logger:         logger,
		}),
	}
	defer func() {
		cancel()
		sess.turns.Wait()
	}()

	logger.Info("voice session opened")

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})
	go pingLoop(ctx, conn)

	ready := readyPayload{
		SessionID: sessionID,
		Profile:   h.cfg.Profile,
		Capture:   h.cfg.Voice.Capture(),
		Playback:  h.cfg.Voice.Playback(),
		Synthesis: h.cfg.Voice.SynthesisEnabled(),
	}
	if err := out.send("ready", ready); err != nil {
		logger.Warn("send ready failed", zap.Error(err))
		return
	}
	sess.welcome(ctx)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("read failed", zap.Error(err))
			}
			logger.Info("voice session closed")
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		sess.handleMessage(ctx, &msg)
	}
}

// session 绑定一个连接上的控制器与发送端。
type session struct {
	out        *outbound
	controller *interaction.Controller
	logger     *zap.Logger
	turns      sync.WaitGroup
}

func (s *session) handleMessage(ctx context.Context, msg *inboundMessage) {
	switch msg.Type {
	case "start":
		if err := s.controller.StartListening(); err != nil {
			return
		}
		s.sendState()
	case "stop":
		s.controller.StopListening()
		s.sendState()
	case "transcript":
		var payload TranscriptMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			s.out.sendError("invalid transcript payload")
			return
		}
		if !payload.IsFinal {
			return
		}
		s.launch(ctx, s.controller.BeginTranscript, payload.Text)
	case "example":
		var payload ExampleMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			s.out.sendError("invalid example payload")
			return
		}
		s.launch(ctx, s.controller.BeginExample, payload.Text)
	default:
		s.out.sendError("unsupported message type: " + msg.Type)
	}
}

// welcome 在后台播报欢迎语，读循环不必等待合成。
func (s *session) welcome(ctx context.Context) {
	s.turns.Add(1)
	go func() {
		defer s.turns.Done()
		s.controller.Welcome(ctx)
	}()
}

// launch 在读循环中同步占用控制器，再在后台运行这一轮，
// 因此先到的事件生效，处理中到达的事件以 ErrBusy 丢弃。
func (s *session) launch(ctx context.Context, begin func(string) (*interaction.Pending, error), text string) {
	pending, err := begin(text)
	switch {
	case errors.Is(err, interaction.ErrBusy):
		return
	case errors.Is(err, router.ErrInvalidInput):
		s.sendState()
		return
	case err != nil:
		s.logger.Error("begin turn failed", zap.Error(err))
		s.out.sendError("turn failed")
		return
	}

	s.turns.Add(1)
	go func() {
		defer s.turns.Done()

		turn, err := pending.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Debug("turn abandoned", zap.Error(err))
				return
			}
			s.logger.Error("turn failed", zap.Error(err))
			s.out.sendError("turn failed")
			return
		}

		reply := replyPayload{
			UserInput:  turn.UserInput,
			Reply:      turn.Reply,
			Provenance: turn.Provenance,
			Degraded:   turn.Degraded,
			RecordID:   turn.Record.ID,
		}
		if turn.Record.Metadata != nil {
			reply.TookMs = turn.Record.Metadata.ProcessingTimeMs
		}
		if err := s.out.send("reply", reply); err != nil {
			s.logger.Warn("send reply failed", zap.Error(err))
			return
		}
		s.sendState()
	}()
}

func (s *session) sendState() {
	if err := s.out.send("state", statePayload{State: s.controller.State().String()}); err != nil {
		s.logger.Warn("send state failed", zap.Error(err))
	}
}

// pingLoop 定期发送ping消息
func pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
