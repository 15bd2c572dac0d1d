package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/chat"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/llm"
	"go.uber.org/zap"
)

// ProvenanceKnowledgeBase marks replies answered from the static table.
const ProvenanceKnowledgeBase = "knowledge-base"

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 20 * time.Second

// ErrInvalidInput is returned for empty or whitespace-only queries.
var ErrInvalidInput = errors.New("query is empty")

// KnowledgeBase answers queries from a fixed table.
type KnowledgeBase interface {
	Search(query string) (string, bool)
}

// DomainClassifier decides whether the company context should accompany a query.
type DomainClassifier interface {
	IsInDomain(query string) bool
}

// Result is one routed answer.
type Result struct {
	Reply      string
	Provenance string
	TookMs     int64
}

// Config tunes the model fallback path.
type Config struct {
	Options        llm.Options
	Timeout        time.Duration
	ContextMessage string
}

// Router tries the knowledge base first and falls back to the LLM.
type Router struct {
	kb         KnowledgeBase
	classifier DomainClassifier
	client     llm.Client
	cfg        Config
	logger     *zap.Logger
}

// New wires a router. Unset Options take DefaultOptions and a zero Timeout
// takes DefaultTimeout. A temperature of 0 is honoured once MaxTokens is set.
func New(kb KnowledgeBase, classifier DomainClassifier, client llm.Client, cfg Config, logger *zap.Logger) *Router {
	defaults := llm.DefaultOptions()
	if cfg.Options == (llm.Options{}) {
		cfg.Options = defaults
	}
	if cfg.Options.MaxTokens <= 0 {
		cfg.Options.MaxTokens = defaults.MaxTokens
	}
	if cfg.Options.Temperature < 0 {
		cfg.Options.Temperature = defaults.Temperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Router{kb: kb, classifier: classifier, client: client, cfg: cfg, logger: logger}
}

// Route answers query given the conversation so far. history is read, never
// modified; on error nothing is committed anywhere.
func (r *Router) Route(ctx context.Context, query string, history []chat.Message) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, ErrInvalidInput
	}

	start := time.Now()
	if reply, ok := r.kb.Search(query); ok {
		took := time.Since(start).Milliseconds()
		r.logger.Debug("answered from knowledge base", zap.Int64("tookMs", took))
		return Result{Reply: reply, Provenance: ProvenanceKnowledgeBase, TookMs: took}, nil
	}

	messages := make([]chat.Message, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages, chat.UserMessage(query))
	if r.cfg.ContextMessage != "" && r.classifier.IsInDomain(query) {
		messages = append(messages, chat.SystemMessage(r.cfg.ContextMessage))
	}

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	reply, err := r.client.Send(callCtx, messages, r.cfg.Options)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) || errors.Is(err, llm.ErrUpstreamFailure) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %w", llm.ErrUpstreamFailure, err)
	}

	took := time.Since(start).Milliseconds()
	r.logger.Debug("answered from model",
		zap.String("model", r.client.Model()),
		zap.Int("messages", len(messages)),
		zap.Int64("tookMs", took))

	return Result{Reply: reply, Provenance: r.client.Model(), TookMs: took}, nil
}
