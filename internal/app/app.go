package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zhouzirui/crystal-voice/backend/internal/config"
	"github.com/zhouzirui/crystal-voice/backend/internal/handler"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/assistant"
	speechModel "github.com/zhouzirui/crystal-voice/backend/internal/model/speech"
	"github.com/zhouzirui/crystal-voice/backend/internal/observability/metrics"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/chat"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/knowledge"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/llm"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/logbook"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/router"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/settings"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/speech"
)

// App holds every long-lived service. Both the HTTP server and the CLI build
// one through New.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Profile    assistant.Profile
	Matcher    *knowledge.Matcher
	Classifier *knowledge.Classifier
	LLM        llm.Client
	Router     *router.Router
	Sessions   *chat.Service
	Logbook    *logbook.Service
	Settings   *settings.FileStore
	Speech     *speech.Service
	Metrics    *metrics.VoiceMetrics
	Registry   *prometheus.Registry

	redis *redis.Client
}

// Option tweaks construction, mostly for tests.
type Option func(*options)

type options struct {
	llm llm.Client
}

// WithLLM replaces the provider selected from the config.
func WithLLM(client llm.Client) Option {
	return func(o *options) { o.llm = client }
}

// New wires the services described by cfg.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config:     cfg,
		Logger:     logger,
		Profile:    assistant.Default(),
		Matcher:    knowledge.NewDefaultMatcher(),
		Classifier: knowledge.NewDefaultClassifier(),
		Registry:   prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.NewVoiceMetrics(a.Registry)

	a.LLM = o.llm
	if a.LLM == nil {
		client, err := llm.New(ctx, cfg.LLM, logger)
		if err != nil {
			return nil, fmt.Errorf("init llm: %w", err)
		}
		a.LLM = client
	}

	a.Router = router.New(a.Matcher, a.Classifier, a.LLM, router.Config{
		Options: llm.Options{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
		},
		Timeout:        cfg.LLM.Timeout,
		ContextMessage: a.Profile.DomainContext,
	}, logger.Named("router"))

	a.Sessions = chat.NewService(a.Profile.SystemPrompt)

	a.Settings = settings.NewFileStore(cfg.Settings.Path)
	initial, err := a.Settings.Load()
	if err != nil {
		return nil, err
	}

	lbOpts := logbook.Options{
		TranscriptDir: cfg.Settings.TranscriptDir,
		SinkTimeout:   cfg.Settings.SinkTimeout,
		Observer:      a.Metrics,
		Logger:        logger,
	}
	if cfg.Store.RedisURL != "" {
		client, err := logbook.NewRedisClient(cfg.Store.RedisURL)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = client
		lbOpts.Durable = logbook.NewRedisStore(client, cfg.Store.LogKey)
		logger.Info("turn log persisted in redis", zap.String("key", cfg.Store.LogKey))
	}

	a.Logbook = logbook.NewService(ctx, initial, lbOpts)
	if err := a.Logbook.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.Speech = speech.NewService(&speechModel.SpeechConfig{
		AppID:       cfg.Speech.AppID,
		AccessToken: cfg.Speech.AccessToken,
		BaseURL:     cfg.Speech.BaseURL,
		TTSVoice:    cfg.Speech.TTSVoice,
		TTSLanguage: cfg.Speech.Language,
		Timeout:     cfg.Speech.Timeout,
		Playback: speechModel.Playback{
			Rate:   cfg.Speech.Rate,
			Pitch:  cfg.Speech.Pitch,
			Volume: cfg.Speech.Volume,
		},
	}, logger)
	if a.Speech.SynthesisEnabled() {
		logger.Info("server-side speech synthesis enabled")
	}

	return a, nil
}

// Handler builds the HTTP API.
func (a *App) Handler() http.Handler {
	return handler.NewRouter(handler.Dependencies{
		Profile:  a.Profile,
		Matcher:  a.Matcher,
		Router:   a.Router,
		LLM:      a.LLM,
		Sessions: a.Sessions,
		Logbook:  a.Logbook,
		Settings: a.Settings,
		Speech:   a.Speech,
		Metrics:  a.Metrics,
		Gatherer: a.Registry,
		Logger:   a.Logger,

		AllowedOrigins: a.Config.Server.AllowedOrigins,
	})
}

// Close waits for pending sink deliveries and releases connections.
func (a *App) Close() error {
	if a.Logbook != nil {
		a.Logbook.Flush()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return fmt.Errorf("close redis: %w", err)
		}
	}
	return nil
}
