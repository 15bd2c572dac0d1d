package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zhouzirui/crystal-voice/backend/internal/handler/assistant"
	"github.com/zhouzirui/crystal-voice/backend/internal/handler/logs"
	settingsHandler "github.com/zhouzirui/crystal-voice/backend/internal/handler/settings"
	speechHandler "github.com/zhouzirui/crystal-voice/backend/internal/handler/speech"
	"github.com/zhouzirui/crystal-voice/backend/internal/handler/voice"
	middlewarePkg "github.com/zhouzirui/crystal-voice/backend/internal/middleware"
	assistantModel "github.com/zhouzirui/crystal-voice/backend/internal/model/assistant"
	"github.com/zhouzirui/crystal-voice/backend/internal/observability/metrics"
	chatService "github.com/zhouzirui/crystal-voice/backend/internal/service/chat"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/knowledge"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/llm"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/logbook"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/router"
	settingsService "github.com/zhouzirui/crystal-voice/backend/internal/service/settings"
	speechService "github.com/zhouzirui/crystal-voice/backend/internal/service/speech"
	"github.com/zhouzirui/crystal-voice/backend/pkg/utils"
)

// Dependencies 汇总 HTTP 层用到的服务。
type Dependencies struct {
	Profile  assistantModel.Profile
	Matcher  *knowledge.Matcher
	Router   *router.Router
	LLM      llm.Client
	Sessions *chatService.Service
	Logbook  *logbook.Service
	Settings *settingsService.FileStore
	Speech   *speechService.Service
	Metrics  *metrics.VoiceMetrics
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger

	// AllowedOrigins lists cross-origin pages allowed to use the API.
	AllowedOrigins []string
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(deps.AllowedOrigins))

	assistantHandler := assistant.New(deps.Profile, deps.Matcher, deps.Speech, deps.LLM)
	logsHandler := logs.New(deps.Logbook, deps.Logger)
	configHandler := settingsHandler.New(deps.Settings, deps.Logbook, deps.Logger)
	ttsHandler := speechHandler.New(deps.Speech, deps.Profile.VoiceID, deps.Logger)
	voiceHandler := voice.NewWebSocketHandler(voice.Config{
		Profile:  deps.Profile,
		Sessions: deps.Sessions,
		Router:   deps.Router,
		LLM:      deps.LLM,
		Logbook:  deps.Logbook,
		Voice:    deps.Speech,
		Metrics:  deps.Metrics,
		Logger:   deps.Logger,

		AllowedOrigins: deps.AllowedOrigins,
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"llmConfigured":  deps.LLM.Configured(),
			"activeSessions": deps.Sessions.ActiveCount(),
		})
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(api chi.Router) {
		assistantHandler.RegisterRoutes(api)
		logsHandler.RegisterRoutes(api)
		configHandler.RegisterRoutes(api)
		ttsHandler.RegisterRoutes(api)
		voiceHandler.RegisterRoutes(api)
	})

	return r
}
