package speech

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/speech"
	speechsvc "github.com/zhouzirui/crystal-voice/backend/internal/service/speech"
	"github.com/zhouzirui/crystal-voice/backend/pkg/utils"
)

// SpeechService 抽象语音业务，便于测试与替换实现
type SpeechService interface {
	SynthesisEnabled() bool
	SynthesizeSpeech(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error)
}

// Handler 语音服务的HTTP处理器
type Handler struct {
	speechSvc SpeechService
	voiceID   string
	logger    *zap.Logger
}

// New 创建语音处理器；voiceID 为请求未指定声音时的默认值。
func New(speechSvc SpeechService, voiceID string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{speechSvc: speechSvc, voiceID: voiceID, logger: logger.Named("speech")}
}

// RegisterRoutes 注册语音相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Post("/synthesize", h.handleSynthesize)
		speechRouter.Get("/health", h.handleHealth)
	})
}

// handleSynthesize 处理文本转语音请求，成功时直接返回音频。
func (h *Handler) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	if !h.speechSvc.SynthesisEnabled() {
		utils.RespondError(w, http.StatusServiceUnavailable, "speech synthesis not configured")
		return
	}

	var req speech.TTSRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = "default"
	}
	if strings.TrimSpace(req.Voice) == "" {
		req.Voice = h.voiceID
	}

	resp, err := h.speechSvc.SynthesizeSpeech(r.Context(), &req)
	if err != nil {
		h.logger.Error("tts failed", zap.String("session", req.SessionID), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, speechsvc.ErrTTSNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		utils.RespondError(w, status, "speech synthesis failed")
		return
	}

	format := resp.Format
	if format == "" {
		format = "mp3"
	}
	w.Header().Set("Content-Type", "audio/"+format)
	w.Header().Set("Content-Length", strconv.Itoa(len(resp.AudioData)))
	w.Header().Set("Content-Disposition", "attachment; filename=speech."+format)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.AudioData); err != nil {
		h.logger.Warn("failed to write audio response", zap.Error(err))
	}
}

// handleHealth 健康检查端点
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "speech",
		"synthesis": h.speechSvc.SynthesisEnabled(),
	})
}
