package logs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/logbook"
	"github.com/zhouzirui/crystal-voice/backend/pkg/utils"
)

// Logbook 是处理器依赖的日志服务接口。
type Logbook interface {
	List(ctx context.Context) []turnlog.Record
	ListBySession(ctx context.Context, sessionID string) []turnlog.Record
	Stats(ctx context.Context) turnlog.Stats
	Export(ctx context.Context, w io.Writer, f logbook.Format) error
	Clear(ctx context.Context) error
}

// Handler 对话日志的HTTP处理器
type Handler struct {
	logbook Logbook
	logger  *zap.Logger
	now     func() time.Time
}

// New 创建日志处理器
func New(lb Logbook, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logbook: lb, logger: logger.Named("logs"), now: time.Now}
}

// RegisterRoutes 注册日志相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/logs", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Delete("/", h.handleClear)
		r.Get("/stats", h.handleStats)
		r.Get("/export", h.handleExport)
	})
}

// handleList 列出日志；带 session 参数时只返回该会话。
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	var records []turnlog.Record
	if session := strings.TrimSpace(r.URL.Query().Get("session")); session != "" {
		records = h.logbook.ListBySession(r.Context(), session)
	} else {
		records = h.logbook.List(r.Context())
	}
	if records == nil {
		records = []turnlog.Record{}
	}
	utils.RespondJSON(w, http.StatusOK, records)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.logbook.Stats(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(logbook.FormatJSON)
	}
	format, err := logbook.ParseFormat(raw)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.logbook.Export(r.Context(), &buf, format); err != nil {
		h.logger.Error("export failed", zap.String("format", string(format)), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", logbook.Filename(format, h.now())))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil && !errors.Is(err, context.Canceled) {
		h.logger.Warn("export write failed", zap.Error(err))
	}
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.logbook.Clear(r.Context()); err != nil {
		h.logger.Error("clear failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to clear logs")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
