package settings

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/settings"
	"github.com/zhouzirui/crystal-voice/backend/pkg/utils"
)

// Persister 保存日志投递配置。
type Persister interface {
	Save(cfg settings.Settings) error
}

// Applier 让新配置立即生效。
type Applier interface {
	Settings() settings.Settings
	UpdateSettings(ctx context.Context, next settings.Settings)
}

// Handler 日志投递配置的HTTP处理器
type Handler struct {
	store   Persister
	applier Applier
	logger  *zap.Logger
}

// New 创建配置处理器
func New(store Persister, applier Applier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, applier: applier, logger: logger.Named("settings")}
}

// RegisterRoutes 注册配置相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.handleGet)
	r.Put("/settings", h.handlePut)
}

// handleGet 返回当前配置，API key 以掩码代替。
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.applier.Settings().Redacted())
}

// handlePut 先落盘再切换 sink，保存失败时保持原配置。
// 回传掩码的 API key 沿用已保存的值。
func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var next settings.Settings
	if err := utils.DecodeJSON(r, &next); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}
	next = next.KeepSecrets(h.applier.Settings())
	if err := next.Validate(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Save(next); err != nil {
		h.logger.Error("save settings failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	// sink 的生命周期长于本次请求
	h.applier.UpdateSettings(context.WithoutCancel(r.Context()), next)

	h.logger.Info("settings updated",
		zap.Bool("local", next.EnableLocalPersistence),
		zap.Bool("text", next.EnableTextExport),
		zap.Bool("airtable", next.EnableAirtable),
		zap.Bool("sheets", next.EnableGoogleSheets),
	)
	utils.RespondJSON(w, http.StatusOK, h.applier.Settings().Redacted())
}
