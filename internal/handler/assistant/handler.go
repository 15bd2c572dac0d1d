package assistant

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/assistant"
	speechModel "github.com/zhouzirui/crystal-voice/backend/internal/model/speech"
	"github.com/zhouzirui/crystal-voice/backend/internal/service/knowledge"
	"github.com/zhouzirui/crystal-voice/backend/pkg/utils"
)

// Catalog 是知识库的只读视图。
type Catalog interface {
	Categories() []string
	ByCategory(category string) []knowledge.Entry
}

// Voice 提供客户端采集与播放参数。
type Voice interface {
	Playback() speechModel.Playback
	Capture() speechModel.Capture
	SynthesisEnabled() bool
}

// Model 描述大模型后端状态。
type Model interface {
	Model() string
	Configured() bool
}

// Handler 助手信息的HTTP处理器
type Handler struct {
	profile assistant.Profile
	catalog Catalog
	voice   Voice
	model   Model
}

// New 创建助手处理器
func New(profile assistant.Profile, catalog Catalog, voice Voice, model Model) *Handler {
	return &Handler{profile: profile, catalog: catalog, voice: voice, model: model}
}

// RegisterRoutes 注册助手相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/assistant", h.handleProfile)
	r.Get("/assistant/knowledge", h.handleKnowledge)
}

type llmStatus struct {
	Configured bool   `json:"configured"`
	Model      string `json:"model,omitempty"`
}

type profileResponse struct {
	assistant.Profile
	Overview   string               `json:"overview"`
	Categories []string             `json:"categories"`
	Playback   speechModel.Playback `json:"playback"`
	Capture    speechModel.Capture  `json:"capture"`
	Synthesis  bool                 `json:"serverSynthesis"`
	LLM        llmStatus            `json:"llm"`
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	resp := profileResponse{
		Profile:    h.profile,
		Overview:   knowledge.Overview,
		Categories: h.catalog.Categories(),
		Playback:   h.voice.Playback(),
		Capture:    h.voice.Capture(),
		Synthesis:  h.voice.SynthesisEnabled(),
	}
	if h.model != nil {
		resp.LLM = llmStatus{Configured: h.model.Configured(), Model: h.model.Model()}
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleKnowledge 按分类列出知识条目；未指定分类时返回全部。
func (h *Handler) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	categories := h.catalog.Categories()
	if category != "" {
		categories = []string{category}
	}

	out := make([]knowledge.Entry, 0)
	for _, c := range categories {
		out = append(out, h.catalog.ByCategory(c)...)
	}

	if category != "" && len(out) == 0 {
		utils.RespondError(w, http.StatusNotFound, "unknown category")
		return
	}
	utils.RespondJSON(w, http.StatusOK, out)
}
