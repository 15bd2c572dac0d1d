package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server   ServerConfig
	LLM      LLMConfig
	Speech   SpeechConfig
	Store    StoreConfig
	Settings SettingsConfig
	Log      LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	llm, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	settings, err := loadSettingsConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		LLM:      llm,
		Speech:   speech,
		Store:    loadStoreConfig(),
		Settings: settings,
		Log:      LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "info")},
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
	// AllowedOrigins lists browser origins allowed to call the API across
	// origins. Empty means same-origin only.
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	origins, err := parseOriginsEnv("CORS_ALLOWED_ORIGINS")
	if err != nil {
		return ServerConfig{}, err
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

// parseOriginsEnv 解析逗号分隔的来源列表，拒绝通配符。
func parseOriginsEnv(key string) ([]string, error) {
	var origins []string
	for _, raw := range strings.Split(os.Getenv(key), ",") {
		origin := strings.TrimRight(strings.TrimSpace(raw), "/")
		if origin == "" {
			continue
		}
		if origin == "*" {
			return nil, fmt.Errorf("invalid %s value: wildcard origin is not allowed", key)
		}
		origins = append(origins, origin)
	}
	return origins, nil
}

// Provider names the chat completion backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderArk    Provider = "ark"
)

// LLMConfig 描述大模型相关配置。
type LLMConfig struct {
	Provider Provider

	// Ark
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string

	// OpenAI
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// ArkEnabled 表示是否提供了 Ark 必需的密钥。
func (c LLMConfig) ArkEnabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// Enabled reports whether the selected provider has credentials.
func (c LLMConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.ArkEnabled()
	default:
		return c.OpenAIAPIKey != ""
	}
}

// ModelName returns the model identifier of the selected provider.
func (c LLMConfig) ModelName() string {
	if c.Provider == ProviderArk {
		return c.Model
	}
	return c.OpenAIModel
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c LLMConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.ArkEnabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + Model or an AK/SK pair")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:   c.BaseURL,
		Region:    c.Region,
		APIKey:    c.APIKey,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Model:     c.Model,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadLLMConfig() (LLMConfig, error) {
	provider := Provider(strings.ToLower(getEnvOrDefault("LLM_PROVIDER", string(ProviderOpenAI))))
	if provider != ProviderOpenAI && provider != ProviderArk {
		return LLMConfig{}, fmt.Errorf("invalid LLM_PROVIDER value %q", provider)
	}

	maxTokens := 100
	if override, err := parseOptionalIntEnv("LLM_MAX_TOKENS"); err != nil {
		return LLMConfig{}, err
	} else if override != nil {
		maxTokens = *override
	}

	temperature := float32(0.7)
	if override, err := parseOptionalFloat32Env("LLM_TEMPERATURE"); err != nil {
		return LLMConfig{}, err
	} else if override != nil {
		temperature = *override
	}

	timeoutSeconds := 20
	if override, err := parseOptionalIntEnv("LLM_TIMEOUT_SECONDS"); err != nil {
		return LLMConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	return LLMConfig{
		Provider:      provider,
		APIKey:        strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:     strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:     strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:         strings.TrimSpace(os.Getenv("Model")),
		BaseURL:       getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:        getEnvOrDefault("ARK_REGION", "cn-beijing"),
		OpenAIAPIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		MaxTokens:     maxTokens,
		Temperature:   temperature,
		Timeout:       time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// SpeechConfig 描述语音服务相关配置
type SpeechConfig struct {
	AppID       string
	AccessToken string
	BaseURL     string
	TTSVoice    string
	Language    string
	Rate        float32
	Pitch       float32
	Volume      float32
	Timeout     int
	Enabled     bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30 // 默认30秒
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	rate, err := parseFloat32EnvOrDefault("SPEECH_TTS_RATE", 0.9)
	if err != nil {
		return SpeechConfig{}, err
	}
	pitch, err := parseFloat32EnvOrDefault("SPEECH_TTS_PITCH", 1)
	if err != nil {
		return SpeechConfig{}, err
	}
	volume, err := parseFloat32EnvOrDefault("SPEECH_TTS_VOLUME", 0.8)
	if err != nil {
		return SpeechConfig{}, err
	}

	appID := strings.TrimSpace(os.Getenv("SPEECH_APP_ID"))
	accessToken := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))
	if accessToken == "" {
		accessToken = strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	}

	return SpeechConfig{
		AppID:       appID,
		AccessToken: accessToken,
		BaseURL:     getEnvOrDefault("SPEECH_BASE_URL", ""),
		TTSVoice:    getEnvOrDefault("SPEECH_TTS_VOICE", ""),
		Language:    getEnvOrDefault("SPEECH_LANGUAGE", "en-US"),
		Rate:        rate,
		Pitch:       pitch,
		Volume:      volume,
		Timeout:     timeoutSeconds,
		Enabled:     appID != "" && accessToken != "",
	}, nil
}

// StoreConfig selects where turn records persist. An empty RedisURL keeps
// records in process memory.
type StoreConfig struct {
	RedisURL string
	LogKey   string
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		RedisURL: strings.TrimSpace(os.Getenv("REDIS_URL")),
		LogKey:   getEnvOrDefault("REDIS_LOG_KEY", "conversationLogs"),
	}
}

// SettingsConfig locates the persisted sink settings and bounds sink calls.
// TranscriptDir confines the plain-text transcript; the settings only pick a
// file name relative to it.
type SettingsConfig struct {
	Path          string
	TranscriptDir string
	SinkTimeout   time.Duration
}

func loadSettingsConfig() (SettingsConfig, error) {
	timeoutSeconds := 10
	if override, err := parseOptionalIntEnv("SINK_TIMEOUT_SECONDS"); err != nil {
		return SettingsConfig{}, err
	} else if override != nil && *override > 0 {
		timeoutSeconds = *override
	}

	return SettingsConfig{
		Path:          getEnvOrDefault("SETTINGS_PATH", "logging_settings.yaml"),
		TranscriptDir: getEnvOrDefault("TRANSCRIPT_DIR", "."),
		SinkTimeout:   time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// LogConfig 控制日志输出级别。
type LogConfig struct {
	Level string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}

func parseFloat32EnvOrDefault(key string, defaultValue float32) (float32, error) {
	val, err := parseOptionalFloat32Env(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	return *val, nil
}
