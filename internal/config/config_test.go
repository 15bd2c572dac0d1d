package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "ARK_API_KEY", "Model",
		"LLM_MAX_TOKENS", "LLM_TEMPERATURE", "LLM_TIMEOUT_SECONDS", "SPEECH_APP_ID",
		"SPEECH_ACCESS_TOKEN", "SPEECH_API_KEY", "SPEECH_TTS_RATE", "REDIS_URL",
		"SINK_TIMEOUT_SECONDS", "SETTINGS_PATH", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
		"TRANSCRIPT_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.ModelName())
	assert.Equal(t, 100, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.LLM.Enabled())
	assert.False(t, cfg.Speech.Enabled)
	assert.InDelta(t, 0.9, cfg.Speech.Rate, 0.0001)
	assert.InDelta(t, 0.8, cfg.Speech.Volume, 0.0001)
	assert.Equal(t, "en-US", cfg.Speech.Language)
	assert.Equal(t, "conversationLogs", cfg.Store.LogKey)
	assert.Equal(t, 10*time.Second, cfg.Settings.SinkTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, ".", cfg.Settings.TranscriptDir)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("LLM_PROVIDER", "ARK")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("Model", "doubao-pro")
	t.Setenv("LLM_MAX_TOKENS", "64")
	t.Setenv("LLM_TIMEOUT_SECONDS", "5")
	t.Setenv("LLM_TEMPERATURE", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://kiosk.example.com/ ,http://localhost:5173")
	t.Setenv("TRANSCRIPT_DIR", "/var/lib/crystal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, ProviderArk, cfg.LLM.Provider)
	assert.True(t, cfg.LLM.Enabled())
	assert.Equal(t, "doubao-pro", cfg.LLM.ModelName())
	assert.Equal(t, 64, cfg.LLM.MaxTokens)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Zero(t, cfg.LLM.Temperature)
	assert.Equal(t, []string{"https://kiosk.example.com", "http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "/var/lib/crystal", cfg.Settings.TranscriptDir)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"PORT":                 "80 80",
		"LLM_PROVIDER":         "claude",
		"LLM_MAX_TOKENS":       "many",
		"LLM_TEMPERATURE":      "warm",
		"SPEECH_TTS_RATE":      "fast",
		"CORS_ALLOWED_ORIGINS": "https://a.example.com,*",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSpeechFallsBackToAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPEECH_APP_ID", "app")
	t.Setenv("SPEECH_API_KEY", "token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Speech.Enabled)
	assert.Equal(t, "token", cfg.Speech.AccessToken)
}
