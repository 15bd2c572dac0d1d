package llm

import (
	"context"

	"github.com/zhouzirui/crystal-voice/backend/internal/config"
	"go.uber.org/zap"
)

// New selects the provider named by the config. Missing credentials yield an
// Unconfigured client rather than an error; turns then report that the
// assistant is not configured.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Enabled() {
		logger.Warn("llm credentials missing, turns will report not configured",
			zap.String("provider", string(cfg.Provider)))
		return Unconfigured{ModelName: cfg.ModelName()}, nil
	}

	switch cfg.Provider {
	case config.ProviderArk:
		client, err := NewArkClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logger.Info("llm provider ready", zap.String("provider", "ark"), zap.String("model", client.Model()))
		return client, nil
	default:
		client, err := NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("llm provider ready", zap.String("provider", "openai"), zap.String("model", client.Model()))
		return client, nil
	}
}
