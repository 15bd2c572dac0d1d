package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/zhouzirui/crystal-voice/backend/internal/config"
	"github.com/zhouzirui/crystal-voice/backend/internal/model/chat"
)

// ArkClient 通过 eino chain 调用 Ark 模型。
type ArkClient struct {
	modelName string
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewArkClient 根据配置创建 Ark 模型并编译调用链。
func NewArkClient(ctx context.Context, cfg config.LLMConfig) (*ArkClient, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewArkClientWithModel(ctx, chatModel, cfg.Model)
}

// NewArkClientWithModel compiles the chain around an existing chat model.
func NewArkClientWithModel(ctx context.Context, chatModel model.BaseChatModel, modelName string) (*ArkClient, error) {
	template := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("messages", false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkClient{modelName: modelName, chain: runnable}, nil
}

func (c *ArkClient) Send(ctx context.Context, messages []chat.Message, opts Options) (string, error) {
	input := map[string]any{"messages": toSchemaMessages(messages)}

	response, err := c.chain.Invoke(ctx, input, compose.WithChatModelOption(
		model.WithMaxTokens(opts.MaxTokens),
		model.WithTemperature(opts.Temperature),
	))
	if err != nil {
		return "", fmt.Errorf("%w: ark: %w", ErrUpstreamFailure, err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return "", fmt.Errorf("%w: ark returned an empty completion", ErrUpstreamFailure)
	}

	return response.Content, nil
}

func (c *ArkClient) Model() string { return c.modelName }

func (c *ArkClient) Configured() bool { return true }

func toSchemaMessages(messages []chat.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleSystem:
			out = append(out, schema.SystemMessage(msg.Content))
		case chat.RoleUser:
			out = append(out, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			out = append(out, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return out
}
