package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docsynth/internal/config"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM 走 chat completions 接口，openai 与 deepseek 共用
type OpenAILLM struct {
	model  string
	client openai.Client
}

func NewOpenAILLM(cfg config.LLMConfig) (*OpenAILLM, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("缺少 llm.api_key 或 DOCSYNTH_LLM_API_KEY")
	}
	if cfg.Model == "" {
		return nil, errors.New("缺少 llm.model")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAILLM{model: cfg.Model, client: openai.NewClient(opts...)}, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	})
	if err != nil {
		return "", fmt.Errorf("调用 %s 失败: %w", o.model, err)
	}
	for _, choice := range resp.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("%s 未返回内容", o.model)
}
