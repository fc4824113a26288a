package service

import (
	"context"
	"fmt"

	"docsynth/internal/config"
)

// LLMClient 抽象大模型客户端，便于替换/Mock
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// BuildLLM 按 llm.provider 选择实现
func BuildLLM(cfg *config.Config) (LLMClient, error) {
	switch cfg.LLM.Provider {
	case "", "mock":
		return MockLLM{}, nil
	case "dify":
		if cfg.Dify.BaseURL == "" {
			return nil, fmt.Errorf("llm provider dify requires dify.base_url")
		}
		return NewDifyClient(cfg.Dify), nil
	case "openai":
		return NewOpenAILLM(cfg.LLM)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAILLM(cfg.LLM)
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
