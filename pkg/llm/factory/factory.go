package factory

import (
	"context"
	"fmt"

	"ai-digest-be/internal/config"
	"ai-digest-be/pkg/llm"
	"ai-digest-be/pkg/llm/anthropic"
	"ai-digest-be/pkg/llm/gemini"
	"ai-digest-be/pkg/llm/ollama"
	"ai-digest-be/pkg/llm/openai"
)

func NewLLMProvider(ctx context.Context, cfg config.AIConfig) (llm.LLMProvider, error) {
	switch cfg.LLMProvider {
	case "deepseek":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = openai.DefaultBaseURL
		}
		return openai.NewOpenAIProvider("deepseek", cfg.OpenAIAPIKey, baseURL, cfg.LLMModel), nil
	case "openai":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return openai.NewOpenAIProvider("openai", cfg.OpenAIAPIKey, baseURL, cfg.LLMModel), nil
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.LLMModel), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY")
		}
		return anthropic.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.LLMModel), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
