package factory

import (
	"context"
	"fmt"

	"councellorx-be/pkg/llm"
	"councellorx-be/pkg/llm/gemini"
	"councellorx-be/pkg/llm/huggingface"
	"councellorx-be/pkg/llm/ollama"
	"councellorx-be/pkg/llm/openai"
)

type ProviderConfig struct {
	Provider      string // gemini | openai | ollama | huggingface
	Model         string
	GeminiAPIKey  string
	OpenAIAPIKey  string
	HFAPIKey      string
	HFBaseURL     string
	OllamaBaseURL string
}

func NewLLMProvider(ctx context.Context, cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini", "":
		return gemini.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.Model)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return openai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.Model), nil
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.HFAPIKey, cfg.HFBaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
