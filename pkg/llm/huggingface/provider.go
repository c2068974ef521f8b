package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"councellorx-be/pkg/llm"
)

const providerName = "huggingface"

// HuggingFaceProvider talks to any OpenAI-compatible /chat/completions router.
type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &HuggingFaceProvider{}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		FinishReason string `json:"finish_reason"`
		Message      *struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = "https://router.huggingface.co/v1"
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

func (p *HuggingFaceProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(options...)
	if opts.Model == "" {
		opts.Model = p.model
	}

	reqBody := chatRequest{
		Model:       opts.Model,
		Messages:    history,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", llm.NewProviderError(providerName, llm.Classify(err), 0, err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", llm.NewProviderError(providerName, llm.ReasonFromStatus(resp.StatusCode), resp.StatusCode,
			fmt.Errorf("body: %s", string(bodyBytes)))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", llm.NewProviderError(providerName, llm.FailureUpstream, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if chatResp.Error != nil {
		return "", llm.NewProviderError(providerName, llm.FailureUpstream, resp.StatusCode, errors.New(chatResp.Error.Message))
	}

	if len(chatResp.Choices) == 0 {
		return "", llm.NewProviderError(providerName, llm.FailureEmpty, 0, errors.New("no choices"))
	}

	choice := chatResp.Choices[0]
	if choice.Message == nil {
		return "", llm.NewProviderError(providerName, llm.FailureEmpty, 0, errors.New("no message"))
	}
	if choice.Message.Content == "" {
		if reason, ok := llm.ReasonFromFinish(choice.FinishReason); ok {
			return "", llm.NewProviderError(providerName, reason, 0, fmt.Errorf("finish reason %s", choice.FinishReason))
		}
		return "", llm.NewProviderError(providerName, llm.FailureEmpty, 0, fmt.Errorf("no content, finish reason %q", choice.FinishReason))
	}

	return choice.Message.Content, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}
