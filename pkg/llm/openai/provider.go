package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"councellorx-be/pkg/llm"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const providerName = "openai"

const DefaultModel = "gpt-4o"

type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// Ensure OpenAIProvider implements LLMProvider
var _ llm.LLMProvider = &OpenAIProvider{}

// NewOpenAIProvider builds a chat-completions client. SDK retries are disabled:
// one failed call yields exactly one fallback upstream.
func NewOpenAIProvider(apiKey, model string, extra ...option.RequestOption) *OpenAIProvider {
	if model == "" {
		model = DefaultModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	opts = append(opts, extra...)
	client := openai.NewClient(opts...)

	return &OpenAIProvider{
		client: &client,
		model:  model,
	}
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(opts...)

	model := p.model
	if options.Model != "" {
		model = options.Model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch strings.ToLower(msg.Role) {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Content))
		case "assistant", "model":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(options.Temperature),
		TopP:        openai.Float(options.TopP),
	}
	if options.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(options.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", llm.NewProviderError(providerName, llm.FailureEmpty, 0, errors.New("no choices"))
	}

	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		if reason, ok := llm.ReasonFromFinish(string(choice.FinishReason)); ok {
			return "", llm.NewProviderError(providerName, reason, 0, fmt.Errorf("finish reason %s", choice.FinishReason))
		}
		if choice.Message.Refusal != "" {
			return "", llm.NewProviderError(providerName, llm.FailureContentFilter, 0, errors.New(choice.Message.Refusal))
		}
		return "", llm.NewProviderError(providerName, llm.FailureEmpty, 0, fmt.Errorf("no content, finish reason %q", choice.FinishReason))
	}

	return choice.Message.Content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return llm.NewProviderError(providerName, llm.ReasonFromStatus(apiErr.StatusCode), apiErr.StatusCode, err)
	}
	return llm.NewProviderError(providerName, llm.Classify(err), 0, err)
}
