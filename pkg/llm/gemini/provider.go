package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"councellorx-be/pkg/llm"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const providerName = "gemini"

const DefaultModel = "gemini-2.5-flash"

type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

var _ llm.LLMProvider = (*GeminiProvider)(nil)

func NewGeminiProvider(ctx context.Context, apiKey, modelName string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiProvider{client: cl, modelName: modelName}, nil
}

func (g *GeminiProvider) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiProvider) model(options *llm.Options) *genai.GenerativeModel {
	name := g.modelName
	if options.Model != "" {
		name = options.Model
	}
	m := g.client.GenerativeModel(name)
	m.SetTemperature(float32(options.Temperature))
	m.SetTopP(float32(options.TopP))
	if options.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(options.MaxTokens))
	}
	return m
}

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if len(history) == 0 {
		return "", llm.NewProviderError(providerName, llm.FailureEmpty, 0, errors.New("empty history"))
	}
	options := llm.Apply(opts...)
	m := g.model(options)

	var system []string
	var contents []*genai.Content
	for _, msg := range history {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		case "assistant", "model":
			contents = append(contents, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	if len(system) > 0 {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))}}
	}
	if len(contents) == 0 {
		return "", llm.NewProviderError(providerName, llm.FailureEmpty, 0, errors.New("no user content"))
	}

	cs := m.StartChat()
	cs.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", wrapError(err)
	}
	return extractText(resp)
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	options := llm.Apply(opts...)
	resp, err := g.model(options).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrapError(err)
	}
	return extractText(resp)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", llm.NewProviderError(providerName, llm.FailureContentFilter, 0,
			fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason))
	}
	if len(resp.Candidates) == 0 {
		return "", llm.NewProviderError(providerName, llm.FailureEmpty, 0, errors.New("no candidates"))
	}

	cand := resp.Candidates[0]
	var b strings.Builder
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	if b.Len() > 0 {
		return b.String(), nil
	}

	switch cand.FinishReason {
	case genai.FinishReasonMaxTokens:
		return "", llm.NewProviderError(providerName, llm.FailureTruncated, 0, errors.New("max tokens reached"))
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return "", llm.NewProviderError(providerName, llm.FailureContentFilter, 0, fmt.Errorf("finish reason %s", cand.FinishReason))
	}
	return "", llm.NewProviderError(providerName, llm.FailureEmpty, 0, fmt.Errorf("no text, finish reason %s", cand.FinishReason))
}

func wrapError(err error) error {
	switch status.Code(err) {
	case codes.ResourceExhausted:
		return llm.NewProviderError(providerName, llm.FailureQuota, 429, err)
	case codes.Unauthenticated, codes.PermissionDenied:
		return llm.NewProviderError(providerName, llm.FailureAuth, 0, err)
	case codes.DeadlineExceeded:
		return llm.NewProviderError(providerName, llm.FailureTimeout, 0, err)
	case codes.Unavailable:
		return llm.NewProviderError(providerName, llm.FailureNetwork, 0, err)
	}
	return llm.NewProviderError(providerName, llm.Classify(err), 0, err)
}
