package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultModel = "whisper-1"

type OpenAITranscriber struct {
	client *openai.Client
	model  string
}

var _ Transcriber = (*OpenAITranscriber)(nil)

func NewOpenAITranscriber(apiKey, model string, extra ...option.RequestOption) *OpenAITranscriber {
	if model == "" {
		model = DefaultModel
	}
	opts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, extra...)
	client := openai.NewClient(opts...)
	return &OpenAITranscriber{client: &client, model: model}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if err := audio.Validate(); err != nil {
		return "", err
	}

	name := audio.Filename
	if name == "" {
		name = "recording.webm"
	}
	contentType := audio.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// The text format answers with a bare text/plain body.
	var raw []byte
	_, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:           openai.File(audio.Reader, name, contentType),
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioResponseFormatText,
	}, option.WithResponseBodyInto(&raw))
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", ErrEmptyResult
	}
	return text, nil
}
