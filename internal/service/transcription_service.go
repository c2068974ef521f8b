package service

import (
	"context"
	"errors"

	"councellorx-be/internal/pkg/logger"
	"councellorx-be/pkg/events"
	"councellorx-be/pkg/transcribe"
)

type ITranscriptionService interface {
	Transcribe(ctx context.Context, audio transcribe.Audio) (string, error)
}

type transcriptionService struct {
	transcriber transcribe.Transcriber
	publisher   EventPublisher
	logger      logger.ILogger
}

func NewTranscriptionService(transcriber transcribe.Transcriber, publisher EventPublisher, logger logger.ILogger) ITranscriptionService {
	return &transcriptionService{
		transcriber: transcriber,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *transcriptionService) Transcribe(ctx context.Context, audio transcribe.Audio) (string, error) {
	if err := audio.Validate(); err != nil {
		return "", err
	}
	if s.transcriber == nil {
		return "", errors.New("transcription is not configured")
	}

	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		s.logger.Error("TRANSCRIBE", "Transcription failed", map[string]interface{}{
			"filename": audio.Filename,
			"size":     audio.Size,
			"error":    err.Error(),
		})
		return "", err
	}

	publishEvent(ctx, s.publisher, s.logger, events.AudioTranscribed, map[string]interface{}{
		"size":  audio.Size,
		"chars": len(text),
	})
	return text, nil
}
