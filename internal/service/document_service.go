package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"councellorx-be/internal/dto"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/pkg/events"
)

var ErrInvalidRequest = errors.New("invalid request")

type IDocumentService interface {
	Describe(ctx context.Context, files []dto.FileMeta) ([]dto.DocumentMeta, error)
}

type documentService struct {
	publisher EventPublisher
	logger    logger.ILogger
}

func NewDocumentService(publisher EventPublisher, logger logger.ILogger) IDocumentService {
	return &documentService{publisher: publisher, logger: logger}
}

// Describe is a pure function of the name/size/type triples. File content is
// never read, so every summary is the same placeholder.
func (s *documentService) Describe(ctx context.Context, files []dto.FileMeta) ([]dto.DocumentMeta, error) {
	docs := make([]dto.DocumentMeta, 0, len(files))
	for i, f := range files {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: file %d has no name", ErrInvalidRequest, i+1)
		}
		if f.Size < 0 {
			return nil, fmt.Errorf("%w: file %q has a negative size", ErrInvalidRequest, name)
		}
		docs = append(docs, dto.DocumentMeta{
			Id:      fmt.Sprintf("doc_%d", i+1),
			Name:    name,
			Summary: placeholderSummary(name),
		})
	}

	publishEvent(ctx, s.publisher, s.logger, events.DocumentsDescribed, map[string]interface{}{
		"count": len(docs),
	})
	return docs, nil
}

func documentKind(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "PDF document"
	case ".jpg", ".jpeg":
		return "JPEG image"
	case ".png":
		return "PNG image"
	case ".docx":
		return "Word document"
	case ".txt":
		return "text file"
	}
	return "document"
}

func placeholderSummary(name string) string {
	return fmt.Sprintf("Mock summary of %s (%s): extracted parties, key clauses, obligations, and a brief overview. (No files stored).",
		name, documentKind(name))
}
