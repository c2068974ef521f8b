package controller

import (
	"errors"
	"strings"

	"councellorx-be/internal/dto"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/service"
	"councellorx-be/pkg/transcribe"

	"github.com/gofiber/fiber/v2"
)

// The /api analysis endpoints answer with bare JSON and a flat
// {"error": "..."} body instead of the BaseResponse envelope.
type IAnalysisController interface {
	RegisterRoutes(r fiber.Router)
	Analyze(ctx *fiber.Ctx) error
	Process(ctx *fiber.Ctx) error
	Transcribe(ctx *fiber.Ctx) error
}

type analysisController struct {
	analysis      service.IAnalysisService
	documents     service.IDocumentService
	transcription service.ITranscriptionService
	logger        logger.ILogger
}

func NewAnalysisController(
	analysis service.IAnalysisService,
	documents service.IDocumentService,
	transcription service.ITranscriptionService,
	logger logger.ILogger,
) IAnalysisController {
	return &analysisController{
		analysis:      analysis,
		documents:     documents,
		transcription: transcription,
		logger:        logger,
	}
}

func (c *analysisController) RegisterRoutes(r fiber.Router) {
	r.Post("/analyze", c.Analyze)
	r.Post("/process", c.Process)
	r.Post("/transcribe", c.Transcribe)
}

func errorBody(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(dto.ErrorBody{Error: msg})
}

func (c *analysisController) Analyze(ctx *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorBody(ctx, fiber.StatusBadRequest, "Invalid request")
	}

	res, err := c.analysis.Analyze(ctx.UserContext(), &req)
	if errors.Is(err, service.ErrEmptyStatement) {
		return errorBody(ctx, fiber.StatusBadRequest, "Statement is required")
	}
	if err != nil {
		c.logger.Error("ANALYSIS", "Analyze failed", map[string]interface{}{"error": err.Error()})
		return errorBody(ctx, fiber.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(res)
}

func (c *analysisController) Process(ctx *fiber.Ctx) error {
	var req dto.ProcessRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errorBody(ctx, fiber.StatusBadRequest, "Invalid request")
	}

	docs, err := c.documents.Describe(ctx.UserContext(), req.Files)
	if err != nil {
		return errorBody(ctx, fiber.StatusBadRequest, "Invalid request")
	}
	return ctx.JSON(dto.ProcessResponse{Documents: docs})
}

func (c *analysisController) Transcribe(ctx *fiber.Ctx) error {
	fh, err := ctx.FormFile("file")
	if err != nil || fh == nil {
		return errorBody(ctx, fiber.StatusBadRequest, "No file provided")
	}
	if fh.Size > transcribe.MaxAudioBytes {
		return errorBody(ctx, fiber.StatusRequestEntityTooLarge, transcribe.ErrAudioTooBig.Error())
	}

	f, err := fh.Open()
	if err != nil {
		return errorBody(ctx, fiber.StatusInternalServerError, err.Error())
	}
	defer f.Close()

	text, err := c.transcription.Transcribe(ctx.UserContext(), transcribe.Audio{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	})
	switch {
	case errors.Is(err, transcribe.ErrNoAudio):
		return errorBody(ctx, fiber.StatusBadRequest, "No file provided")
	case err != nil:
		msg := strings.TrimSpace(err.Error())
		if msg == "" {
			msg = "Transcription failed"
		}
		return errorBody(ctx, fiber.StatusInternalServerError, msg)
	}
	return ctx.JSON(dto.TranscribeResponse{Text: text})
}
