package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"councellorx-be/internal/dto"
	"councellorx-be/internal/mapper"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/pkg/casefile"
	"councellorx-be/pkg/events"
	"councellorx-be/pkg/llm"
)

var ErrEmptyStatement = errors.New("statement is required")

type IAnalysisService interface {
	Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error)
}

type analysisService struct {
	llmProvider llm.LLMProvider
	publisher   EventPublisher
	logger      logger.ILogger
	timeout     time.Duration
}

// NewAnalysisService builds the case analyzer. timeout <= 0 leaves outbound
// calls bounded only by the caller's context.
func NewAnalysisService(llmProvider llm.LLMProvider, publisher EventPublisher, logger logger.ILogger, timeout time.Duration) IAnalysisService {
	return &analysisService{
		llmProvider: llmProvider,
		publisher:   publisher,
		logger:      logger,
		timeout:     timeout,
	}
}

func (s *analysisService) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	statement := strings.TrimSpace(req.Statement)
	if statement == "" {
		return nil, ErrEmptyStatement
	}
	docs := mapper.DocumentMetaToRefs(req.Documents)

	res := &dto.AnalyzeResponse{
		MissingDocuments: []string{},
		Risks:            []string{},
		Recommendations:  []string{},
		WinProbability:   casefile.DefaultWinProbability,
	}

	drafted, requirements, err := s.draft(ctx, req.CaseType, statement, docs, req.Lang)
	if err != nil {
		res.Fallback = true
		res.FailureReason = llm.Classify(err)
		drafted, requirements = casefile.Fallback(req.CaseType)
		s.logger.Warn("ANALYSIS", "Upstream failure, using fallback", map[string]interface{}{
			"case_type": req.CaseType,
			"reason":    string(res.FailureReason),
			"error":     err.Error(),
		})
	}
	res.DraftedStatement = drafted
	res.DocumentRequirements = requirements

	if req.Assess && !res.Fallback {
		s.assess(ctx, req.CaseType, statement, docs, res)
	}

	publishEvent(ctx, s.publisher, s.logger, events.CaseAnalyzed, map[string]interface{}{
		"case_type":      req.CaseType,
		"fallback":       res.Fallback,
		"failure_reason": string(res.FailureReason),
		"documents":      len(docs),
	})
	return res, nil
}

// draft runs the reply prompt and the requirements prompt. Either failing
// fails both so the caller can substitute the fallback pair.
func (s *analysisService) draft(ctx context.Context, caseType, statement string, docs []casefile.DocumentRef, lang string) (string, string, error) {
	reply, err := s.generate(ctx, casefile.StatementPrompt(caseType, statement, docs, lang),
		llm.WithTemperature(0.7), llm.WithMaxTokens(1000))
	if err != nil {
		return "", "", err
	}
	requirements, err := s.generate(ctx, casefile.DocumentsPrompt(caseType, statement, docs, lang),
		llm.WithTemperature(0.7), llm.WithMaxTokens(1200))
	if err != nil {
		return "", "", err
	}
	return reply, requirements, nil
}

// assess fills the structured fields. Any failure keeps the placeholders.
func (s *analysisService) assess(ctx context.Context, caseType, statement string, docs []casefile.DocumentRef, res *dto.AnalyzeResponse) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: casefile.AssessmentSystemPrompt},
		{Role: "user", Content: casefile.AssessmentPrompt(caseType, statement, docs)},
	}, llm.WithTemperature(0.3), llm.WithMaxTokens(900))
	if err != nil {
		s.logger.Warn("ANALYSIS", "Assessment call failed", map[string]interface{}{
			"reason": string(llm.Classify(err)),
			"error":  err.Error(),
		})
		return
	}

	a, err := casefile.ParseAssessment(raw)
	if err != nil {
		var pe *casefile.ParseError
		details := map[string]interface{}{"error": err.Error()}
		if errors.As(err, &pe) {
			details["reason"] = pe.Reason
		}
		s.logger.Warn("ANALYSIS", "Assessment did not match schema", details)
		return
	}

	res.MissingDocuments = a.MissingDocuments
	res.Recommendations = a.Suggestions
	res.Risks = a.Risks()
	res.WinProbability = *a.WinProbability
}

func (s *analysisService) generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	text, err := s.llmProvider.Generate(ctx, prompt, opts...)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", llm.NewProviderError("analysis", llm.FailureEmpty, 0, errors.New("empty completion"))
	}
	return text, nil
}

func (s *analysisService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
