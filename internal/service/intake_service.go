package service

import (
	"context"
	"time"

	"councellorx-be/internal/dto"
	"councellorx-be/internal/mapper"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/repository/memory"
	"councellorx-be/pkg/casefile"
	"councellorx-be/pkg/chatsession"
	"councellorx-be/pkg/events"
	"councellorx-be/pkg/intake"

	"github.com/google/uuid"
)

type IIntakeService interface {
	View(ctx context.Context, userID, sessionID uuid.UUID) (*dto.IntakeView, error)
	SendMessage(ctx context.Context, userID, sessionID uuid.UUID, req *dto.IntakeMessageRequest) (*dto.IntakeStepResponse, error)
	SelectCaseType(ctx context.Context, userID, sessionID uuid.UUID, caseType string) (*dto.IntakeStepResponse, error)
	SelectNature(ctx context.Context, userID, sessionID uuid.UUID, nature string) (*dto.IntakeStepResponse, error)
	ChooseUpload(ctx context.Context, userID, sessionID uuid.UUID) (*dto.IntakeStepResponse, error)
	SkipDocuments(ctx context.Context, userID, sessionID uuid.UUID) (*dto.IntakeStepResponse, error)
	DescribeDocuments(ctx context.Context, userID, sessionID uuid.UUID, files []dto.FileMeta) (*dto.IntakeStepResponse, error)
}

type intakeService struct {
	intakeRepo *memory.IntakeRepository
	chat       IChatService
	analysis   IAnalysisService
	documents  IDocumentService
	notifier   FeedNotifier
	logger     logger.ILogger
	panelDelay time.Duration
}

func NewIntakeService(
	intakeRepo *memory.IntakeRepository,
	chat IChatService,
	analysis IAnalysisService,
	documents IDocumentService,
	notifier FeedNotifier,
	logger logger.ILogger,
	panelDelay time.Duration,
) IIntakeService {
	return &intakeService{
		intakeRepo: intakeRepo,
		chat:       chat,
		analysis:   analysis,
		documents:  documents,
		notifier:   notifier,
		logger:     logger,
		panelDelay: panelDelay,
	}
}

func (s *intakeService) View(ctx context.Context, userID, sessionID uuid.UUID) (*dto.IntakeView, error) {
	if err := s.ensureSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	rec, release := s.intakeRepo.Lock(sessionID.String())
	defer release()

	view := buildView(sessionID, rec.State)
	return &view, nil
}

func (s *intakeService) SendMessage(ctx context.Context, userID, sessionID uuid.UUID, req *dto.IntakeMessageRequest) (*dto.IntakeStepResponse, error) {
	return s.step(ctx, userID, sessionID, req.Content, intake.UserMessage{Text: req.Content, Lang: req.Lang})
}

func (s *intakeService) SelectCaseType(ctx context.Context, userID, sessionID uuid.UUID, caseType string) (*dto.IntakeStepResponse, error) {
	return s.step(ctx, userID, sessionID, choiceLabel(casefile.CaseTypeChoices, caseType), intake.SelectCaseType{CaseType: caseType})
}

func (s *intakeService) SelectNature(ctx context.Context, userID, sessionID uuid.UUID, nature string) (*dto.IntakeStepResponse, error) {
	return s.step(ctx, userID, sessionID, choiceLabel(casefile.NatureChoices, nature), intake.SelectNature{Nature: nature})
}

func (s *intakeService) ChooseUpload(ctx context.Context, userID, sessionID uuid.UUID) (*dto.IntakeStepResponse, error) {
	return s.step(ctx, userID, sessionID, "", intake.ChooseUpload{})
}

func (s *intakeService) SkipDocuments(ctx context.Context, userID, sessionID uuid.UUID) (*dto.IntakeStepResponse, error) {
	return s.step(ctx, userID, sessionID, "", intake.SkipDocuments{})
}

func (s *intakeService) DescribeDocuments(ctx context.Context, userID, sessionID uuid.UUID, files []dto.FileMeta) (*dto.IntakeStepResponse, error) {
	docs, err := s.documents.Describe(ctx, files)
	if err != nil {
		return nil, err
	}
	return s.step(ctx, userID, sessionID, "", intake.DocumentsDescribed{Documents: mapper.DocumentMetaToRefs(docs)})
}

func (s *intakeService) ensureSession(ctx context.Context, userID, sessionID uuid.UUID) error {
	exists, err := s.chat.SessionExists(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSessionNotFound
	}
	return nil
}

// step runs one wizard event under the session lock. The new state is kept
// only if every resulting message was appended.
func (s *intakeService) step(ctx context.Context, userID, sessionID uuid.UUID, userText string, event intake.Event) (*dto.IntakeStepResponse, error) {
	if err := s.ensureSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	rec, release := s.intakeRepo.Lock(sessionID.String())
	defer release()

	next, effects, err := intake.Transition(rec.State, event)
	if err != nil {
		return nil, err
	}

	res := &dto.IntakeStepResponse{Messages: []dto.ChatMessageResponse{}}
	appendMsg := func(role, content string, meta map[string]interface{}) error {
		m, err := s.chat.AppendMessage(ctx, userID, sessionID, role, content, meta)
		if err != nil {
			return err
		}
		res.Messages = append(res.Messages, *m)
		return nil
	}

	if userText != "" {
		if err := appendMsg(chatsession.RoleUser, userText, nil); err != nil {
			return nil, err
		}
	}

	for _, effect := range effects {
		switch e := effect.(type) {
		case intake.Prompt:
			var meta map[string]interface{}
			if len(e.Options) > 0 {
				meta = map[string]interface{}{"options": e.Options}
			}
			if err := appendMsg(chatsession.RoleAssistant, e.Text, meta); err != nil {
				return nil, err
			}

		case intake.Analyze:
			reply, requirements := s.runAnalysis(ctx, e)
			var meta map[string]interface{}
			if e.RevealPanel {
				panel := intake.DocumentPanel{
					Requirements: casefile.PanelDocuments(e.Case.CaseType, requirements),
					RevealAt:     time.Now().Add(s.panelDelay),
				}
				if next, _, err = intake.Transition(next, intake.PanelReady{Panel: panel}); err != nil {
					return nil, err
				}
				meta = map[string]interface{}{"documentPanel": panel}
			}
			if err := appendMsg(chatsession.RoleAssistant, reply, meta); err != nil {
				return nil, err
			}
			if e.RevealPanel {
				s.schedulePanel(userID, sessionID, *intake.Panel(next))
			}
		}
	}

	rec.State = next
	res.Intake = buildView(sessionID, next)

	s.logger.Debug("INTAKE", "Step applied", map[string]interface{}{
		"session_id": sessionID.String(),
		"stage":      string(next.Stage()),
	})
	return res, nil
}

// runAnalysis never fails the step; the generic reply stands in for any error.
func (s *intakeService) runAnalysis(ctx context.Context, e intake.Analyze) (reply, requirements string) {
	result, err := s.analysis.Analyze(ctx, &dto.AnalyzeRequest{
		Statement: e.Statement,
		CaseType:  e.Case.CaseType,
		Documents: mapper.DocumentRefsToMeta(e.Case.Documents),
		Lang:      e.Case.Lang,
	})
	if err != nil {
		s.logger.Warn("INTAKE", "Analysis failed", map[string]interface{}{"error": err.Error()})
		return casefile.GenericReply, ""
	}
	return result.DraftedStatement, result.DocumentRequirements
}

func (s *intakeService) schedulePanel(userID, sessionID uuid.UUID, panel intake.DocumentPanel) {
	payload := map[string]interface{}{
		"sessionId":    sessionID,
		"requirements": panel.Requirements,
		"revealAt":     panel.RevealAt,
	}
	time.AfterFunc(time.Until(panel.RevealAt), func() {
		// The session may have been deleted, or the panel dismissed, meanwhile.
		st, ok := s.intakeRepo.Current(sessionID.String())
		if !ok || intake.Panel(st) == nil {
			return
		}
		notifyFeed(s.notifier, userID, events.FeedDocumentPanel, payload)
	})
}

func buildView(sessionID uuid.UUID, st intake.State) dto.IntakeView {
	view := dto.IntakeView{
		SessionId: sessionID.String(),
		Stage:     string(st.Stage()),
		Options:   intake.Options(st),
	}
	if c, ok := intake.Context(st); ok {
		view.CaseType = c.CaseType
		view.Nature = c.Nature
		if len(c.Documents) > 0 {
			view.Documents = mapper.DocumentRefsToMeta(c.Documents)
		}
	}
	if p := intake.Panel(st); p != nil {
		view.Panel = &dto.DocumentPanelView{Requirements: p.Requirements, RevealAt: p.RevealAt}
	}
	return view
}

func choiceLabel(choices []casefile.Choice, value string) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}
