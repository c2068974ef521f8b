package service

import (
	"context"
	"testing"
	"time"

	"councellorx-be/internal/dto"
	"councellorx-be/internal/pkg/logger"
	"councellorx-be/internal/repository/memory"
	"councellorx-be/pkg/casefile"
	"councellorx-be/pkg/chatsession"
	"councellorx-be/pkg/events"
	"councellorx-be/pkg/intake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intakeFixture struct {
	store    *fakeStore
	llm      *fakeLLM
	notifier *fakeNotifier
	service  IIntakeService
	chat     IChatService
}

func newIntakeFixture(panelDelay time.Duration) *intakeFixture {
	f := &intakeFixture{
		store: newFakeStore(),
		llm: &fakeLLM{generations: []string{
			"I'm sorry you're going through this.",
			"PLAINTIFF: You\nDEFENDANT: Spouse\n\nREQUIRED DOCUMENTS FOR DEFENDANT:\n- Marriage certificate\n- Proof of separation",
		}},
		notifier: &fakeNotifier{},
	}
	log := logger.NewNopLogger()
	intakeRepo := memory.NewIntakeRepository(time.Hour)
	f.chat = NewChatService(f.store, memory.NewOutboxRepository(), intakeRepo, &fakeScheduler{}, f.notifier, nil, log)
	analysis := NewAnalysisService(f.llm, nil, log, 0)
	documents := NewDocumentService(nil, log)
	f.service = NewIntakeService(intakeRepo, f.chat, analysis, documents, f.notifier, log, panelDelay)
	return f
}

func roles(msgs []dto.ChatMessageResponse) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Role)
	}
	return out
}

func TestIntakeService_Walkthrough(t *testing.T) {
	f := newIntakeFixture(time.Millisecond)
	ctx := context.Background()
	userID := uuid.New()
	session := f.store.seedSession(userID)

	view, err := f.service.View(ctx, userID, session.Id)
	require.NoError(t, err)
	assert.Equal(t, string(intake.StageIdle), view.Stage)

	// Greeting
	res, err := f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{Content: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{chatsession.RoleUser, chatsession.RoleAssistant}, roles(res.Messages))
	assert.Equal(t, intake.PromptSelectCase, res.Messages[1].Content)
	assert.Contains(t, res.Messages[1].Meta, "options")
	assert.Equal(t, string(intake.StageAwaitingCaseType), res.Intake.Stage)
	assert.Equal(t, casefile.CaseTypeChoices, res.Intake.Options)

	// Case type, echoed as its label
	res, err = f.service.SelectCaseType(ctx, userID, session.Id, casefile.CaseTypeDivorce)
	require.NoError(t, err)
	assert.Equal(t, "Divorce", res.Messages[0].Content)
	assert.Equal(t, string(intake.StageAwaitingNature), res.Intake.Stage)
	assert.Equal(t, casefile.CaseTypeDivorce, res.Intake.CaseType)

	res, err = f.service.SelectNature(ctx, userID, session.Id, casefile.NatureCivil)
	require.NoError(t, err)
	assert.Equal(t, intake.PromptStatement, res.Messages[1].Content)
	assert.Equal(t, string(intake.StageAwaitingStatement), res.Intake.Stage)

	// Statement triggers analysis and schedules the document panel
	res, err = f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{
		Content: "We separated two years ago and both want a divorce.",
		Lang:    "en",
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, "I'm sorry you're going through this.", res.Messages[1].Content)
	assert.Contains(t, res.Messages[1].Meta, "documentPanel")
	assert.Equal(t, string(intake.StageConversing), res.Intake.Stage)
	require.NotNil(t, res.Intake.Panel)
	assert.Equal(t, []string{"Marriage certificate", "Proof of separation"}, res.Intake.Panel.Requirements)

	assert.Eventually(t, func() bool {
		for _, typ := range f.notifier.types() {
			if typ == events.FeedDocumentPanel {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	res, err = f.service.ChooseUpload(ctx, userID, session.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{chatsession.RoleAssistant}, roles(res.Messages))
	assert.Equal(t, string(intake.StageAwaitingDocuments), res.Intake.Stage)
	assert.NotNil(t, res.Intake.Panel)

	res, err = f.service.DescribeDocuments(ctx, userID, session.Id, []dto.FileMeta{
		{Name: "marriage_certificate.pdf", Size: 1200, Type: "application/pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, string(intake.StageConversing), res.Intake.Stage)
	require.Len(t, res.Intake.Documents, 1)
	assert.Equal(t, "doc_1", res.Intake.Documents[0].Id)
	assert.Contains(t, res.Messages[0].Content, "marriage_certificate.pdf")

	// Every message landed in the session history.
	history, err := f.chat.LoadSession(ctx, userID, session.Id)
	require.NoError(t, err)
	assert.Len(t, history, 10)
	assert.Equal(t, "Hello", f.store.session(session.Id).Title)
}

func TestIntakeService_SkipDocuments(t *testing.T) {
	f := newIntakeFixture(time.Hour)
	ctx := context.Background()
	userID := uuid.New()
	session := f.store.seedSession(userID)

	_, err := f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{Content: "hi"})
	require.NoError(t, err)
	_, err = f.service.SelectCaseType(ctx, userID, session.Id, casefile.CaseTypeRentalLoan)
	require.NoError(t, err)
	_, err = f.service.SelectNature(ctx, userID, session.Id, casefile.NatureCriminal)
	require.NoError(t, err)
	_, err = f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{Content: "My tenant stopped paying rent."})
	require.NoError(t, err)

	res, err := f.service.SkipDocuments(ctx, userID, session.Id)
	require.NoError(t, err)
	assert.Equal(t, intake.PromptTellYourStory, res.Messages[0].Content)
	assert.Equal(t, string(intake.StageConversing), res.Intake.Stage)
	assert.Equal(t, casefile.NatureCriminal, res.Intake.Nature)
}

func TestIntakeService_RejectsOutOfOrderEvents(t *testing.T) {
	f := newIntakeFixture(time.Hour)
	ctx := context.Background()
	userID := uuid.New()
	session := f.store.seedSession(userID)

	_, err := f.service.SelectNature(ctx, userID, session.Id, casefile.NatureCivil)
	assert.ErrorIs(t, err, intake.ErrInvalidTransition)

	_, err = f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{Content: "hi"})
	require.NoError(t, err)

	_, err = f.service.SelectCaseType(ctx, userID, session.Id, "tax")
	assert.ErrorIs(t, err, intake.ErrInvalidChoice)

	// Rejected events leave no messages behind.
	assert.Equal(t, 2, f.store.messageCount(session.Id))

	view, err := f.service.View(ctx, userID, session.Id)
	require.NoError(t, err)
	assert.Equal(t, string(intake.StageAwaitingCaseType), view.Stage)
}

func TestIntakeService_AnalysisFailureStillReplies(t *testing.T) {
	f := newIntakeFixture(time.Hour)
	f.llm.err = context.DeadlineExceeded
	ctx := context.Background()
	userID := uuid.New()
	session := f.store.seedSession(userID)

	_, err := f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{Content: "hi"})
	require.NoError(t, err)
	_, err = f.service.SelectCaseType(ctx, userID, session.Id, casefile.CaseTypeDivorce)
	require.NoError(t, err)
	_, err = f.service.SelectNature(ctx, userID, session.Id, casefile.NatureCivil)
	require.NoError(t, err)

	res, err := f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{Content: "We want to separate."})
	require.NoError(t, err)

	assert.Equal(t, divorceFallbackReply, res.Messages[1].Content)
	require.NotNil(t, res.Intake.Panel)
	assert.Equal(t, []string{
		"Marriage certificate",
		"Financial statements",
		"Property documents",
		"Communication records",
		"Any relevant evidence",
	}, res.Intake.Panel.Requirements)
}

const divorceFallbackReply = "I understand you're going through a difficult time with your marriage. I'm here to help you navigate this legal process."

func hasFeedEvent(n *fakeNotifier, eventType string) bool {
	for _, typ := range n.types() {
		if typ == eventType {
			return true
		}
	}
	return false
}

// Divorce, Civil, then a typed statement: the chat is open for conversation
// right away and the checklist follows after the delay.
func TestIntakeService_StatementOpensConversation(t *testing.T) {
	f := newIntakeFixture(20 * time.Millisecond)
	f.llm.generations = []string{
		"I'm sorry to hear that. Let's look at your options.",
		"PLAINTIFF: Spouse\nDEFENDANT: You\n\nREQUIRED DOCUMENTS FOR DEFENDANT:\n- Marriage certificate\n- Proof of residence",
	}
	ctx := context.Background()
	userID := uuid.New()
	session := f.store.seedSession(userID)

	_, err := f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{Content: "hi"})
	require.NoError(t, err)
	_, err = f.service.SelectCaseType(ctx, userID, session.Id, casefile.CaseTypeDivorce)
	require.NoError(t, err)
	_, err = f.service.SelectNature(ctx, userID, session.Id, casefile.NatureCivil)
	require.NoError(t, err)

	res, err := f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{Content: "My spouse filed for divorce"})
	require.NoError(t, err)
	assert.Equal(t, string(intake.StageConversing), res.Intake.Stage)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, chatsession.RoleAssistant, res.Messages[1].Role)
	assert.NotEmpty(t, res.Messages[1].Content)
	require.NotNil(t, res.Intake.Panel)
	assert.Contains(t, res.Intake.Panel.Requirements, "Marriage certificate")

	assert.False(t, hasFeedEvent(f.notifier, events.FeedDocumentPanel), "panel must wait for the delay")
	assert.Eventually(t, func() bool { return hasFeedEvent(f.notifier, events.FeedDocumentPanel) }, time.Second, 5*time.Millisecond)

	view, err := f.service.View(ctx, userID, session.Id)
	require.NoError(t, err)
	assert.Equal(t, string(intake.StageConversing), view.Stage)
}

func TestIntakeService_PanelSuppressed(t *testing.T) {
	toStatement := func(t *testing.T, f *intakeFixture, userID, sessionID uuid.UUID) {
		t.Helper()
		ctx := context.Background()
		_, err := f.service.SendMessage(ctx, userID, sessionID, &dto.IntakeMessageRequest{Content: "hi"})
		require.NoError(t, err)
		_, err = f.service.SelectCaseType(ctx, userID, sessionID, casefile.CaseTypeDivorce)
		require.NoError(t, err)
		_, err = f.service.SelectNature(ctx, userID, sessionID, casefile.NatureCivil)
		require.NoError(t, err)
		_, err = f.service.SendMessage(ctx, userID, sessionID, &dto.IntakeMessageRequest{Content: "We want to separate."})
		require.NoError(t, err)
	}

	t.Run("session deleted before the delay", func(t *testing.T) {
		f := newIntakeFixture(30 * time.Millisecond)
		userID := uuid.New()
		session := f.store.seedSession(userID)
		toStatement(t, f, userID, session.Id)

		require.NoError(t, f.chat.DeleteSession(context.Background(), userID, session.Id))

		time.Sleep(100 * time.Millisecond)
		assert.False(t, hasFeedEvent(f.notifier, events.FeedDocumentPanel))
	})

	t.Run("panel dismissed by a new message", func(t *testing.T) {
		f := newIntakeFixture(30 * time.Millisecond)
		userID := uuid.New()
		session := f.store.seedSession(userID)
		toStatement(t, f, userID, session.Id)

		res, err := f.service.SendMessage(context.Background(), userID, session.Id, &dto.IntakeMessageRequest{Content: "One more detail"})
		require.NoError(t, err)
		assert.Nil(t, res.Intake.Panel)

		time.Sleep(100 * time.Millisecond)
		assert.False(t, hasFeedEvent(f.notifier, events.FeedDocumentPanel))
	})

	t.Run("failed step arms nothing", func(t *testing.T) {
		f := newIntakeFixture(time.Millisecond)
		userID := uuid.New()
		session := f.store.seedSession(userID)
		ctx := context.Background()
		_, err := f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{Content: "hi"})
		require.NoError(t, err)
		_, err = f.service.SelectCaseType(ctx, userID, session.Id, casefile.CaseTypeDivorce)
		require.NoError(t, err)
		_, err = f.service.SelectNature(ctx, userID, session.Id, casefile.NatureCivil)
		require.NoError(t, err)

		// The session disappears between the ownership check and the reply.
		f.store.deleteSessionAfterMessages(session.Id, 1)
		_, err = f.service.SendMessage(ctx, userID, session.Id, &dto.IntakeMessageRequest{Content: "We want to separate."})
		assert.ErrorIs(t, err, ErrSessionNotFound)

		time.Sleep(50 * time.Millisecond)
		assert.False(t, hasFeedEvent(f.notifier, events.FeedDocumentPanel))
	})
}

func TestIntakeService_UnknownSession(t *testing.T) {
	f := newIntakeFixture(time.Hour)
	ctx := context.Background()

	_, err := f.service.View(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	owned := f.store.seedSession(uuid.New())
	_, err = f.service.SendMessage(ctx, uuid.New(), owned.Id, &dto.IntakeMessageRequest{Content: "hi"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
