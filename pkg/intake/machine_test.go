package intake

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"councellorx-be/pkg/casefile"
)

func mustStep(t *testing.T, s State, e Event) (State, []Effect) {
	t.Helper()
	next, effects, err := Transition(s, e)
	if err != nil {
		t.Fatalf("Transition(%s, %T) error: %v", stageOf(s), e, err)
	}
	return next, effects
}

func promptText(t *testing.T, effects []Effect) string {
	t.Helper()
	if len(effects) != 1 {
		t.Fatalf("expected one effect, got %d", len(effects))
	}
	p, ok := effects[0].(Prompt)
	if !ok {
		t.Fatalf("expected Prompt, got %T", effects[0])
	}
	return p.Text
}

func TestTransition_HappyPathToConversing(t *testing.T) {
	var s State = Idle{}

	s, eff := mustStep(t, s, UserMessage{Text: "hello"})
	if s.Stage() != StageAwaitingCaseType || promptText(t, eff) != PromptSelectCase {
		t.Fatalf("unexpected first step: %s", s.Stage())
	}
	if got := eff[0].(Prompt).Options; !reflect.DeepEqual(got, casefile.CaseTypeChoices) {
		t.Errorf("case type options = %v", got)
	}

	s, eff = mustStep(t, s, SelectCaseType{CaseType: casefile.CaseTypeDivorce})
	if s.Stage() != StageAwaitingNature || promptText(t, eff) != PromptSelectNature {
		t.Fatalf("unexpected after case type: %s", s.Stage())
	}

	s, eff = mustStep(t, s, SelectNature{Nature: casefile.NatureCivil})
	if s.Stage() != StageAwaitingStatement || promptText(t, eff) != PromptStatement {
		t.Fatalf("unexpected after nature: %s", s.Stage())
	}

	s, eff = mustStep(t, s, UserMessage{Text: "  My spouse left  ", Lang: "en"})
	if s.Stage() != StageConversing {
		t.Fatalf("statement should land in conversing, got %s", s.Stage())
	}
	an, ok := eff[0].(Analyze)
	if !ok || !an.RevealPanel || an.Statement != "My spouse left" || an.Case.CaseType != casefile.CaseTypeDivorce || an.Case.Lang != "en" {
		t.Fatalf("unexpected analyze effect: %+v", eff[0])
	}

	reveal := time.Now().Add(time.Second)
	s, eff = mustStep(t, s, PanelReady{Panel: DocumentPanel{Requirements: []string{"Marriage certificate"}, RevealAt: reveal}})
	if len(eff) != 0 || Panel(s) == nil || Panel(s).Requirements[0] != "Marriage certificate" {
		t.Fatalf("panel not attached: %+v", s)
	}

	s, eff = mustStep(t, s, SkipDocuments{})
	if s.Stage() != StageConversing || promptText(t, eff) != PromptTellYourStory {
		t.Fatalf("skip should lead to conversing with story prompt, got %s", s.Stage())
	}

	s, eff = mustStep(t, s, UserMessage{Text: "What about custody?"})
	an = eff[0].(Analyze)
	if s.Stage() != StageConversing || an.RevealPanel || an.Case.CaseType != casefile.CaseTypeDivorce {
		t.Fatalf("conversing message should forward with same case type: %+v", an)
	}
}

func TestTransition_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		event   Event
		wantErr error
	}{
		{"empty statement", AwaitingStatement{CaseType: "divorce", Nature: "civil"}, UserMessage{Text: "   "}, ErrEmptyStatement},
		{"unknown case type", AwaitingCaseType{}, SelectCaseType{CaseType: "tax"}, ErrInvalidChoice},
		{"unknown nature", AwaitingNature{CaseType: "divorce"}, SelectNature{Nature: "maritime"}, ErrInvalidChoice},
		{"nature before case type", AwaitingCaseType{}, SelectNature{Nature: "civil"}, ErrInvalidTransition},
		{"skip before statement", AwaitingStatement{}, SkipDocuments{}, ErrInvalidTransition},
		{"case type while conversing", Conversing{}, SelectCaseType{CaseType: "divorce"}, ErrInvalidTransition},
		{"upload without panel", Conversing{}, ChooseUpload{}, ErrInvalidTransition},
		{"skip without panel", Conversing{}, SkipDocuments{}, ErrInvalidTransition},
		{"empty conversing message", Conversing{}, UserMessage{}, ErrEmptyStatement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effects, err := Transition(tt.state, tt.event)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if len(effects) != 0 {
				t.Errorf("no effects expected on error, got %v", effects)
			}
			if !reflect.DeepEqual(next, tt.state) {
				t.Errorf("state changed on error: %+v", next)
			}
		})
	}
}

func TestTransition_RepromptsOnFreeText(t *testing.T) {
	s, eff := mustStep(t, AwaitingCaseType{}, UserMessage{Text: "I need help"})
	if s.Stage() != StageAwaitingCaseType || promptText(t, eff) != PromptSelectCase {
		t.Errorf("expected case type re-prompt")
	}
	s, eff = mustStep(t, AwaitingNature{CaseType: "divorce"}, UserMessage{Text: "not sure"})
	if s.Stage() != StageAwaitingNature || promptText(t, eff) != PromptSelectNature {
		t.Errorf("expected nature re-prompt")
	}
}

func TestTransition_DocumentsAreCarriedForward(t *testing.T) {
	c := CaseContext{CaseType: "rental_loan", Nature: "civil", Documents: []casefile.DocumentRef{}}
	s, _ := mustStep(t, Conversing{Case: c, Panel: &DocumentPanel{Requirements: []string{"Lease"}}}, ChooseUpload{})
	if s.Stage() != StageAwaitingDocuments {
		t.Fatalf("expected awaiting documents, got %s", s.Stage())
	}

	docs := []casefile.DocumentRef{{Id: "doc_1", Name: "lease.pdf", Summary: "x"}}
	s, eff := mustStep(t, s, DocumentsDescribed{Documents: docs})
	if s.Stage() != StageConversing {
		t.Fatalf("expected conversing, got %s", s.Stage())
	}
	ctx, _ := Context(s)
	if len(ctx.Documents) != 1 || ctx.Documents[0].Name != "lease.pdf" {
		t.Errorf("documents not carried: %+v", ctx.Documents)
	}
	if txt := promptText(t, eff); txt == "" {
		t.Errorf("expected summary prompt")
	}

	_, eff = mustStep(t, s, UserMessage{Text: "The landlord refuses to return it"})
	if an := eff[0].(Analyze); len(an.Case.Documents) != 1 {
		t.Errorf("analysis must receive uploaded documents")
	}
}

func TestTransition_MessageDismissesPanel(t *testing.T) {
	open := Conversing{Case: CaseContext{CaseType: "divorce"}, Panel: &DocumentPanel{Requirements: []string{"Marriage certificate"}}}
	s, eff := mustStep(t, open, UserMessage{Text: "Actually, one more thing"})
	if s.Stage() != StageConversing || Panel(s) != nil {
		t.Fatalf("expected conversing with the panel dismissed, got %+v", s)
	}
	if _, _, err := Transition(s, SkipDocuments{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("skip after dismissal = %v, want ErrInvalidTransition", err)
	}
	if _, ok := eff[0].(Analyze); !ok {
		t.Errorf("expected analysis effect, got %T", eff[0])
	}
}
