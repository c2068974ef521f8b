package intake

import (
	"errors"
	"fmt"
	"strings"

	"councellorx-be/pkg/casefile"
)

const (
	PromptSelectCase    = "Please select from a case"
	PromptSelectNature  = "Now choose Civil or Criminal."
	PromptStatement     = "Please describe what happened in your own words. You can type it or record a voice note."
	PromptUpload        = "Upload the documents you have. Only file names and sizes are used and nothing is stored."
	PromptTellYourStory = "No problem. Tell me your story in as much detail as you like and I'll guide you from there."
)

var (
	ErrInvalidTransition = errors.New("intake: event not allowed in current state")
	ErrEmptyStatement    = errors.New("intake: statement is empty")
	ErrInvalidChoice     = errors.New("intake: unknown option")
)

// Event is implemented only by the wizard events declared in this file.
type Event interface {
	isEvent()
}

type UserMessage struct {
	Text string
	Lang string
}

type SelectCaseType struct {
	CaseType string
}

type SelectNature struct {
	Nature string
}

// PanelReady attaches the requirements checklist once analysis returns.
type PanelReady struct {
	Panel DocumentPanel
}

type ChooseUpload struct{}

type SkipDocuments struct{}

type DocumentsDescribed struct {
	Documents []casefile.DocumentRef
}

func (UserMessage) isEvent()        {}
func (SelectCaseType) isEvent()     {}
func (SelectNature) isEvent()       {}
func (PanelReady) isEvent()         {}
func (ChooseUpload) isEvent()       {}
func (SkipDocuments) isEvent()      {}
func (DocumentsDescribed) isEvent() {}

// Effect is work the caller must perform after a transition.
type Effect interface {
	isEffect()
}

// Prompt is an assistant message to append verbatim.
type Prompt struct {
	Text    string
	Options []casefile.Choice
}

// Analyze asks for a case analysis of Statement. RevealPanel is set only for
// the first statement of a case.
type Analyze struct {
	Statement   string
	Case        CaseContext
	RevealPanel bool
}

func (Prompt) isEffect()  {}
func (Analyze) isEffect() {}

// Transition is the whole wizard. It is pure: it never performs I/O, and on
// error the returned state is the input state.
func Transition(s State, e Event) (State, []Effect, error) {
	switch st := s.(type) {
	case Idle:
		if _, ok := e.(UserMessage); ok {
			return AwaitingCaseType{}, []Effect{Prompt{Text: PromptSelectCase, Options: casefile.CaseTypeChoices}}, nil
		}

	case AwaitingCaseType:
		switch ev := e.(type) {
		case UserMessage:
			return st, []Effect{Prompt{Text: PromptSelectCase, Options: casefile.CaseTypeChoices}}, nil
		case SelectCaseType:
			if !casefile.IsValidChoice(casefile.CaseTypeChoices, ev.CaseType) {
				return s, nil, fmt.Errorf("%w: case type %q", ErrInvalidChoice, ev.CaseType)
			}
			return AwaitingNature{CaseType: ev.CaseType}, []Effect{Prompt{Text: PromptSelectNature, Options: casefile.NatureChoices}}, nil
		}

	case AwaitingNature:
		switch ev := e.(type) {
		case UserMessage:
			return st, []Effect{Prompt{Text: PromptSelectNature, Options: casefile.NatureChoices}}, nil
		case SelectNature:
			if !casefile.IsValidChoice(casefile.NatureChoices, ev.Nature) {
				return s, nil, fmt.Errorf("%w: nature %q", ErrInvalidChoice, ev.Nature)
			}
			return AwaitingStatement{CaseType: st.CaseType, Nature: ev.Nature}, []Effect{Prompt{Text: PromptStatement}}, nil
		}

	case AwaitingStatement:
		if ev, ok := e.(UserMessage); ok {
			text := strings.TrimSpace(ev.Text)
			if text == "" {
				return s, nil, ErrEmptyStatement
			}
			c := CaseContext{CaseType: st.CaseType, Nature: st.Nature, Lang: ev.Lang, Documents: []casefile.DocumentRef{}}
			return Conversing{Case: c}, []Effect{Analyze{Statement: text, Case: c, RevealPanel: true}}, nil
		}

	case AwaitingDocuments:
		switch ev := e.(type) {
		case PanelReady:
			p := ev.Panel
			st.Panel = &p
			return st, nil, nil
		case SkipDocuments:
			return Conversing{Case: st.Case}, []Effect{Prompt{Text: PromptTellYourStory}}, nil
		case DocumentsDescribed:
			return describe(st.Case, ev.Documents)
		case UserMessage:
			return converse(s, st.Case, ev)
		}

	case Conversing:
		switch ev := e.(type) {
		case PanelReady:
			p := ev.Panel
			st.Panel = &p
			return st, nil, nil
		case ChooseUpload:
			if st.Panel != nil {
				return AwaitingDocuments{Case: st.Case, Panel: st.Panel}, []Effect{Prompt{Text: PromptUpload}}, nil
			}
		case SkipDocuments:
			if st.Panel != nil {
				return Conversing{Case: st.Case}, []Effect{Prompt{Text: PromptTellYourStory}}, nil
			}
		case UserMessage:
			return converse(s, st.Case, ev)
		case DocumentsDescribed:
			return describe(st.Case, ev.Documents)
		}
	}

	return s, nil, fmt.Errorf("%w: %T in %s", ErrInvalidTransition, e, stageOf(s))
}

func converse(s State, c CaseContext, ev UserMessage) (State, []Effect, error) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return s, nil, ErrEmptyStatement
	}
	if ev.Lang != "" {
		c.Lang = ev.Lang
	}
	return Conversing{Case: c}, []Effect{Analyze{Statement: text, Case: c}}, nil
}

func describe(c CaseContext, docs []casefile.DocumentRef) (State, []Effect, error) {
	merged := make([]casefile.DocumentRef, 0, len(c.Documents)+len(docs))
	merged = append(merged, c.Documents...)
	merged = append(merged, docs...)
	c.Documents = merged
	return Conversing{Case: c}, []Effect{Prompt{Text: DocumentsSummary(docs)}}, nil
}

// DocumentsSummary is the assistant message listing freshly described files.
func DocumentsSummary(docs []casefile.DocumentRef) string {
	if len(docs) == 0 {
		return "No documents were received. " + PromptTellYourStory
	}
	var b strings.Builder
	fmt.Fprintf(&b, "I've noted %d document(s):", len(docs))
	for _, d := range docs {
		fmt.Fprintf(&b, "\n- %s: %s", d.Name, d.Summary)
	}
	b.WriteString("\n\nTell me more about your situation whenever you're ready.")
	return b.String()
}

func stageOf(s State) Stage {
	if s == nil {
		return ""
	}
	return s.Stage()
}
