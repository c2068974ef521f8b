package intake

import (
	"time"

	"councellorx-be/pkg/casefile"
)

type Stage string

const (
	StageIdle              Stage = "idle"
	StageAwaitingCaseType  Stage = "awaiting_case_type"
	StageAwaitingNature    Stage = "awaiting_nature"
	StageAwaitingStatement Stage = "awaiting_statement"
	StageAwaitingDocuments Stage = "awaiting_documents"
	StageConversing        Stage = "conversing"
)

// CaseContext is everything the wizard has learned about the case so far.
type CaseContext struct {
	CaseType  string                 `json:"caseType"`
	Nature    string                 `json:"nature"`
	Lang      string                 `json:"lang,omitempty"`
	Documents []casefile.DocumentRef `json:"documents"`
}

// DocumentPanel is the requirements checklist revealed after the first
// analysis.
type DocumentPanel struct {
	Requirements []string  `json:"requirements"`
	RevealAt     time.Time `json:"revealAt"`
}

// State is implemented only by the wizard states declared in this file.
type State interface {
	Stage() Stage
	isState()
}

type Idle struct{}

type AwaitingCaseType struct{}

type AwaitingNature struct {
	CaseType string
}

type AwaitingStatement struct {
	CaseType string
	Nature   string
}

type AwaitingDocuments struct {
	Case  CaseContext
	Panel *DocumentPanel
}

// Conversing is the open-ended chat. A non-nil Panel means the document
// checklist is showing and the user may still choose to upload or skip.
type Conversing struct {
	Case  CaseContext
	Panel *DocumentPanel
}

func (Idle) Stage() Stage              { return StageIdle }
func (AwaitingCaseType) Stage() Stage  { return StageAwaitingCaseType }
func (AwaitingNature) Stage() Stage    { return StageAwaitingNature }
func (AwaitingStatement) Stage() Stage { return StageAwaitingStatement }
func (AwaitingDocuments) Stage() Stage { return StageAwaitingDocuments }
func (Conversing) Stage() Stage        { return StageConversing }

func (Idle) isState()              {}
func (AwaitingCaseType) isState()  {}
func (AwaitingNature) isState()    {}
func (AwaitingStatement) isState() {}
func (AwaitingDocuments) isState() {}
func (Conversing) isState()        {}

// Context returns the case context carried by s, if any.
func Context(s State) (CaseContext, bool) {
	switch st := s.(type) {
	case AwaitingNature:
		return CaseContext{CaseType: st.CaseType}, true
	case AwaitingStatement:
		return CaseContext{CaseType: st.CaseType, Nature: st.Nature}, true
	case AwaitingDocuments:
		return st.Case, true
	case Conversing:
		return st.Case, true
	}
	return CaseContext{}, false
}

// Options lists the choices the client should render for s.
func Options(s State) []casefile.Choice {
	switch s.(type) {
	case AwaitingCaseType:
		return casefile.CaseTypeChoices
	case AwaitingNature:
		return casefile.NatureChoices
	}
	return nil
}

// Panel returns the document panel for the states that show it.
func Panel(s State) *DocumentPanel {
	switch st := s.(type) {
	case AwaitingDocuments:
		return st.Panel
	case Conversing:
		return st.Panel
	}
	return nil
}
