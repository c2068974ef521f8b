package dto

import (
	"time"

	"councellorx-be/pkg/casefile"
)

type IntakeMessageRequest struct {
	Content string `json:"content"`
	Lang    string `json:"lang,omitempty"`
}

type SelectCaseTypeRequest struct {
	CaseType string `json:"caseType" validate:"required"`
}

type SelectNatureRequest struct {
	Nature string `json:"nature" validate:"required"`
}

type DescribeDocumentsRequest struct {
	Files []FileMeta `json:"files"`
}

type DocumentPanelView struct {
	Requirements []string  `json:"requirements"`
	RevealAt     time.Time `json:"revealAt"`
}

// IntakeView is what the client needs to render the wizard.
type IntakeView struct {
	SessionId string             `json:"sessionId"`
	Stage     string             `json:"stage"`
	CaseType  string             `json:"caseType,omitempty"`
	Nature    string             `json:"nature,omitempty"`
	Options   []casefile.Choice  `json:"options,omitempty"`
	Documents []DocumentMeta     `json:"documents,omitempty"`
	Panel     *DocumentPanelView `json:"documentPanel,omitempty"`
}

// IntakeStepResponse is the result of one wizard event: the messages it
// appended and the resulting view.
type IntakeStepResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
	Intake   IntakeView            `json:"intake"`
}
