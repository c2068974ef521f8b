package dto

import "councellorx-be/pkg/llm"

// DocumentMeta is the public shape of a described upload.
type DocumentMeta struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

type AnalyzeRequest struct {
	Statement string         `json:"statement"`
	CaseType  string         `json:"caseType"`
	Documents []DocumentMeta `json:"documents"`
	Lang      string         `json:"lang,omitempty"`
	Assess    bool           `json:"assess,omitempty"`
}

type AnalyzeResponse struct {
	DraftedStatement     string   `json:"draftedStatement"`
	DocumentRequirements string   `json:"documentRequirements,omitempty"`
	MissingDocuments     []string `json:"missingDocuments"`
	Risks                []string `json:"risks"`
	Recommendations      []string `json:"recommendations"`
	WinProbability       float64  `json:"winProbability"`

	// Kept out of the response body; used for logs and audit events.
	Fallback      bool              `json:"-"`
	FailureReason llm.FailureReason `json:"-"`
}

type FileMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

type ProcessRequest struct {
	Files []FileMeta `json:"files"`
}

type ProcessResponse struct {
	Documents []DocumentMeta `json:"documents"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

// ErrorBody is the flat error shape of the /api analysis endpoints.
type ErrorBody struct {
	Error string `json:"error"`
}
