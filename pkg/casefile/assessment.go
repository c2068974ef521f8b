package casefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Admissibility is the model's view on whether the claim can be heard.
type Admissibility struct {
	Status  string   `json:"status" validate:"required,oneof=admissible inadmissible partial"`
	Reasons []string `json:"reasons" validate:"required"`
}

// Assessment is the strict JSON shape requested by AssessmentPrompt.
type Assessment struct {
	Admissibility    Admissibility `json:"admissibility"`
	WinProbability   *float64      `json:"winProbability" validate:"required,gte=0,lte=1"`
	MissingDocuments []string      `json:"missingDocuments" validate:"required"`
	Suggestions      []string      `json:"suggestions" validate:"required"`
}

// ParseError reports a model answer that does not match the schema. The raw
// text is kept for logging only.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("assessment parse: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var schema = validator.New()

// ParseAssessment decodes a model answer that must be exactly one JSON object
// matching Assessment. A single surrounding markdown code fence is tolerated;
// prose, unknown keys, trailing data and out-of-range values are not.
func ParseAssessment(text string) (*Assessment, error) {
	body := stripFence(strings.TrimSpace(text))
	if body == "" {
		return nil, &ParseError{Reason: "empty answer", Raw: text}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()

	var a Assessment
	if err := dec.Decode(&a); err != nil {
		return nil, &ParseError{Reason: "invalid json", Raw: text, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &ParseError{Reason: "trailing data after object", Raw: text, Err: err}
	}
	if err := schema.Struct(&a); err != nil {
		return nil, &ParseError{Reason: "schema violation", Raw: text, Err: err}
	}
	return &a, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := s[3 : len(s)-3]
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		lang := strings.TrimSpace(inner[:nl])
		if lang == "" || strings.EqualFold(lang, "json") {
			inner = inner[nl+1:]
		}
	}
	return strings.TrimSpace(inner)
}

// Risks lists the reasons the claim may fail; empty when admissible.
func (a *Assessment) Risks() []string {
	if a.Admissibility.Status == "admissible" {
		return []string{}
	}
	return a.Admissibility.Reasons
}
