package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// FailureReason classifies why an upstream call did not yield usable text.
type FailureReason string

const (
	FailureNetwork       FailureReason = "network"
	FailureTimeout       FailureReason = "timeout"
	FailureQuota         FailureReason = "quota"
	FailureAuth          FailureReason = "auth"
	FailureTruncated     FailureReason = "truncated"
	FailureContentFilter FailureReason = "content_filter"
	FailureEmpty         FailureReason = "empty"
	FailureUpstream      FailureReason = "upstream"
)

// ProviderError is returned by every provider in this module.
type ProviderError struct {
	Provider   string
	Reason     FailureReason
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Reason, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, reason FailureReason, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Reason: reason, StatusCode: status, Err: err}
}

// ReasonFromStatus maps a non-2xx HTTP status to a failure reason.
func ReasonFromStatus(status int) FailureReason {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return FailureAuth
	case http.StatusTooManyRequests, http.StatusPaymentRequired:
		return FailureQuota
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return FailureTimeout
	default:
		return FailureUpstream
	}
}

// ReasonFromFinish maps a completion finish reason that explains an empty
// answer. ok is false for finish reasons that carry no failure meaning.
func ReasonFromFinish(finish string) (FailureReason, bool) {
	switch finish {
	case "length", "MAX_TOKENS", "FinishReasonMaxTokens":
		return FailureTruncated, true
	case "content_filter", "SAFETY", "FinishReasonSafety", "RECITATION", "FinishReasonRecitation":
		return FailureContentFilter, true
	}
	return "", false
}

// Classify returns the failure reason for any error produced by a provider
// call, including transport errors that never reached the provider.
func Classify(err error) FailureReason {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return FailureTimeout
		}
		return FailureNetwork
	}
	return FailureUpstream
}

// Describe renders a short human-readable explanation for logs and toasts.
func Describe(reason FailureReason) string {
	switch reason {
	case FailureTruncated:
		return "Response was truncated due to token limit."
	case FailureContentFilter:
		return "Response blocked by content filter. Please rephrase your request."
	case FailureQuota:
		return "The AI service quota was exceeded. Please try again later."
	case FailureAuth:
		return "The AI service rejected our credentials."
	case FailureNetwork:
		return "Network error while contacting the AI service."
	case FailureTimeout:
		return "The AI service took too long to respond."
	case FailureEmpty:
		return "No response generated by the AI service."
	default:
		return "The AI service returned an error."
	}
}
