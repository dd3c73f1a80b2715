package generate

import (
	"fmt"
	"strings"
)

// FailureReason classifies why a generation failed, derived from the
// provider's error text. The provider does not expose structured error
// codes, so substring matching is the only signal available.
type FailureReason string

const (
	ReasonQuota            FailureReason = "quota"
	ReasonBilling          FailureReason = "billing"
	ReasonInvalidParameter FailureReason = "invalid_parameter"
	ReasonUnknown          FailureReason = "unknown"
)

// Error wraps a provider or storage failure after the debit happened. The
// credits were refunded by the time callers see it.
type Error struct {
	Reason FailureReason
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ClassifyFailure inspects the error text for known provider failure modes.
func ClassifyFailure(err error) FailureReason {
	if err == nil {
		return ReasonUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "quota"), strings.Contains(msg, "rate limit"):
		return ReasonQuota
	case strings.Contains(msg, "billing"):
		return ReasonBilling
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "unsupported"), strings.Contains(msg, "must be"):
		return ReasonInvalidParameter
	default:
		return ReasonUnknown
	}
}
