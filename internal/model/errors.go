package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrQuotaExceeded    = errors.New("quota exceeded")
	ErrGenerationFailed = errors.New("generation failed")
)

// QuotaDeniedError carries the full decision so callers can surface
// remaining count and reset instant, never a bare failure.
type QuotaDeniedError struct {
	Decision QuotaDecision
}

func (e *QuotaDeniedError) Error() string {
	return fmt.Sprintf("quota exceeded: resets at %s", e.Decision.ResetsAt.UTC().Format("2006-01-02T15:04:05Z07:00"))
}

func (e *QuotaDeniedError) Unwrap() error { return ErrQuotaExceeded }
