package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientData means there is not enough history for a reliable computation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrSourceUnavailable means an upstream fetch failed or timed out.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrCompositeUndefined means every factor was excluded.
	ErrCompositeUndefined = errors.New("composite undefined: no fresh factors")
)

// Reason codes recorded on factors, sub-signals and adjustments.
const (
	ReasonInsufficientData  = "insufficient_data"
	ReasonSourceUnavailable = "source_unavailable"
	ReasonStale             = "stale"
	ReasonDisabled          = "disabled"
	ReasonZeroVariance      = "zero_variance"
	ReasonNoPriorState      = "no_prior_state"
	ReasonDownsideIgnored   = "downside_ignored"
)

// ConfigError is a ConfigInvariantViolation: malformed weights or band table.
// It is fatal at validation time and never silently corrected.
type ConfigError struct {
	Violations []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config invariant violation: %s", strings.Join(e.Violations, "; "))
}

// Add records a violation.
func (e *ConfigError) Add(format string, args ...any) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

// Merge appends all violations from another error when it is a ConfigError.
func (e *ConfigError) Merge(err error) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		e.Violations = append(e.Violations, ce.Violations...)
	} else if err != nil {
		e.Violations = append(e.Violations, err.Error())
	}
}

// Err returns nil when no violation was recorded.
func (e *ConfigError) Err() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
