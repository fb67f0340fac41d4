package model

import "time"

// AlertType identifies a state-change event.
type AlertType string

const (
	AlertBandChange   AlertType = "band_change"
	AlertETFZeroCross AlertType = "etf_zero_cross"
)

// AlertState is the per-type detector state for a day.
type AlertState string

const (
	StateNoPrior    AlertState = ReasonNoPriorState
	StateWatching   AlertState = "watching"
	StateFiredToday AlertState = "fired_today"
)

// AlertLogEntry is an append-only alert record; at most one per (Date, Type).
type AlertLogEntry struct {
	ID         string            `json:"id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Date       string            `json:"date"`
	Type       AlertType         `json:"type"`
	Details    map[string]string `json:"details"`
}
