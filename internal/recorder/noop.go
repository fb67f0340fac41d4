package recorder

import "RiskDial/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(_ *model.CompositeSnapshot) error   { return nil }
func (n *NoopRecorder) RecordAlerts(_ []model.AlertLogEntry) (int, error) { return 0, nil }
func (n *NoopRecorder) Close() error                                      { return nil }
