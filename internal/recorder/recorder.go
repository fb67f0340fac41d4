package recorder

import "RiskDial/internal/model"

// Recorder persists run history for analysis (Grafana, ad-hoc SQL).
type Recorder interface {
	// RecordSnapshot stores a snapshot and its factor scores, replacing any
	// earlier run for the same date.
	RecordSnapshot(snap *model.CompositeSnapshot) error
	// RecordAlerts inserts alerts, ignoring (date, type) pairs already stored.
	// It returns the number of rows inserted.
	RecordAlerts(alerts []model.AlertLogEntry) (int, error)
	Close() error
}
