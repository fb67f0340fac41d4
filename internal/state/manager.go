package state

import (
	"sort"
	"sync"

	"RiskDial/internal/band"
	"RiskDial/internal/model"
)

// Retention limits for the state file. The alert log is never trimmed.
const (
	MaxSnapshots = 60
	MaxHistory   = 400
)

// Manager guards the state file. Reads re-derive bands from scores; writes
// are idempotent per date and per (date, alert type).
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
	bands    band.Table
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string, bands band.Table) (*Manager, error) {
	st, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	return &Manager{state: st, filePath: filePath, bands: bands}, nil
}

// Latest returns the most recent snapshot, or nil.
func (m *Manager) Latest() *model.CompositeSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.state.Snapshots) == 0 {
		return nil
	}
	return m.derived(m.state.Snapshots[len(m.state.Snapshots)-1])
}

// PriorTo returns the latest snapshot dated strictly before date, or nil.
func (m *Manager) PriorTo(date string) *model.CompositeSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.state.Snapshots) - 1; i >= 0; i-- {
		if m.state.Snapshots[i].Date < date {
			return m.derived(m.state.Snapshots[i])
		}
	}
	return nil
}

// Alerts returns a copy of the alert log, oldest first.
func (m *Manager) Alerts() []model.AlertLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AlertLogEntry(nil), m.state.Alerts...)
}

// RecentAlerts returns up to n of the newest alerts, newest first.
func (m *Manager) RecentAlerts(n int) []model.AlertLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AlertLogEntry
	for i := len(m.state.Alerts) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.state.Alerts[i])
	}
	return out
}

// History returns a copy of the rolling history, oldest first, with band
// keys re-derived from scores.
func (m *Manager) History() []model.HistoryPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]model.HistoryPoint(nil), m.state.History...)
	for i := range out {
		if out[i].Score != nil {
			out[i].BandKey = m.bands.Classify(*out[i].Score).Key
		}
	}
	return out
}

// Commit stores a run. The snapshot and history point supersede any earlier
// run for the same date. Alerts whose (date, type) is already logged are
// skipped; the entries actually appended are returned.
func (m *Manager) Commit(snap *model.CompositeSnapshot, alerts []model.AlertLogEntry, hist model.HistoryPoint) ([]model.AlertLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap != nil {
		m.putSnapshot(*snap)
	}
	appended := m.appendAlerts(alerts)
	if hist.Date != "" {
		m.putHistory(hist)
	}
	if err := SaveState(m.filePath, m.state); err != nil {
		return nil, err
	}
	return appended, nil
}

func (m *Manager) putSnapshot(snap model.CompositeSnapshot) {
	snaps := m.state.Snapshots[:0]
	for _, s := range m.state.Snapshots {
		if s.Date != snap.Date {
			snaps = append(snaps, s)
		}
	}
	snaps = append(snaps, snap)
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Date < snaps[j].Date })
	if len(snaps) > MaxSnapshots {
		snaps = snaps[len(snaps)-MaxSnapshots:]
	}
	m.state.Snapshots = snaps
}

func (m *Manager) appendAlerts(alerts []model.AlertLogEntry) []model.AlertLogEntry {
	type key struct {
		date string
		typ  model.AlertType
	}
	seen := make(map[key]bool, len(m.state.Alerts))
	for _, a := range m.state.Alerts {
		seen[key{a.Date, a.Type}] = true
	}
	var appended []model.AlertLogEntry
	for _, a := range alerts {
		k := key{a.Date, a.Type}
		if seen[k] {
			continue
		}
		seen[k] = true
		m.state.Alerts = append(m.state.Alerts, a)
		appended = append(appended, a)
	}
	return appended
}

func (m *Manager) putHistory(p model.HistoryPoint) {
	hist := m.state.History[:0]
	for _, h := range m.state.History {
		if h.Date != p.Date {
			hist = append(hist, h)
		}
	}
	hist = append(hist, p)
	sort.SliceStable(hist, func(i, j int) bool { return hist[i].Date < hist[j].Date })
	if len(hist) > MaxHistory {
		hist = hist[len(hist)-MaxHistory:]
	}
	m.state.History = hist
}

// derived copies a stored snapshot and recomputes its band from the score.
func (m *Manager) derived(s model.CompositeSnapshot) *model.CompositeSnapshot {
	out := s
	m.bands.Rederive(&out)
	return &out
}
