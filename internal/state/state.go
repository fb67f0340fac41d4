package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"RiskDial/internal/model"
)

// State is the persisted run state: recent snapshots, the append-only
// alert log and the rolling history used for next-day comparisons.
type State struct {
	Snapshots []model.CompositeSnapshot `json:"snapshots"`
	Alerts    []model.AlertLogEntry     `json:"alerts"`
	History   []model.HistoryPoint      `json:"history"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// LoadState reads the state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", filePath, err)
	}
	return &st, nil
}

// SaveState writes the state through a temp file and rename so a crash
// never leaves a truncated file.
func SaveState(filePath string, st *State) error {
	st.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return os.Rename(tmp, filePath)
}
