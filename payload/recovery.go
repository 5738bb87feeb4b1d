package payload

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Recorder persists raw model responses that failed extraction so they can
// be inspected or replayed. Failed responses are never discarded silently.
type Recorder struct {
	dir    string
	logger *slog.Logger
}

// NewRecorder creates a recorder writing under dir. An empty dir disables
// recording (Save becomes a logged no-op).
func NewRecorder(dir string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{dir: dir, logger: logger}
}

// Save writes the raw response text verbatim to a timestamped file and
// returns its path. The label names the failed task (e.g. "prep-plan") and
// becomes part of the filename.
func (r *Recorder) Save(label, raw string) (string, error) {
	if r.dir == "" {
		r.logger.Warn("Recovery dir not configured, dropping raw response", "label", label)
		return "", nil
	}

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return "", fmt.Errorf("create recovery dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_raw_response.txt", label, time.Now().UTC().Format("20060102T150405"))
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		return "", fmt.Errorf("write recovery file: %w", err)
	}

	r.logger.Info("Saved unparseable model response", "label", label, "path", path)
	return path, nil
}
