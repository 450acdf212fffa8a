package medra

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RunResult captures one sample run for offline comparison: which
// kernel ran, on what device, how long it took, and whether the
// verification gate passed.
type RunResult struct {
	Kernel     string    `json:"kernel"`
	Device     string    `json:"device"`
	Iterations int       `json:"iterations"`
	KernelMs   float64   `json:"kernel_ms,omitempty"`
	WallMs     float64   `json:"wall_ms,omitempty"`
	Passed     bool      `json:"passed"`
	Timestamp  time.Time `json:"timestamp"`
}

// RunLogger appends RunResults to a JSON-lines file.
type RunLogger struct {
	mu   sync.Mutex
	path string
}

// NewRunLogger creates a logger writing to the given path. Parent
// directories are created on first log.
func NewRunLogger(path string) *RunLogger {
	return &RunLogger{path: path}
}

// Log appends one result.
func (l *RunLogger) Log(r RunResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	return enc.Encode(r)
}
