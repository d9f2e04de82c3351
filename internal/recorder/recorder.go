// Package recorder keeps a rotating JSONL flight record of cleaning runs.
// When a site misbehaves, the trace shows what each tool call saw and did
// without rerunning the browser against a dialog that may never come back.
package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// maxTraces bounds the trace directory: one file per server launch, oldest
// launches dropped first.
const maxTraces = 5

// Event is one record in a trace file.
type Event struct {
	Timestamp time.Time   `json:"ts"`
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data"`
}

// Recorder appends events to the current trace file. Safe for concurrent use;
// a recorder that was never started drops events silently.
type Recorder struct {
	mu   sync.Mutex
	dir  string
	path string
	file *os.File
	enc  *json.Encoder
}

// NewRecorder prepares the trace directory. Tracing is opt-in, so an empty
// directory is a caller bug rather than a default.
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, fmt.Errorf("recorder: empty trace directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("recorder: %w", err)
	}
	return &Recorder{dir: dir}, nil
}

// Start opens a fresh trace file for this server launch and drops the oldest
// files beyond the retention cap.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
		r.enc = nil
	}

	if err := r.rotate(); err != nil {
		return fmt.Errorf("rotate traces: %w", err)
	}

	path := filepath.Join(r.dir, fmt.Sprintf("trace_%d.jsonl", time.Now().UnixMilli()))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	r.path = path
	r.file = f
	r.enc = json.NewEncoder(f)
	return nil
}

// Path reports the current trace file, empty before Start.
func (r *Recorder) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Log appends one event. Encoding failures are swallowed: a trace must never
// break the run it is tracing.
func (r *Recorder) Log(eventType, sessionID string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enc == nil {
		return
	}
	_ = r.enc.Encode(Event{
		Timestamp: time.Now(),
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
	})
}

// rotate removes the oldest trace files, leaving room for the one about to
// be created.
func (r *Recorder) rotate() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) < maxTraces {
		return nil
	}

	// trace_<unixms>.jsonl sorts chronologically.
	sort.Strings(names)
	for _, name := range names[:len(names)-maxTraces+1] {
		_ = os.Remove(filepath.Join(r.dir, name))
	}
	return nil
}

// Close ends the current trace.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	r.enc = nil
	return err
}
