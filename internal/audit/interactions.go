package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/untoldecay/biascheck/internal/classify"
)

const idPrefix = "int-"

// Entry is one classification call. Lines are append-only: callers must not
// rewrite existing lines.
type Entry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	RunID     string    `json:"run_id"`

	Actor string `json:"actor,omitempty"`
	Index int    `json:"index"`

	// LLM call
	Model    string `json:"model,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`

	Label string `json:"label,omitempty"`
}

// InteractionLog appends Entries as JSON lines.
type InteractionLog struct {
	path  string
	runID string
	model string
	actor string
	now   func() time.Time
}

// OpenInteractionLog prepares path for appending, creating parent directories
// and the file itself if needed. Every entry is tagged with a fresh run id.
func OpenInteractionLog(path, model, actor string) (*InteractionLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create interactions directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) // nolint:gosec // shared audit file
	if err != nil {
		return nil, fmt.Errorf("failed to create interactions log: %w", err)
	}
	_ = f.Close()
	return &InteractionLog{
		path:  path,
		runID: uuid.NewString(),
		model: model,
		actor: actor,
		now:   time.Now,
	}, nil
}

// RunID identifies the run that produced the entries.
func (l *InteractionLog) RunID() string { return l.runID }

// RecordInteraction implements classify.InteractionRecorder.
func (l *InteractionLog) RecordInteraction(i classify.Interaction) error {
	e := &Entry{
		Kind:     "llm_call",
		Index:    i.Index,
		Actor:    l.actor,
		Model:    l.model,
		Prompt:   i.Prompt,
		Response: i.Response,
	}
	if i.Err != nil {
		e.Error = i.Err.Error()
	} else {
		e.Label = i.Label.String()
	}
	return l.Append(e)
}

// Append writes e as a single JSON line, filling ID, RunID and CreatedAt.
func (l *InteractionLog) Append(e *Entry) error {
	if e == nil {
		return fmt.Errorf("nil entry")
	}
	if e.Kind == "" {
		return fmt.Errorf("kind is required")
	}
	if e.ID == "" {
		e.ID = idPrefix + uuid.NewString()
	}
	e.RunID = l.runID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = l.now().UTC()
	} else {
		e.CreatedAt = e.CreatedAt.UTC()
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644) // nolint:gosec // intended permissions
	if err != nil {
		return fmt.Errorf("failed to open interactions log: %w", err)
	}
	defer func() { _ = f.Close() }()

	bw := bufio.NewWriter(f)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("failed to write interactions log entry: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush interactions log: %w", err)
	}
	return nil
}

// ReadEntries loads every entry in path, oldest first.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path) // #nosec G304 -- audit path
	if err != nil {
		return nil, fmt.Errorf("failed to open interactions log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("interactions log line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read interactions log: %w", err)
	}
	return entries, nil
}
