// Package telemetry provides a JSONL event stream for recording the
// calculation core's activity as structured JSON events, making a run
// auditable and replayable. It defines event kinds for filter-pipeline
// runs, segment builds, optimization decisions and multi-phase/reaction
// results; an event is written only when a caller emits it.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papapumpkin/quasar-thermo/internal/thermo"
)

// Event kinds identify the type of telemetry event.
const (
	KindCalcStart        = "calc_start"
	KindCalcDone         = "calc_done"
	KindFilterResult     = "filter_result"
	KindSegmentBuilt     = "segment_built"
	KindOptimizeDecision = "optimize_decision"
	KindReactionDone     = "reaction_done"
	KindInfo             = "info"
	KindError            = "error"
)

// Event represents a single telemetry record. Each event carries a
// timestamp, a kind tag, a run id correlating every event from one
// calculation, and arbitrary structured data.
type Event struct {
	Timestamp time.Time `json:"ts"`
	Kind      string    `json:"kind"`
	RunID     string    `json:"run_id,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Data      any       `json:"data,omitempty"`
}

// Emitter writes telemetry events to a JSONL file. It is safe for
// concurrent use by multiple goroutines. A nil *Emitter is a valid no-op
// emitter, and it implements thermo.LogSink so it can be handed straight to
// the core.
type Emitter struct {
	file  *os.File
	enc   *json.Encoder
	runID string
	mu    sync.Mutex
}

// NewEmitter creates a new Emitter that writes JSONL events to the file at
// path, tagging every event with a fresh run id. The file is created if it
// does not exist, or appended to if it does.
func NewEmitter(path string) (*Emitter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	return &Emitter{file: f, enc: json.NewEncoder(f), runID: uuid.NewString()}, nil
}

// RunID returns the correlation id this Emitter tags every event with.
// Calling RunID on a nil Emitter returns "".
func (e *Emitter) RunID() string {
	if e == nil {
		return ""
	}
	return e.runID
}

// Emit writes a single kind/data event to the JSONL file. Calling Emit on a
// nil Emitter is a no-op.
func (e *Emitter) Emit(kind string, data any) error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	evt := Event{Timestamp: time.Now(), Kind: kind, RunID: e.runID, Data: data}
	if err := e.enc.Encode(evt); err != nil {
		return fmt.Errorf("telemetry: encode event: %w", err)
	}
	return nil
}

// LogInfo implements thermo.LogSink.
func (e *Emitter) LogInfo(msg string, fields map[string]any) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.enc.Encode(Event{Timestamp: time.Now(), Kind: KindInfo, RunID: e.runID, Message: msg, Data: fields})
}

// LogError implements thermo.LogSink.
func (e *Emitter) LogError(msg string, err error, fields map[string]any) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	_ = e.enc.Encode(Event{Timestamp: time.Now(), Kind: KindError, RunID: e.runID, Message: msg, Error: errStr, Data: fields})
}

var _ thermo.LogSink = (*Emitter)(nil)

// Close flushes and closes the underlying file. Calling Close on a nil
// Emitter is a no-op.
func (e *Emitter) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fmt.Errorf("telemetry: close: %w", err)
	}
	return nil
}
