package models

import (
	"time"
)

// EventKind identifies a record on a pipeline event stream
type EventKind string

const (
	// EventLog carries a log line for the caller
	EventLog EventKind = "log"
	// EventProgress carries a percentage and a label
	EventProgress EventKind = "progress"
	// EventDone is the terminal record of every stream
	EventDone EventKind = "done"
)

// LogLevel is the severity attached to an EventLog
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Event is one record emitted by a running pipeline
type Event struct {
	Kind EventKind
	Time time.Time

	// EventLog
	Level   LogLevel
	Message string

	// EventProgress
	Percent float64
	Label   string

	// EventDone: Status is always set, exactly one of the payloads is non-nil
	Status   RunStatus
	Transfer *TransferOutcome
	Verify   *VerifyResult
	Deletion *DeletionOutcome
	Err      error
}

// NewLogEvent creates a log record
func NewLogEvent(level LogLevel, msg string) Event {
	return Event{Kind: EventLog, Time: time.Now(), Level: level, Message: msg}
}

// NewProgressEvent creates a progress record; percent is clamped to 0..100
func NewProgressEvent(percent float64, label string) Event {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return Event{Kind: EventProgress, Time: time.Now(), Percent: percent, Label: label}
}

// IsTerminal reports whether the event ends its stream
func (e Event) IsTerminal() bool {
	return e.Kind == EventDone
}
