// Package sync runs the extraction, verification and deletion pipelines
// against a device bridge and reports through an event stream.
package sync

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/sdejongh/camharvest/pkg/device"
	"github.com/sdejongh/camharvest/pkg/logging"
	"github.com/sdejongh/camharvest/pkg/models"
)

// Engine starts pipelines in the background, one at a time. Each Start call
// returns a channel of events that ends with exactly one EventDone and is
// then closed. Callers must drain the channel.
type Engine struct {
	bridge device.Bridge
	logger logging.Logger

	busy atomic.Bool

	mu      sync.Mutex
	current *Transfer
}

// NewEngine creates a new engine
func NewEngine(bridge device.Bridge, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Engine{bridge: bridge, logger: logger}
}

// Busy reports whether a pipeline is running
func (e *Engine) Busy() bool {
	return e.busy.Load()
}

// StartTransfer launches an extraction run
func (e *Engine) StartTransfer(ctx context.Context, cfg *models.SyncConfig) (<-chan models.Event, error) {
	run, err := e.prepare(cfg)
	if err != nil {
		return nil, err
	}
	if !e.acquire() {
		return nil, models.ErrPipelineBusy
	}

	q := newEventQueue()
	t := NewTransfer(e.bridge, run, e.runLogger(run, "transfer"), q)
	e.mu.Lock()
	e.current = t
	e.mu.Unlock()

	return e.launch(q, func() models.Event {
		defer func() {
			e.mu.Lock()
			e.current = nil
			e.mu.Unlock()
		}()

		outcome, err := t.Run(ctx)
		ev := doneEvent(outcome.Status, err)
		ev.Transfer = outcome
		return ev
	}), nil
}

// CancelTransfer stops the running extraction before its next file.
// It does nothing when no extraction is running.
func (e *Engine) CancelTransfer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != nil {
		e.current.Cancel()
	}
}

// StartVerification launches a verification run
func (e *Engine) StartVerification(ctx context.Context, cfg *models.SyncConfig) (<-chan models.Event, error) {
	run, err := e.prepare(cfg)
	if err != nil {
		return nil, err
	}
	if !e.acquire() {
		return nil, models.ErrPipelineBusy
	}
	q := newEventQueue()
	return e.launch(q, func() models.Event {
		result, err := NewVerifier(e.bridge, run, e.runLogger(run, "verify"), q).Run(ctx)
		ev := doneEvent(result.Status, err)
		ev.Verify = result
		return ev
	}), nil
}

// StartDeletion launches a batched deletion of names, typically the
// SafeDeleteSet of a verification run
func (e *Engine) StartDeletion(ctx context.Context, cfg *models.SyncConfig, names []string) (<-chan models.Event, error) {
	run, err := e.prepare(cfg)
	if err != nil {
		return nil, err
	}
	names = append([]string(nil), names...)
	if !e.acquire() {
		return nil, models.ErrPipelineBusy
	}
	q := newEventQueue()
	return e.launch(q, func() models.Event {
		outcome, err := NewDeleter(e.bridge, run, e.runLogger(run, "delete"), q).Run(ctx, names)
		ev := doneEvent(outcome.Status, err)
		ev.Deletion = outcome
		return ev
	}), nil
}

// prepare validates cfg and returns a private copy carrying a run ID
func (e *Engine) prepare(cfg *models.SyncConfig) (*models.SyncConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	run := *cfg
	run.ExcludePatterns = append([]string(nil), cfg.ExcludePatterns...)
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	return &run, nil
}

func (e *Engine) runLogger(cfg *models.SyncConfig, pipeline string) logging.Logger {
	return e.logger.WithFields(logging.Fields{"run_id": cfg.ID, "pipeline": pipeline})
}

func (e *Engine) acquire() bool {
	return e.busy.CompareAndSwap(false, true)
}

// launch runs fn in a goroutine. The busy flag is released before the
// terminal event is queued so a consumer may start the next pipeline as
// soon as it sees it.
func (e *Engine) launch(q *eventQueue, fn func() models.Event) <-chan models.Event {
	go func() {
		defer q.Close()
		done := fn()
		e.busy.Store(false)
		q.Emit(done)
	}()
	return q.out
}
