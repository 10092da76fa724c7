package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sdejongh/camharvest/pkg/logging"
	"github.com/sdejongh/camharvest/pkg/models"
)

// Emitter receives the events of a running pipeline. Emit must not block.
type Emitter interface {
	Emit(ev models.Event)
}

// EmitterFunc adapts a function to Emitter
type EmitterFunc func(ev models.Event)

// Emit calls f(ev)
func (f EmitterFunc) Emit(ev models.Event) {
	f(ev)
}

type discard struct{}

func (discard) Emit(models.Event) {}

// eventQueue is an unbounded FIFO between a pipeline and its consumer.
// Emit never blocks; a pump goroutine forwards events to out and closes it
// once the queue is closed and drained. Consumers must drain out.
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []models.Event
	closed bool
	out    chan models.Event
}

func newEventQueue() *eventQueue {
	q := &eventQueue{out: make(chan models.Event)}
	q.cond = sync.NewCond(&q.mu)
	go q.pump()
	return q
}

func (q *eventQueue) Emit(ev models.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, ev)
	q.cond.Signal()
}

func (q *eventQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
}

func (q *eventQueue) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			return
		}
		ev := q.items[0]
		q.items[0] = models.Event{}
		q.items = q.items[1:]
		q.mu.Unlock()

		q.out <- ev
	}
}

// reporter sends every message to both the structured logger and the event stream
type reporter struct {
	logger logging.Logger
	emit   Emitter
}

func newReporter(logger logging.Logger, emit Emitter) reporter {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	if emit == nil {
		emit = discard{}
	}
	return reporter{logger: logger, emit: emit}
}

func (r reporter) info(ctx context.Context, fields logging.Fields, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Info(ctx, msg, fields)
	r.emit.Emit(models.NewLogEvent(models.LevelInfo, msg))
}

func (r reporter) warn(ctx context.Context, fields logging.Fields, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Warn(ctx, msg, fields)
	r.emit.Emit(models.NewLogEvent(models.LevelWarn, msg))
}

func (r reporter) fail(ctx context.Context, err error, fields logging.Fields, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Error(ctx, msg, err, fields)
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	r.emit.Emit(models.NewLogEvent(models.LevelError, msg))
}

func (r reporter) progress(percent float64, label string) {
	r.emit.Emit(models.NewProgressEvent(percent, label))
}

func doneEvent(status models.RunStatus, err error) models.Event {
	return models.Event{Kind: models.EventDone, Time: time.Now(), Status: status, Err: err}
}

// formatETA renders a duration as "42s" or "3m 5s"
func formatETA(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm %ds", secs/60, secs%60)
}
