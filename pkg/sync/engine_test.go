package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sdejongh/camharvest/pkg/models"
)

func drain(t *testing.T, events <-chan models.Event) []models.Event {
	t.Helper()
	var out []models.Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("event stream did not close")
		}
	}
}

func TestEngineTransferStream(t *testing.T) {
	dest := t.TempDir()
	engine := NewEngine(newFakeBridge(scenarioFiles()...), nil)

	events, err := engine.StartTransfer(context.Background(), newTestConfig(dest))
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, events)

	if len(got) == 0 {
		t.Fatal("no events")
	}
	last := got[len(got)-1]
	if !last.IsTerminal() || last.Status != models.StatusCompleted || last.Transfer == nil {
		t.Fatalf("last event = %+v", last)
	}
	for _, ev := range got[:len(got)-1] {
		if ev.IsTerminal() {
			t.Error("terminal event before the end of the stream")
		}
	}
	if last.Transfer.Downloaded != 3 {
		t.Errorf("Downloaded = %d", last.Transfer.Downloaded)
	}
	if last.Transfer.RunID != "test-run" {
		t.Errorf("RunID = %q", last.Transfer.RunID)
	}
	if engine.Busy() {
		t.Error("engine still busy after the stream closed")
	}
}

func TestEngineAssignsRunID(t *testing.T) {
	engine := NewEngine(newFakeBridge(), nil)
	cfg := newTestConfig(t.TempDir())
	cfg.ID = ""

	events, err := engine.StartVerification(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, events)
	last := got[len(got)-1]
	if last.Verify == nil || last.Verify.RunID == "" {
		t.Errorf("last event = %+v", last)
	}
	if cfg.ID != "" {
		t.Error("caller config must not be modified")
	}
}

func TestEngineRejectsConcurrentPipelines(t *testing.T) {
	bridge := newFakeBridge(scenarioFiles()...)
	bridge.block = make(chan struct{})
	engine := NewEngine(bridge, nil)
	cfg := newTestConfig(t.TempDir())

	events, err := engine.StartTransfer(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := engine.StartVerification(context.Background(), cfg); !errors.Is(err, models.ErrPipelineBusy) {
		t.Errorf("StartVerification() error = %v, want ErrPipelineBusy", err)
	}
	if _, err := engine.StartDeletion(context.Background(), cfg, []string{"a.jpg"}); !errors.Is(err, models.ErrPipelineBusy) {
		t.Errorf("StartDeletion() error = %v, want ErrPipelineBusy", err)
	}

	close(bridge.block)
	drain(t, events)

	events, err = engine.StartDeletion(context.Background(), cfg, []string{"a.jpg"})
	if err != nil {
		t.Fatalf("StartDeletion() after completion error = %v", err)
	}
	got := drain(t, events)
	if last := got[len(got)-1]; last.Deletion == nil || last.Deletion.Deleted != 1 {
		t.Errorf("last event = %+v", last)
	}
}

func TestEngineCancelTransfer(t *testing.T) {
	bridge := newFakeBridge(scenarioFiles()...)
	bridge.block = make(chan struct{})
	engine := NewEngine(bridge, nil)

	events, err := engine.StartTransfer(context.Background(), newTestConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	engine.CancelTransfer()
	close(bridge.block)

	got := drain(t, events)
	last := got[len(got)-1]
	if last.Status != models.StatusCancelled {
		t.Errorf("Status = %s, want cancelled", last.Status)
	}
	if last.Transfer.Processed != 0 || len(bridge.pulls) != 0 {
		t.Errorf("processed %d pulls %v", last.Transfer.Processed, bridge.pulls)
	}
}

func TestEngineListingFailure(t *testing.T) {
	bridge := newFakeBridge()
	bridge.listErr = errors.New("device not found")
	engine := NewEngine(bridge, nil)

	events, err := engine.StartTransfer(context.Background(), newTestConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, events)
	last := got[len(got)-1]

	var listErr *models.ListingError
	if last.Status != models.StatusFailed || !errors.As(last.Err, &listErr) {
		t.Errorf("last event = %+v", last)
	}
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	engine := NewEngine(newFakeBridge(), nil)
	cfg := newTestConfig(t.TempDir())
	cfg.BatchSize = 0

	if _, err := engine.StartDeletion(context.Background(), cfg, nil); err == nil {
		t.Error("expected validation error")
	}
	if engine.Busy() {
		t.Error("a rejected start must not leave the engine busy")
	}
}

func TestEventQueueKeepsOrder(t *testing.T) {
	q := newEventQueue()
	for i := 0; i < 1000; i++ {
		q.Emit(models.NewProgressEvent(float64(i)/10, ""))
	}
	q.Close()
	q.Emit(models.NewLogEvent(models.LevelInfo, "after close"))

	got := drain(t, q.out)
	if len(got) != 1000 {
		t.Fatalf("got %d events, want 1000", len(got))
	}
	for i, ev := range got {
		if ev.Percent != float64(i)/10 {
			t.Fatalf("event %d out of order: %v", i, ev.Percent)
		}
	}
}
