package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sdejongh/camharvest/pkg/models"
)

func stream(events ...models.Event) <-chan models.Event {
	ch := make(chan models.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func transferDone() models.Event {
	return models.Event{
		Kind:   models.EventDone,
		Time:   time.Now(),
		Status: models.StatusCompleted,
		Transfer: &models.TransferOutcome{
			RunID:      "run-1",
			Status:     models.StatusCompleted,
			Listed:     3,
			Candidates: 3,
			Downloaded: 2,
			Failed:     1,
			Duration:   1500 * time.Millisecond,
			Files: []models.FileResult{
				{Name: "a.jpg", LocalPath: "2024-01/a.jpg", Result: models.ResultDownloaded, Placement: models.PlacementBucketed},
				{Name: "b.jpg", Result: models.ResultFailed, Error: "pull b.jpg: boom"},
			},
		},
	}
}

func TestRenderHuman(t *testing.T) {
	var buf bytes.Buffer
	f := NewHumanFormatter(false)

	done, err := Render(f, &buf, "Extracting", stream(
		models.NewLogEvent(models.LevelInfo, "[MATCH] a.jpg"),
		models.NewLogEvent(models.LevelDebug, "hidden detail"),
		models.NewProgressEvent(50, "[2/3] b.jpg | ETA: 1s"),
		models.NewLogEvent(models.LevelError, "[FAIL] b.jpg"),
		transferDone(),
	))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if done.Transfer == nil || done.Status != models.StatusCompleted {
		t.Errorf("terminal event = %+v", done)
	}

	out := buf.String()
	for _, want := range []string{"Extracting", "[MATCH] a.jpg", " 50% [2/3] b.jpg", "ERROR [FAIL] b.jpg", "Downloaded:    2", "b.jpg: pull b.jpg: boom", "Status: completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden detail") {
		t.Error("debug events should be hidden unless verbose")
	}
}

func TestRenderWithoutTerminalEvent(t *testing.T) {
	var buf bytes.Buffer
	done, err := Render(NewHumanFormatter(false), &buf, "", stream(models.NewProgressEvent(10, "x")))
	if err == nil {
		t.Fatal("expected an error for a truncated stream")
	}
	if done.Status != models.StatusFailed {
		t.Errorf("Status = %s", done.Status)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	verify := models.Event{
		Kind:   models.EventDone,
		Time:   time.Now(),
		Status: models.StatusFailed,
		Err:    errors.New("listing failed"),
		Verify: &models.VerifyResult{RunID: "run-2", Status: models.StatusFailed},
	}

	if _, err := Render(NewJSONFormatter(), &buf, "Verifying", stream(
		models.NewProgressEvent(25, "Verifying 1/4"),
		verify,
	)); err != nil {
		t.Fatal(err)
	}

	var types []string
	var last JSONEvent
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var ev JSONEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("line %q is not JSON: %v", scanner.Text(), err)
		}
		types = append(types, ev.Type)
		last = ev
	}
	if strings.Join(types, ",") != "start,progress,complete" {
		t.Errorf("types = %v", types)
	}

	data := last.Data.(map[string]any)
	if data["status"] != "failed" || data["exit_code"] != float64(2) || data["error"] != "listing failed" {
		t.Errorf("complete data = %v", data)
	}
	if v, ok := data["verify"].(map[string]any); !ok || v["safe_delete_set"] == nil {
		t.Errorf("verify payload = %v", data["verify"])
	}
}

// lockedBuffer is written by both the formatter and the bar refresh goroutine
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressFormatter(t *testing.T) {
	buf := &lockedBuffer{}
	f := NewProgressFormatter()

	if _, err := Render(f, buf, "", stream(
		models.NewProgressEvent(40, "[1/2] a.jpg | ETA: ..."),
		models.NewLogEvent(models.LevelInfo, "quiet"),
		models.NewLogEvent(models.LevelWarn, "Filter setting ignored"),
		transferDone(),
	)); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, "Filter setting ignored") || !strings.Contains(out, "Status: completed") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "quiet") {
		t.Error("info logs should not be printed over the bar")
	}
}

func TestNew(t *testing.T) {
	for _, name := range []string{"human", "json", "progress"} {
		f, err := New(name, false)
		if err != nil || f.Name() != name {
			t.Errorf("New(%q) = %v, %v", name, f, err)
		}
	}
	if _, err := New("xml", false); err == nil {
		t.Error("New(xml) should fail")
	}
}

func TestWriteSafeDeleteReport(t *testing.T) {
	result := &models.VerifyResult{
		RunID:         "run-3",
		RemoteTotal:   3,
		LocalFiles:    10,
		Matched:       2,
		SafeDeleteSet: []string{"a.jpg", "c.jpg"},
	}
	dir := t.TempDir()

	t.Run("Human", func(t *testing.T) {
		path := filepath.Join(dir, "report.txt")
		if err := WriteSafeDeleteReport(result, "/sdcard/DCIM/Camera", "/backup", path, "human"); err != nil {
			t.Fatal(err)
		}
		data, _ := os.ReadFile(path)
		for _, want := range []string{"Matched 2 of 3", "  a.jpg\n", "  c.jpg\n", "/backup"} {
			if !strings.Contains(string(data), want) {
				t.Errorf("report missing %q:\n%s", want, data)
			}
		}
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "report.json")
		if err := WriteSafeDeleteReport(result, "/sdcard/DCIM/Camera", "/backup", path, "json"); err != nil {
			t.Fatal(err)
		}
		data, _ := os.ReadFile(path)
		var got safeDeleteJSON
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatal(err)
		}
		if strings.Join(got.SafeDeleteSet, ",") != "a.jpg,c.jpg" || got.RunID != "run-3" {
			t.Errorf("report = %+v", got)
		}
	})
}
