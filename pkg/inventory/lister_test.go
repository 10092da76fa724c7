package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sdejongh/camharvest/pkg/device"
	"github.com/sdejongh/camharvest/pkg/models"
)

type stubBridge struct {
	entries []device.RemoteEntry
	err     error
	mode    models.ListMode
}

func (b *stubBridge) ListFiles(ctx context.Context, dir string, mode models.ListMode) ([]device.RemoteEntry, error) {
	b.mode = mode
	return b.entries, b.err
}
func (b *stubBridge) Pull(ctx context.Context, remotePath, localPath string) error { return nil }
func (b *stubBridge) Delete(ctx context.Context, remotePaths []string) error       { return nil }
func (b *stubBridge) TriggerMediaRescan(ctx context.Context)                       {}
func (b *stubBridge) State(ctx context.Context) device.ConnState                   { return device.StateConnected }

func TestListerFiltersHiddenEntries(t *testing.T) {
	ts := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	bridge := &stubBridge{entries: []device.RemoteEntry{
		{Name: "b.jpg", ModTime: ts, HasModTime: true},
		{Name: ".thumbnails", ModTime: ts, HasModTime: true},
		{Name: ".trashed-1700000000-a.jpg", ModTime: ts, HasModTime: true},
		{Name: "a.jpg", ModTime: ts, HasModTime: true},
		{Name: ""},
	}}

	files, err := NewLister(bridge).List(context.Background(), "/sdcard", models.ListWithTimestamp)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if bridge.mode != models.ListWithTimestamp {
		t.Errorf("mode = %s, want with-timestamp", bridge.mode)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	// listing order is preserved
	if files[0].Name != "b.jpg" || files[1].Name != "a.jpg" {
		t.Errorf("order = %s, %s", files[0].Name, files[1].Name)
	}
}

func TestListerStampsMissingTimestamp(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	bridge := &stubBridge{entries: []device.RemoteEntry{{Name: "x.jpg"}}}
	lister := NewLister(bridge)
	lister.now = func() time.Time { return fixed }

	files, err := lister.List(context.Background(), "/sdcard", models.ListWithTimestamp)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !files[0].ModTime.Equal(fixed) {
		t.Errorf("ModTime = %v, want %v", files[0].ModTime, fixed)
	}
}

func TestListerSizeMode(t *testing.T) {
	bridge := &stubBridge{entries: []device.RemoteEntry{{Name: "photo.jpg", Size: 1000, HasSize: true}}}

	files, err := NewLister(bridge).List(context.Background(), "/sdcard", models.ListWithSize)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !files[0].HasSize || files[0].Size != 1000 {
		t.Errorf("file = %+v", files[0])
	}
	if !files[0].ModTime.IsZero() {
		t.Error("size listing should not invent a timestamp")
	}
}

func TestListerWrapsListingError(t *testing.T) {
	cause := &device.CommandError{Args: []string{"adb"}, ExitCode: 1, Stderr: "  stat: not found\n"}
	bridge := &stubBridge{err: cause}

	_, err := NewLister(bridge).List(context.Background(), "/sdcard", models.ListWithSize)

	var le *models.ListingError
	if !errors.As(err, &le) {
		t.Fatalf("error = %v, want *models.ListingError", err)
	}
	if le.Diagnostic != "stat: not found" {
		t.Errorf("Diagnostic = %q, want stderr text", le.Diagnostic)
	}
	if le.Dir != "/sdcard" || le.Mode != models.ListWithSize {
		t.Errorf("ListingError = %+v", le)
	}
	if !errors.Is(err, cause) {
		t.Error("ListingError should unwrap to the bridge error")
	}

	plain := &stubBridge{err: errors.New("device gone")}
	_, err = NewLister(plain).List(context.Background(), "/sdcard", models.ListWithSize)
	if !errors.As(err, &le) || le.Diagnostic != "device gone" {
		t.Errorf("plain error diagnostic = %v", err)
	}
}
