package sync

import (
	"context"
	"errors"
	"os"
	"path"
	"sync"
	"time"

	"github.com/sdejongh/camharvest/pkg/device"
	"github.com/sdejongh/camharvest/pkg/models"
)

type fakeFile struct {
	name string
	data []byte
	mod  time.Time
}

// fakeBridge serves an in-memory remote directory and writes pulls to disk
type fakeBridge struct {
	mu sync.Mutex

	files     []fakeFile
	listErr   error
	pullErr   map[string]error
	deleteErr map[int]error // by 1-based delete call
	block     chan struct{} // ListFiles waits on it when set
	onPull    func(name string)

	pulls   []string
	deletes [][]string
	rescans int
}

func newFakeBridge(files ...fakeFile) *fakeBridge {
	return &fakeBridge{files: files}
}

func (b *fakeBridge) ListFiles(ctx context.Context, dir string, mode models.ListMode) ([]device.RemoteEntry, error) {
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	entries := make([]device.RemoteEntry, 0, len(b.files))
	for _, f := range b.files {
		e := device.RemoteEntry{Name: f.name, Size: int64(len(f.data)), HasSize: true}
		if mode == models.ListWithTimestamp {
			e.ModTime = f.mod
			e.HasModTime = true
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (b *fakeBridge) Pull(ctx context.Context, remotePath, localPath string) error {
	name := path.Base(remotePath)
	b.mu.Lock()
	b.pulls = append(b.pulls, name)
	err := b.pullErr[name]
	var data []byte
	found := false
	for _, f := range b.files {
		if f.name == name {
			data, found = f.data, true
		}
	}
	hook := b.onPull
	b.mu.Unlock()

	if err != nil {
		return err
	}
	if !found {
		return errors.New("remote object does not exist")
	}
	if err := os.WriteFile(localPath, data, 0644); err != nil {
		return err
	}
	if hook != nil {
		hook(name)
	}
	return nil
}

func (b *fakeBridge) Delete(ctx context.Context, remotePaths []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(remotePaths))
	for i, p := range remotePaths {
		names[i] = path.Base(p)
	}
	b.deletes = append(b.deletes, names)
	if err := b.deleteErr[len(b.deletes)]; err != nil {
		return err
	}
	kept := b.files[:0]
	for _, f := range b.files {
		drop := false
		for _, n := range names {
			if n == f.name {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, f)
		}
	}
	b.files = kept
	return nil
}

func (b *fakeBridge) TriggerMediaRescan(ctx context.Context) {
	b.mu.Lock()
	b.rescans++
	b.mu.Unlock()
}

func (b *fakeBridge) State(ctx context.Context) device.ConnState {
	return device.StateConnected
}

// recorder collects events synchronously
type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Emit(ev models.Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) progress() []models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Event
	for _, ev := range r.events {
		if ev.Kind == models.EventProgress {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		if ev.Kind == models.EventLog {
			out = append(out, ev.Message)
		}
	}
	return out
}
