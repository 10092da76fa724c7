// Package inventory turns raw device listings into remote file records.
package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sdejongh/camharvest/pkg/device"
	"github.com/sdejongh/camharvest/pkg/models"
)

// Lister issues one listing query per call
type Lister struct {
	bridge device.Bridge
	now    func() time.Time
}

// NewLister creates a lister on top of a device bridge
func NewLister(bridge device.Bridge) *Lister {
	return &Lister{bridge: bridge, now: time.Now}
}

// List returns the visible files of remoteDir in the order the device reported them.
// Hidden entries (leading dot) are dropped. A file whose timestamp could not be read
// is stamped with the current time.
func (l *Lister) List(ctx context.Context, remoteDir string, mode models.ListMode) ([]models.RemoteFile, error) {
	entries, err := l.bridge.ListFiles(ctx, remoteDir, mode)
	if err != nil {
		return nil, &models.ListingError{
			Dir:        remoteDir,
			Mode:       mode,
			Diagnostic: diagnostic(err),
			Err:        err,
		}
	}

	files := make([]models.RemoteFile, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || strings.HasPrefix(e.Name, ".") {
			continue
		}
		rf := models.RemoteFile{
			Name:    e.Name,
			Size:    e.Size,
			HasSize: e.HasSize,
			ModTime: e.ModTime,
		}
		if mode == models.ListWithTimestamp && !e.HasModTime {
			rf.ModTime = l.now()
		}
		files = append(files, rf)
	}
	return files, nil
}

func diagnostic(err error) string {
	var cmdErr *device.CommandError
	if errors.As(err, &cmdErr) {
		if msg := strings.TrimSpace(cmdErr.Stderr); msg != "" {
			return msg
		}
	}
	return err.Error()
}
