package device

import (
	"context"
	"time"

	"github.com/sdejongh/camharvest/pkg/models"
)

// ConnState is the connection state reported by the device bridge
type ConnState string

const (
	StateConnected    ConnState = "connected"
	StateUnauthorized ConnState = "unauthorized"
	StateOffline      ConnState = "offline"
	StateNoDevice     ConnState = "no-device"
	StateError        ConnState = "error"
)

// Describe returns the text shown to a user for the state
func (s ConnState) Describe() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateUnauthorized:
		return "Unauthorized (check phone)"
	case StateOffline:
		return "Offline (cable issue?)"
	case StateNoDevice:
		return "No device"
	default:
		return "Error"
	}
}

// RemoteEntry is one raw line of a remote listing
type RemoteEntry struct {
	Name       string
	Size       int64
	HasSize    bool
	ModTime    time.Time
	HasModTime bool
}

// Bridge is the capability the engines use to reach the device.
// Calls are issued one at a time; implementations need not be safe for concurrent use.
type Bridge interface {
	// ListFiles lists the files of remoteDir with the metadata selected by mode
	ListFiles(ctx context.Context, remoteDir string, mode models.ListMode) ([]RemoteEntry, error)

	// Pull copies a remote file to a local path
	Pull(ctx context.Context, remotePath, localPath string) error

	// Delete removes one or more remote files in a single call
	Delete(ctx context.Context, remotePaths []string) error

	// TriggerMediaRescan asks the device to refresh its media index; failures are not reported
	TriggerMediaRescan(ctx context.Context)

	// State reports the current connection state
	State(ctx context.Context) ConnState
}
