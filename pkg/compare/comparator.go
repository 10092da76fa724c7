package compare

import (
	"github.com/sdejongh/camharvest/pkg/models"
)

// Result represents the outcome of comparing a remote file with the local index
type Result string

const (
	// Same indicates a local copy with the same name and size exists
	Same Result = "same"
	// Different indicates the name exists locally but no size matches
	Different Result = "different"
	// RemoteOnly indicates the name does not exist locally
	RemoteOnly Result = "remote_only"
	// Unknown indicates the remote listing carried no size
	Unknown Result = "unknown"
)

// Comparison holds the result of comparing one remote file
type Comparison struct {
	Name       string
	RemoteSize int64
	LocalSizes []int64
	Result     Result
	Reason     string
}

// Safe reports whether the remote file may be deleted
func (c *Comparison) Safe() bool {
	return c.Result == Same
}

// Comparator decides whether a remote file is already backed up locally
type Comparator interface {
	// Compare checks one remote file against the index
	Compare(index *Index, remote models.RemoteFile) *Comparison

	// Name returns the name of the comparison method
	Name() string
}
