package models

import (
	"time"
)

// ListMode selects which metadata a remote listing query returns
type ListMode string

const (
	// ListWithSize asks the device for byte sizes
	ListWithSize ListMode = "with-size"
	// ListWithTimestamp asks the device for modification times
	ListWithTimestamp ListMode = "with-timestamp"
)

// RemoteFile is one file reported by a remote directory listing
type RemoteFile struct {
	// Name is the base name of the file inside the remote directory
	Name string

	// ModTime is the modification time reported by the device
	ModTime time.Time

	// Size in bytes, only meaningful when HasSize is set
	Size int64

	// HasSize is true when the listing query reported a size
	HasSize bool
}

// TaskResult describes what happened to a single candidate file
type TaskResult string

const (
	// ResultDownloaded indicates the file was pulled from the device this run
	ResultDownloaded TaskResult = "downloaded"
	// ResultPresent indicates a local copy already existed and the pull was skipped
	ResultPresent TaskResult = "present"
	// ResultFailed indicates the pull failed and the file was skipped
	ResultFailed TaskResult = "failed"
)

// Placement describes where a transferred file ended up
type Placement string

const (
	// PlacementRaw means the file stays at the top of the destination
	PlacementRaw Placement = "raw"
	// PlacementBucketed means the file was moved into its YYYY-MM folder
	PlacementBucketed Placement = "bucketed"
	// PlacementDuplicate means an identical file was already in the bucket
	PlacementDuplicate Placement = "duplicate"
	// PlacementRenamed means a different file held the name and a suffix was added
	PlacementRenamed Placement = "renamed"
)

// FileResult records the outcome for one file of a transfer run
type FileResult struct {
	Name      string
	LocalPath string
	Result    TaskResult
	Placement Placement
	Deleted   bool
	Error     string
	Duration  time.Duration
}
