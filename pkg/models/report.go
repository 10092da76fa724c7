package models

import (
	"time"
)

// RunStatus represents how a pipeline run ended
type RunStatus string

const (
	// StatusCompleted indicates the run went through every candidate
	StatusCompleted RunStatus = "completed"
	// StatusCancelled indicates the caller stopped the run between files
	StatusCancelled RunStatus = "cancelled"
	// StatusFailed indicates a run-ending error, such as a failed listing
	StatusFailed RunStatus = "failed"
)

// ExitCode returns the process exit code for the status
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusCompleted:
		return 0
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// TransferOutcome holds the counters of an extraction run
type TransferOutcome struct {
	RunID  string
	Status RunStatus

	// Inventory and selection
	Listed     int
	Rejected   int
	Candidates int

	// Per-file counters
	Processed  int // files that reached the delete step
	Downloaded int
	Present    int // pull skipped, local copy already there
	Failed     int
	Renamed    int
	Deleted    int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Files []FileResult
}

// Finish stamps the end of the run
func (o *TransferOutcome) Finish(status RunStatus) {
	o.Status = status
	o.EndTime = time.Now()
	o.Duration = o.EndTime.Sub(o.StartTime)
}

// VerifyResult is the outcome of matching the local backup tree against the device
type VerifyResult struct {
	RunID  string
	Status RunStatus

	LocalFiles  int // regular files indexed locally
	LocalNames  int // distinct names in the index
	RemoteTotal int
	Matched     int

	// SafeDeleteSet lists remote names, in listing order, whose size matches a local copy
	SafeDeleteSet []string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Finish stamps the end of the run
func (r *VerifyResult) Finish(status RunStatus) {
	r.Status = status
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// DeletionOutcome holds the counters of a batched deletion run
type DeletionOutcome struct {
	RunID  string
	Status RunStatus

	Requested     int
	Deleted       int
	Batches       int
	FailedBatches int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Finish stamps the end of the run
func (d *DeletionOutcome) Finish(status RunStatus) {
	d.Status = status
	d.EndTime = time.Now()
	d.Duration = d.EndTime.Sub(d.StartTime)
}
