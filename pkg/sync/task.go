package sync

import (
	"path"
	"time"

	"github.com/sdejongh/camharvest/pkg/models"
)

// TaskStatus represents the status of a file task in the transfer loop
type TaskStatus string

const (
	// TaskPending indicates the task is waiting to be processed
	TaskPending TaskStatus = "pending"
	// TaskProcessing indicates the task is being pulled or placed
	TaskProcessing TaskStatus = "processing"
	// TaskCompleted indicates the task went through every step
	TaskCompleted TaskStatus = "completed"
	// TaskError indicates the pull failed and the file was skipped
	TaskError TaskStatus = "error"
)

// FileTask carries the state of one candidate through pull, placement and delete
type FileTask struct {
	// Remote is the listing record the task was built from
	Remote models.RemoteFile

	// RemotePath is the absolute path on the device
	RemotePath string

	// LocalPath is the current location of the local copy, relative to the destination root
	LocalPath string

	// Status tracks the current state of this task
	Status TaskStatus

	// Result indicates whether the file was pulled this run
	Result models.TaskResult

	// Placement tells where the local copy ended up
	Placement models.Placement

	// Deleted is set once the remote original was removed
	Deleted bool

	// Error holds the last error met while processing, fatal or not
	Error error

	started  time.Time
	duration time.Duration
}

// NewFileTask creates a task for one remote file
func NewFileTask(remote models.RemoteFile, remoteDir string) *FileTask {
	return &FileTask{
		Remote:     remote,
		RemotePath: path.Join(remoteDir, remote.Name),
		LocalPath:  remote.Name,
		Status:     TaskPending,
		Placement:  models.PlacementRaw,
	}
}

// MarkProcessing starts the task clock
func (t *FileTask) MarkProcessing() {
	t.Status = TaskProcessing
	t.started = time.Now()
}

// MarkPulled records a fresh download to localPath
func (t *FileTask) MarkPulled(localPath string) {
	t.Result = models.ResultDownloaded
	t.LocalPath = localPath
}

// MarkPresent records that a usable local copy already existed at localPath
func (t *FileTask) MarkPresent(localPath string, placement models.Placement) {
	t.Result = models.ResultPresent
	t.LocalPath = localPath
	t.Placement = placement
}

// MarkPlaced records the outcome of the bucket placement
func (t *FileTask) MarkPlaced(localPath string, placement models.Placement) {
	t.LocalPath = localPath
	t.Placement = placement
}

// MarkDeleted records that the remote original was removed
func (t *FileTask) MarkDeleted() {
	t.Deleted = true
}

// MarkError marks the task as failed; the file is skipped
func (t *FileTask) MarkError(err error) {
	t.Status = TaskError
	t.Result = models.ResultFailed
	t.LocalPath = ""
	t.Error = err
	t.duration = time.Since(t.started)
}

// MarkCompleted closes the task
func (t *FileTask) MarkCompleted() {
	t.Status = TaskCompleted
	t.duration = time.Since(t.started)
}

// FileResult converts the task into its report record
func (t *FileTask) FileResult() models.FileResult {
	r := models.FileResult{
		Name:      t.Remote.Name,
		LocalPath: t.LocalPath,
		Result:    t.Result,
		Placement: t.Placement,
		Deleted:   t.Deleted,
		Duration:  t.duration,
	}
	if t.Error != nil {
		r.Error = t.Error.Error()
	}
	return r
}
