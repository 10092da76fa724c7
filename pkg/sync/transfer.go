package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sdejongh/camharvest/pkg/device"
	"github.com/sdejongh/camharvest/pkg/inventory"
	"github.com/sdejongh/camharvest/pkg/logging"
	"github.com/sdejongh/camharvest/pkg/models"
	"github.com/sdejongh/camharvest/pkg/selection"
	"github.com/sdejongh/camharvest/pkg/storage"
)

// Transfer pulls the selected remote files into the destination tree,
// one file at a time, in the configured order.
type Transfer struct {
	bridge    device.Bridge
	lister    *inventory.Lister
	cfg       models.SyncConfig
	out       reporter
	cancelled atomic.Bool
	now       func() time.Time
}

// NewTransfer creates a transfer run. cfg is copied.
func NewTransfer(bridge device.Bridge, cfg *models.SyncConfig, logger logging.Logger, emit Emitter) *Transfer {
	return &Transfer{
		bridge: bridge,
		lister: inventory.NewLister(bridge),
		cfg:    *cfg,
		out:    newReporter(logger, emit),
		now:    time.Now,
	}
}

// Cancel asks the run to stop before the next file. The file in flight completes.
func (t *Transfer) Cancel() {
	t.cancelled.Store(true)
}

func (t *Transfer) stopRequested(ctx context.Context) bool {
	return t.cancelled.Load() || ctx.Err() != nil
}

// Run executes the extraction. The returned error is non-nil only for
// run-ending failures (destination unusable, remote listing failed);
// per-file problems are logged and counted in the outcome.
func (t *Transfer) Run(ctx context.Context) (*models.TransferOutcome, error) {
	cfg := &t.cfg
	outcome := &models.TransferOutcome{RunID: cfg.ID, StartTime: t.now()}
	fields := logging.Fields{"remote": cfg.RemoteDir, "dest": cfg.LocalDir}

	if err := cfg.Validate(); err != nil {
		t.out.fail(ctx, err, fields, "Invalid extraction settings")
		outcome.Finish(models.StatusFailed)
		return outcome, err
	}

	t.out.info(ctx, fields, "--- Starting extraction ---")

	local, err := storage.NewLocal(cfg.LocalDir)
	if err != nil {
		t.out.fail(ctx, err, fields, "Destination unavailable")
		outcome.Finish(models.StatusFailed)
		return outcome, err
	}
	defer local.Close()

	t.out.progress(0, "Scanning files & attributes...")
	records, err := t.lister.List(ctx, cfg.RemoteDir, models.ListWithTimestamp)
	if err != nil {
		t.out.fail(ctx, err, fields, "Remote scan failed")
		outcome.Finish(models.StatusFailed)
		return outcome, err
	}
	outcome.Listed = len(records)

	rules, warnings := selection.NewRules(cfg)
	for _, w := range warnings {
		t.out.warn(ctx, nil, "Filter setting ignored: %v", w)
	}
	candidates, rejected := rules.Apply(records)
	outcome.Rejected = rejected
	if rejected > 0 {
		t.out.info(ctx, nil, "Filter active: ignored %d files.", rejected)
	}

	candidates = selection.Order(candidates, cfg.SortOrder, cfg.Limit)
	if cfg.Limit > 0 {
		t.out.info(ctx, nil, "Limit active: processing first %d matches.", cfg.Limit)
	}
	outcome.Candidates = len(candidates)

	if len(candidates) == 0 {
		t.out.info(ctx, nil, "No files matched criteria.")
		t.out.progress(100, "Done")
		outcome.Finish(models.StatusCompleted)
		return outcome, nil
	}

	t.out.info(ctx, nil, "Queue: %d files ready.", len(candidates))

	place := newPlacer(local, t.now)
	status := models.StatusCompleted
	total := len(candidates)
	loopStart := t.now()

	for i, rf := range candidates {
		if t.stopRequested(ctx) {
			status = models.StatusCancelled
			t.out.warn(ctx, nil, "Cancelled after %d of %d files", i, total)
			break
		}

		t.out.progress(float64(i)/float64(total)*100, t.progressLabel(i, total, rf.Name, loopStart))

		task := NewFileTask(rf, cfg.RemoteDir)
		t.processFile(ctx, local, place, task, outcome)
		outcome.Files = append(outcome.Files, task.FileResult())
	}

	if outcome.Deleted > 0 {
		// the run may have been cancelled; the rescan still has to happen
		t.bridge.TriggerMediaRescan(context.WithoutCancel(ctx))
		t.out.info(ctx, nil, "Media rescan requested")
	}

	if status == models.StatusCompleted {
		t.out.progress(100, "Done")
	}
	outcome.Finish(status)

	t.out.info(ctx, logging.Fields{
		"processed":  outcome.Processed,
		"downloaded": outcome.Downloaded,
		"present":    outcome.Present,
		"failed":     outcome.Failed,
		"renamed":    outcome.Renamed,
		"deleted":    outcome.Deleted,
		"duration":   outcome.Duration.String(),
	}, "--- Extraction %s: %d processed, %d downloaded, %d failed ---",
		status, outcome.Processed, outcome.Downloaded, outcome.Failed)

	return outcome, nil
}

func (t *Transfer) progressLabel(i, total int, name string, start time.Time) string {
	eta := "..."
	if i > 0 {
		perFile := t.now().Sub(start) / time.Duration(i)
		eta = formatETA(perFile * time.Duration(total-i))
	}
	return fmt.Sprintf("[%d/%d] %s | ETA: %s", i+1, total, name, eta)
}

// processFile runs pull, placement and delete-after-copy for one file
func (t *Transfer) processFile(ctx context.Context, local storage.Backend, place *placer, task *FileTask, outcome *models.TransferOutcome) {
	cfg := &t.cfg
	rf := task.Remote
	fields := logging.Fields{"file": rf.Name}
	task.MarkProcessing()

	fresh := false
	if existing, placement, ok := t.existingCopy(ctx, local, place, rf); ok {
		task.MarkPresent(existing, placement)
		outcome.Present++
		t.out.logger.Debug(ctx, "Local copy present, pull skipped", logging.Fields{"file": rf.Name, "local": existing})
	} else {
		dst := filepath.Join(local.Root(), rf.Name)
		if err := t.bridge.Pull(ctx, task.RemotePath, dst); err != nil {
			terr := &models.TransferError{Name: rf.Name, Err: err}
			task.MarkError(terr)
			outcome.Failed++
			t.out.fail(ctx, err, fields, "[FAIL] %s", rf.Name)
			return
		}
		task.MarkPulled(rf.Name)
		outcome.Downloaded++
		fresh = true
	}

	// a raw copy is sorted whether it was pulled now or left by an earlier run
	if cfg.SmartPlacement && task.Placement == models.PlacementRaw {
		newPath, placement, err := place.place(ctx, task.LocalPath, rf.ModTime, fresh)
		if err != nil {
			task.Error = err
			t.out.fail(ctx, err, fields, "Sorting failed, %s left in place", rf.Name)
		}
		task.MarkPlaced(newPath, placement)
		if placement == models.PlacementRenamed {
			outcome.Renamed++
			t.out.info(ctx, fields, "[SORT] Renamed: %s", filepath.Base(newPath))
		}
	}

	if cfg.DeleteAfterCopy {
		t.deleteOriginal(ctx, local, task, outcome)
	}

	outcome.Processed++
	task.MarkCompleted()
}

// deleteOriginal removes the remote file once the local copy is confirmed
// present and non-empty at its final location
func (t *Transfer) deleteOriginal(ctx context.Context, local storage.Backend, task *FileTask, outcome *models.TransferOutcome) {
	fields := logging.Fields{"file": task.Remote.Name, "local": task.LocalPath}

	info, err := local.Stat(ctx, task.LocalPath)
	switch {
	case err != nil:
		verr := &models.DeletionVerificationError{Name: task.Remote.Name, LocalPath: task.LocalPath, Reason: "is missing"}
		task.Error = verr
		t.out.fail(ctx, verr, fields, "Remote original kept")
		return
	case info.Size == 0:
		verr := &models.DeletionVerificationError{Name: task.Remote.Name, LocalPath: task.LocalPath, Reason: "is empty"}
		task.Error = verr
		t.out.fail(ctx, verr, fields, "Remote original kept")
		return
	}

	if err := t.bridge.Delete(ctx, []string{task.RemotePath}); err != nil {
		task.Error = err
		t.out.fail(ctx, err, fields, "Remote delete failed for %s", task.Remote.Name)
		return
	}
	task.MarkDeleted()
	outcome.Deleted++
	t.out.info(ctx, fields, "[DEL] %s", task.Remote.Name)
}

// existingCopy finds a usable local copy of rf so the pull can be skipped: the
// raw destination file, then with smart placement the bucketed file, then a
// renamed copy left in the bucket by an earlier collision.
func (t *Transfer) existingCopy(ctx context.Context, local storage.Backend, place *placer, rf models.RemoteFile) (string, models.Placement, bool) {
	if info, err := local.Stat(ctx, rf.Name); err == nil && !info.IsDir && info.Size > 0 {
		return rf.Name, models.PlacementRaw, true
	}
	if !t.cfg.SmartPlacement {
		return "", "", false
	}

	bucketed := filepath.Join(BucketFor(rf.ModTime), rf.Name)
	if info, err := local.Stat(ctx, bucketed); err == nil && !info.IsDir && info.Size > 0 {
		if !rf.HasSize || info.Size == rf.Size {
			return bucketed, models.PlacementBucketed, true
		}
	}

	if rf.HasSize {
		if renamed := place.renamedCopy(ctx, rf); renamed != "" {
			return renamed, models.PlacementRenamed, true
		}
	}
	return "", "", false
}
