package sync

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/sdejongh/camharvest/pkg/device"
	"github.com/sdejongh/camharvest/pkg/logging"
	"github.com/sdejongh/camharvest/pkg/models"
)

// Deleter removes a list of remote names in fixed-size batches
type Deleter struct {
	bridge device.Bridge
	cfg    models.SyncConfig
	out    reporter
}

// NewDeleter creates a deletion run. cfg is copied.
func NewDeleter(bridge device.Bridge, cfg *models.SyncConfig, logger logging.Logger, emit Emitter) *Deleter {
	return &Deleter{
		bridge: bridge,
		cfg:    *cfg,
		out:    newReporter(logger, emit),
	}
}

// Run deletes names from the remote directory, BatchSize names per call.
// A failed batch is logged and counted, the remaining batches still run.
// One media rescan follows the last batch.
func (d *Deleter) Run(ctx context.Context, names []string) (*models.DeletionOutcome, error) {
	cfg := &d.cfg
	outcome := &models.DeletionOutcome{RunID: cfg.ID, Requested: len(names), StartTime: time.Now()}
	total := len(names)

	if err := cfg.Validate(); err != nil {
		d.out.fail(ctx, err, nil, "Invalid deletion settings")
		outcome.Finish(models.StatusFailed)
		return outcome, err
	}

	d.out.info(ctx, logging.Fields{"remote": cfg.RemoteDir, "count": total}, "--- Deleting %d files ---", total)

	status := models.StatusCompleted
	for start := 0; start < total; start += cfg.BatchSize {
		if ctx.Err() != nil {
			status = models.StatusCancelled
			d.out.warn(ctx, nil, "Deletion cancelled after %d of %d files", start, total)
			break
		}

		end := min(start+cfg.BatchSize, total)
		batch := names[start:end]
		paths := make([]string, len(batch))
		for i, name := range batch {
			paths[i] = path.Join(cfg.RemoteDir, name)
		}

		outcome.Batches++
		d.out.info(ctx, nil, "[DEL_BATCH] %s", strings.Join(batch, ", "))
		if err := d.bridge.Delete(ctx, paths); err != nil {
			outcome.FailedBatches++
			d.out.fail(ctx, err, logging.Fields{"batch": outcome.Batches}, "Batch delete failed")
		} else {
			outcome.Deleted += len(batch)
		}

		d.out.progress(float64(end)/float64(total)*100, fmt.Sprintf("Deleted %d/%d", outcome.Deleted, total))
		d.out.info(ctx, nil, "Deleted %d/%d...", outcome.Deleted, total)
	}

	if outcome.Batches > 0 {
		d.bridge.TriggerMediaRescan(context.WithoutCancel(ctx))
		d.out.info(ctx, nil, "Media rescan requested")
	}

	if status == models.StatusCompleted {
		d.out.progress(100, "Done")
	}
	outcome.Finish(status)
	d.out.info(ctx, logging.Fields{"deleted": outcome.Deleted, "failed_batches": outcome.FailedBatches},
		"--- Deletion %s: %d of %d removed ---", status, outcome.Deleted, total)

	return outcome, nil
}
