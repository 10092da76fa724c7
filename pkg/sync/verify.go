package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/sdejongh/camharvest/pkg/compare"
	"github.com/sdejongh/camharvest/pkg/device"
	"github.com/sdejongh/camharvest/pkg/inventory"
	"github.com/sdejongh/camharvest/pkg/logging"
	"github.com/sdejongh/camharvest/pkg/models"
	"github.com/sdejongh/camharvest/pkg/storage"
)

// Verifier matches the remote directory against the whole local backup tree
// and produces the set of remote names that are safe to delete.
type Verifier struct {
	lister     *inventory.Lister
	comparator compare.Comparator
	cfg        models.SyncConfig
	out        reporter
}

// NewVerifier creates a verification run using name+size matching. cfg is copied.
func NewVerifier(bridge device.Bridge, cfg *models.SyncConfig, logger logging.Logger, emit Emitter) *Verifier {
	return &Verifier{
		lister:     inventory.NewLister(bridge),
		comparator: compare.NewNameSizeComparator(),
		cfg:        *cfg,
		out:        newReporter(logger, emit),
	}
}

// Run indexes the local tree, lists the remote directory with sizes and
// compares each remote file. It never deletes anything.
func (v *Verifier) Run(ctx context.Context) (*models.VerifyResult, error) {
	cfg := &v.cfg
	result := &models.VerifyResult{RunID: cfg.ID, StartTime: time.Now()}
	fields := logging.Fields{"remote": cfg.RemoteDir, "dest": cfg.LocalDir, "method": v.comparator.Name()}

	if err := cfg.Validate(); err != nil {
		v.out.fail(ctx, err, fields, "Invalid verification settings")
		result.Finish(models.StatusFailed)
		return result, err
	}

	v.out.info(ctx, fields, "--- Starting verification ---")
	v.out.progress(0, "Indexing local backup...")

	local, err := storage.NewLocal(cfg.LocalDir)
	if err != nil {
		v.out.fail(ctx, err, fields, "Local backup unavailable")
		result.Finish(models.StatusFailed)
		return result, err
	}
	defer local.Close()

	index, err := compare.BuildIndex(ctx, local)
	if err != nil {
		v.out.fail(ctx, err, fields, "Indexing local backup failed")
		result.Finish(models.StatusFailed)
		return result, err
	}
	result.LocalFiles = index.Files()
	result.LocalNames = index.Names()
	v.out.info(ctx, nil, "Indexed %d local files (%d names).", result.LocalFiles, result.LocalNames)

	v.out.progress(0, "Querying remote sizes...")
	records, err := v.lister.List(ctx, cfg.RemoteDir, models.ListWithSize)
	if err != nil {
		// usually a device whose stat does not support size output
		v.out.fail(ctx, err, fields, "Remote size listing failed")
		result.Finish(models.StatusFailed)
		return result, err
	}
	result.RemoteTotal = len(records)
	total := len(records)

	for i, rf := range records {
		if ctx.Err() != nil {
			v.out.warn(ctx, nil, "Verification cancelled after %d of %d files", i, total)
			result.Finish(models.StatusCancelled)
			return result, nil
		}
		if i%cfg.ProgressStride == 0 {
			v.out.progress(float64(i)/float64(total)*100, fmt.Sprintf("Verifying %d/%d", i, total))
		}

		cmp := v.comparator.Compare(index, rf)
		if cmp.Safe() {
			result.SafeDeleteSet = append(result.SafeDeleteSet, rf.Name)
			v.out.info(ctx, nil, "[MATCH] %s", rf.Name)
		} else {
			v.out.logger.Debug(ctx, "Not safe to delete", logging.Fields{"file": rf.Name, "result": string(cmp.Result), "reason": cmp.Reason})
		}
	}
	result.Matched = len(result.SafeDeleteSet)

	v.out.progress(100, "Done")
	result.Finish(models.StatusCompleted)
	v.out.info(ctx, logging.Fields{"matched": result.Matched, "remote_total": total},
		"Verification complete: %d of %d remote files are safe to delete.", result.Matched, total)

	return result, nil
}
