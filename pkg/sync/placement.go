package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sdejongh/camharvest/pkg/models"
	"github.com/sdejongh/camharvest/pkg/storage"
)

// BucketLayout is the folder name format for date buckets
const BucketLayout = "2006-01"

// BucketFor returns the YYYY-MM folder a file modified at t belongs to
func BucketFor(t time.Time) string {
	return t.Format(BucketLayout)
}

// placer moves freshly pulled files into their date bucket
type placer struct {
	local storage.Backend
	now   func() time.Time
}

func newPlacer(local storage.Backend, now func() time.Time) *placer {
	if now == nil {
		now = time.Now
	}
	return &placer{local: local, now: now}
}

// place moves rawPath into the bucket of modTime and returns the new relative path.
// When the bucket already holds a file of the same name and size the raw copy is
// dropped if it was pulled this run (fresh) and kept otherwise. A different file
// under the same name makes the incoming copy take a timestamped name.
// On error the file stays at rawPath.
func (p *placer) place(ctx context.Context, rawPath string, modTime time.Time, fresh bool) (string, models.Placement, error) {
	name := filepath.Base(rawPath)
	bucket := BucketFor(modTime)

	if err := p.local.MkdirAll(ctx, bucket); err != nil {
		return rawPath, models.PlacementRaw, &models.PlacementError{Name: name, Op: "mkdir", Err: err}
	}

	target := filepath.Join(bucket, name)
	exists, err := p.local.Exists(ctx, target)
	if err != nil {
		return rawPath, models.PlacementRaw, &models.PlacementError{Name: name, Op: "stat", Err: err}
	}

	if !exists {
		if err := p.local.Move(ctx, rawPath, target); err != nil {
			return rawPath, models.PlacementRaw, &models.PlacementError{Name: name, Op: "move", Err: err}
		}
		return target, models.PlacementBucketed, nil
	}

	same, err := p.sameSize(ctx, rawPath, target)
	if err != nil {
		return rawPath, models.PlacementRaw, &models.PlacementError{Name: name, Op: "stat", Err: err}
	}

	if same {
		if fresh {
			if err := p.local.Delete(ctx, rawPath); err != nil {
				return rawPath, models.PlacementRaw, &models.PlacementError{Name: name, Op: "remove duplicate", Err: err}
			}
		}
		return target, models.PlacementDuplicate, nil
	}

	renamed, err := p.freeName(ctx, bucket, name)
	if err != nil {
		return rawPath, models.PlacementRaw, &models.PlacementError{Name: name, Op: "rename", Err: err}
	}
	if err := p.local.Move(ctx, rawPath, renamed); err != nil {
		return rawPath, models.PlacementRaw, &models.PlacementError{Name: name, Op: "move", Err: err}
	}
	return renamed, models.PlacementRenamed, nil
}

func (p *placer) sameSize(ctx context.Context, a, b string) (bool, error) {
	ai, err := p.local.Stat(ctx, a)
	if err != nil {
		return false, err
	}
	bi, err := p.local.Stat(ctx, b)
	if err != nil {
		return false, err
	}
	return ai.Size == bi.Size, nil
}

// freeName returns bucket/<base>_<unix><ext>, adding _N when that is taken too
func (p *placer) freeName(ctx context.Context, bucket, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	stamp := p.now().Unix()

	candidate := filepath.Join(bucket, fmt.Sprintf("%s_%d%s", base, stamp, ext))
	for n := 1; ; n++ {
		exists, err := p.local.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = filepath.Join(bucket, fmt.Sprintf("%s_%d_%d%s", base, stamp, n, ext))
	}
}

// renamedCopy returns the bucket file named like freeName would name rf
// (<base>_<unix><ext> or <base>_<unix>_<n><ext>) whose size equals rf.Size,
// or "" when there is none
func (p *placer) renamedCopy(ctx context.Context, rf models.RemoteFile) string {
	bucket := BucketFor(rf.ModTime)
	files, err := p.local.List(ctx, bucket)
	if err != nil {
		return ""
	}

	ext := filepath.Ext(rf.Name)
	base := strings.TrimSuffix(rf.Name, ext)
	for _, f := range files {
		if f.IsDir || f.Size != rf.Size || filepath.Dir(f.RelativePath) != bucket {
			continue
		}
		if isRenamedName(f.Name, base, ext) {
			return f.RelativePath
		}
	}
	return ""
}

func isRenamedName(name, base, ext string) bool {
	if len(name) < len(base)+1+len(ext) || !strings.HasPrefix(name, base+"_") || !strings.HasSuffix(name, ext) {
		return false
	}
	suffix := name[len(base)+1 : len(name)-len(ext)]
	stamp, n, hasN := strings.Cut(suffix, "_")
	return isDigits(stamp) && (!hasN || isDigits(n))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
