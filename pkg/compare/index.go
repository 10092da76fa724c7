package compare

import (
	"context"
	"sort"

	"github.com/sdejongh/camharvest/pkg/storage"
)

// Index maps a file name to every distinct size seen locally under that name.
// The same name can appear in several date folders with different content.
type Index struct {
	sizes map[string]map[int64]struct{}
	files int
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{sizes: make(map[string]map[int64]struct{})}
}

// Add records one local file
func (idx *Index) Add(name string, size int64) {
	set, ok := idx.sizes[name]
	if !ok {
		set = make(map[int64]struct{})
		idx.sizes[name] = set
	}
	set[size] = struct{}{}
	idx.files++
}

// Has reports whether a file with exactly this name and size was seen
func (idx *Index) Has(name string, size int64) bool {
	set, ok := idx.sizes[name]
	if !ok {
		return false
	}
	_, ok = set[size]
	return ok
}

// Sizes returns the sizes recorded for name in ascending order
func (idx *Index) Sizes(name string) []int64 {
	set := idx.sizes[name]
	if len(set) == 0 {
		return nil
	}
	out := make([]int64, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Names returns the number of distinct names
func (idx *Index) Names() int {
	return len(idx.sizes)
}

// Files returns the number of files added
func (idx *Index) Files() int {
	return idx.files
}

// BuildIndex walks the whole backend tree and indexes every regular file.
// Unreadable entries are left out.
func BuildIndex(ctx context.Context, backend storage.Backend) (*Index, error) {
	files, err := backend.List(ctx, "")
	if err != nil {
		return nil, err
	}

	idx := NewIndex()
	for _, f := range files {
		if f.IsDir {
			continue
		}
		idx.Add(f.Name, f.Size)
	}
	return idx, nil
}
