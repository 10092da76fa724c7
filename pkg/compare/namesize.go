package compare

import (
	"github.com/sdejongh/camharvest/pkg/models"
)

// NameSizeComparator matches files by name and byte size only.
// Two different files sharing a name and a size anywhere in the tree are treated as equal.
type NameSizeComparator struct{}

// NewNameSizeComparator creates a new name/size comparator
func NewNameSizeComparator() *NameSizeComparator {
	return &NameSizeComparator{}
}

// Compare looks the remote file up in the index
func (c *NameSizeComparator) Compare(index *Index, remote models.RemoteFile) *Comparison {
	cmp := &Comparison{
		Name:       remote.Name,
		RemoteSize: remote.Size,
		LocalSizes: index.Sizes(remote.Name),
	}

	switch {
	case !remote.HasSize:
		cmp.Result = Unknown
		cmp.Reason = "remote size not reported"
	case len(cmp.LocalSizes) == 0:
		cmp.Result = RemoteOnly
		cmp.Reason = "file exists only on the device"
	case index.Has(remote.Name, remote.Size):
		cmp.Result = Same
		cmp.Reason = "name and size match"
	default:
		cmp.Result = Different
		cmp.Reason = "file sizes differ"
	}

	return cmp
}

// Name returns the comparator name
func (c *NameSizeComparator) Name() string {
	return "namesize"
}
