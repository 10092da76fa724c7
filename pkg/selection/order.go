package selection

import (
	"sort"

	"github.com/sdejongh/camharvest/pkg/models"
)

// Order returns a sorted copy of records. Sorting is stable, so ties keep inventory
// order. A positive limit keeps only the first limit records after sorting.
func Order(records []models.RemoteFile, order models.SortOrder, limit int) []models.RemoteFile {
	sorted := make([]models.RemoteFile, len(records))
	copy(sorted, records)

	var less func(a, b models.RemoteFile) bool
	switch order {
	case models.SortOldestFirst:
		less = func(a, b models.RemoteFile) bool { return a.ModTime.Before(b.ModTime) }
	case models.SortNewestFirst:
		less = func(a, b models.RemoteFile) bool { return a.ModTime.After(b.ModTime) }
	case models.SortNameAsc:
		less = func(a, b models.RemoteFile) bool { return a.Name < b.Name }
	case models.SortNameDesc:
		less = func(a, b models.RemoteFile) bool { return a.Name > b.Name }
	}

	if less != nil {
		sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	}

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}
