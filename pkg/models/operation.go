package models

import (
	"fmt"
	"strings"
)

// SortOrder defines how candidates are ordered before transfer
type SortOrder string

const (
	// SortOldestFirst sorts ascending by modification time
	SortOldestFirst SortOrder = "oldest-first"
	// SortNewestFirst sorts descending by modification time
	SortNewestFirst SortOrder = "newest-first"
	// SortNameAsc sorts by file name A-Z
	SortNameAsc SortOrder = "name-asc"
	// SortNameDesc sorts by file name Z-A
	SortNameDesc SortOrder = "name-desc"
)

// SortOrders lists every supported ordering strategy
var SortOrders = []SortOrder{SortOldestFirst, SortNewestFirst, SortNameAsc, SortNameDesc}

// ParseSortOrder accepts the canonical names plus the labels used by older settings files
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oldest-first", "oldest first", "oldest":
		return SortOldestFirst, nil
	case "newest-first", "newest first", "newest":
		return SortNewestFirst, nil
	case "name-asc", "name (a-z)", "name":
		return SortNameAsc, nil
	case "name-desc", "name (z-a)":
		return SortNameDesc, nil
	}
	return "", fmt.Errorf("unknown sort order %q (valid: oldest-first, newest-first, name-asc, name-desc)", s)
}

// DateRange keeps files modified between Start 00:00:00 and End 23:59:59.
// Dates are YYYY-MM-DD in local time.
type DateRange struct {
	Enabled bool   `yaml:"enabled"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
}

// LetterRange keeps files whose first character falls between Start and End (inclusive, case-insensitive)
type LetterRange struct {
	Enabled bool   `yaml:"enabled"`
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
}

// SyncConfig is the immutable input of one pipeline run
type SyncConfig struct {
	ID              string
	RemoteDir       string
	LocalDir        string
	SortOrder       SortOrder
	Limit           int  // 0 = no limit
	SmartPlacement  bool // bucket files into YYYY-MM folders
	DeleteAfterCopy bool
	DateFilter      DateRange
	LetterFilter    LetterRange
	ExcludePatterns []string
	BatchSize       int // names per remote delete call
	ProgressStride  int // verification progress every N comparisons
}

// Validate checks if the run configuration is usable
func (c *SyncConfig) Validate() error {
	if c.RemoteDir == "" {
		return &ValidationError{Field: "RemoteDir", Message: "remote directory is required"}
	}
	if c.LocalDir == "" {
		return &ValidationError{Field: "LocalDir", Message: "local destination is required"}
	}
	switch c.SortOrder {
	case SortOldestFirst, SortNewestFirst, SortNameAsc, SortNameDesc:
	default:
		return &ValidationError{Field: "SortOrder", Message: fmt.Sprintf("unsupported sort order %q", c.SortOrder)}
	}
	if c.Limit < 0 {
		return &ValidationError{Field: "Limit", Message: "limit cannot be negative"}
	}
	if c.BatchSize < 1 {
		return &ValidationError{Field: "BatchSize", Message: "batch size must be at least 1"}
	}
	if c.ProgressStride < 1 {
		return &ValidationError{Field: "ProgressStride", Message: "progress stride must be at least 1"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
