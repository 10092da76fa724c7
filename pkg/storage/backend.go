package storage

import (
	"context"
	"time"
)

// FileInfo represents metadata about a local file
type FileInfo struct {
	Path         string
	RelativePath string
	Name         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
}

// Backend defines the local operations the engines need on the backup tree.
// Paths are relative to the backend root.
type Backend interface {
	// Root returns the absolute root path
	Root() string

	// List returns every regular file and directory under path, recursively.
	// Entries that cannot be read are skipped.
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// Move renames src to dst, copying across devices if needed. dst must not exist.
	Move(ctx context.Context, src, dst string) error

	// Delete removes a file
	Delete(ctx context.Context, path string) error

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}
