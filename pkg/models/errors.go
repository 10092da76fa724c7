package models

import (
	"errors"
	"fmt"
)

// ErrPipelineBusy is returned when a pipeline is started while another one is running
var ErrPipelineBusy = errors.New("another pipeline is already running")

// ListingError means the remote directory could not be enumerated. It ends the run.
type ListingError struct {
	Dir        string
	Mode       ListMode
	Diagnostic string // stderr or message from the device bridge
	Err        error
}

func (e *ListingError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("listing %s (%s) failed: %s", e.Dir, e.Mode, e.Diagnostic)
	}
	return fmt.Sprintf("listing %s (%s) failed: %v", e.Dir, e.Mode, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

// TransferError means a single pull failed; the file is skipped
type TransferError struct {
	Name string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("pull %s: %v", e.Name, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// PlacementError means a move into the date bucket failed; the file stays at its raw location
type PlacementError struct {
	Name string
	Op   string
	Err  error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("place %s (%s): %v", e.Name, e.Op, e.Err)
}

func (e *PlacementError) Unwrap() error {
	return e.Err
}

// DeletionVerificationError means the local copy was missing or empty right before a remote delete
type DeletionVerificationError struct {
	Name      string
	LocalPath string
	Reason    string
}

func (e *DeletionVerificationError) Error() string {
	return fmt.Sprintf("not deleting %s: local copy %s %s", e.Name, e.LocalPath, e.Reason)
}

// ConfigParseWarning means a filter setting could not be parsed and its rule was disabled
type ConfigParseWarning struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigParseWarning) Error() string {
	return fmt.Sprintf("%s=%q ignored: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigParseWarning) Unwrap() error {
	return e.Err
}
