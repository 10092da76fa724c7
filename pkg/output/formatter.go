// Package output renders pipeline event streams for the terminal or for scripts.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/sdejongh/camharvest/pkg/models"
)

// Formatter defines the interface for output formatting.
// Implementations include human-readable, JSON and progress bar formatters.
type Formatter interface {
	// Start initializes the formatter for a new pipeline run
	Start(writer io.Writer, title string) error

	// Progress reports a log or progress event
	Progress(ev models.Event) error

	// Complete finalizes output from the terminal event and displays the summary
	Complete(ev models.Event) error

	// Error reports an error that prevented the pipeline from starting or finishing
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// Render drains events into f and returns the terminal event.
// A stream that closes without a terminal event is reported as failed.
func Render(f Formatter, w io.Writer, title string, events <-chan models.Event) (models.Event, error) {
	if err := f.Start(w, title); err != nil {
		return models.Event{}, err
	}

	for ev := range events {
		if ev.IsTerminal() {
			// keep draining so the producer can close the stream
			for range events {
			}
			return ev, f.Complete(ev)
		}
		if err := f.Progress(ev); err != nil {
			return models.Event{}, err
		}
	}

	err := fmt.Errorf("event stream closed without a result")
	f.Error(err)
	return models.Event{Kind: models.EventDone, Time: time.Now(), Status: models.StatusFailed, Err: err}, err
}

// New returns the formatter registered under name
func New(name string, verbose bool) (Formatter, error) {
	switch name {
	case "human":
		return NewHumanFormatter(verbose), nil
	case "json":
		return NewJSONFormatter(), nil
	case "progress":
		return NewProgressFormatter(), nil
	}
	return nil, fmt.Errorf("unknown output format %q (valid: human, json, progress)", name)
}

// formatDuration formats duration in human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// writeSummary prints the counters of whichever outcome ev carries
func writeSummary(w io.Writer, ev models.Event) {
	switch {
	case ev.Transfer != nil:
		o := ev.Transfer
		fmt.Fprintf(w, "Extraction %s in %s\n", o.Status, formatDuration(o.Duration))
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Summary:\n")
		fmt.Fprintf(w, "  Listed:        %d\n", o.Listed)
		fmt.Fprintf(w, "  Filtered out:  %d\n", o.Rejected)
		fmt.Fprintf(w, "  Candidates:    %d\n", o.Candidates)
		fmt.Fprintf(w, "  Downloaded:    %d\n", o.Downloaded)
		fmt.Fprintf(w, "  Already local: %d\n", o.Present)
		fmt.Fprintf(w, "  Renamed:       %d\n", o.Renamed)
		fmt.Fprintf(w, "  Failed:        %d\n", o.Failed)
		fmt.Fprintf(w, "  Deleted:       %d\n", o.Deleted)

		var failed []models.FileResult
		for _, f := range o.Files {
			if f.Error != "" {
				failed = append(failed, f)
			}
		}
		if len(failed) > 0 {
			fmt.Fprintf(w, "\nErrors:\n")
			for _, f := range failed {
				fmt.Fprintf(w, "  %s: %s\n", f.Name, f.Error)
			}
		}

	case ev.Verify != nil:
		r := ev.Verify
		fmt.Fprintf(w, "Verification %s in %s\n", r.Status, formatDuration(r.Duration))
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Summary:\n")
		fmt.Fprintf(w, "  Local files:    %d (%d names)\n", r.LocalFiles, r.LocalNames)
		fmt.Fprintf(w, "  Remote files:   %d\n", r.RemoteTotal)
		fmt.Fprintf(w, "  Safe to delete: %d\n", r.Matched)

	case ev.Deletion != nil:
		d := ev.Deletion
		fmt.Fprintf(w, "Deletion %s in %s\n", d.Status, formatDuration(d.Duration))
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Summary:\n")
		fmt.Fprintf(w, "  Requested:     %d\n", d.Requested)
		fmt.Fprintf(w, "  Deleted:       %d\n", d.Deleted)
		fmt.Fprintf(w, "  Failed batches: %d of %d\n", d.FailedBatches, d.Batches)
	}

	if ev.Err != nil {
		fmt.Fprintf(w, "\nError: %v\n", ev.Err)
	}
	fmt.Fprintf(w, "\nStatus: %s\n", ev.Status)
}
