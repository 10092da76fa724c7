package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/sdejongh/camharvest/pkg/models"
)

// HumanFormatter prints one line per event, for logs and non-interactive shells
type HumanFormatter struct {
	writer  io.Writer
	verbose bool
}

// NewHumanFormatter creates a new human-readable formatter.
// Debug events are only printed when verbose is set.
func NewHumanFormatter(verbose bool) *HumanFormatter {
	return &HumanFormatter{verbose: verbose}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, title string) error {
	if writer == nil {
		writer = io.Discard
	}
	f.writer = writer
	if title != "" {
		fmt.Fprintf(f.writer, "%s\n", title)
	}
	return nil
}

// Progress prints log lines with their time and progress as a percentage
func (f *HumanFormatter) Progress(ev models.Event) error {
	switch ev.Kind {
	case models.EventLog:
		if ev.Level == models.LevelDebug && !f.verbose {
			return nil
		}
		prefix := ""
		switch ev.Level {
		case models.LevelWarn:
			prefix = "WARN "
		case models.LevelError:
			prefix = "ERROR "
		}
		fmt.Fprintf(f.writer, "[%s] %s%s\n", ev.Time.Format("15:04:05"), prefix, ev.Message)

	case models.EventProgress:
		fmt.Fprintf(f.writer, "%3.0f%% %s\n", ev.Percent, strings.TrimSpace(ev.Label))
	}
	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(ev models.Event) error {
	fmt.Fprintf(f.writer, "\n")
	writeSummary(f.writer, ev)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
