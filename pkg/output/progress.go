package output

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/camharvest/pkg/models"
)

const (
	// progress is tracked in tenths of a percent
	barTotal    = 1000
	barTemplate = `{{bar . "[" "=" ">" " " "]"}} {{percent .}} {{string . "label"}}`
)

// getUpdateInterval returns the progress update interval based on OS.
// Windows terminals have higher latency with ANSI sequences.
func getUpdateInterval() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// ProgressFormatter draws a single progress bar and prints warnings and errors above it
type ProgressFormatter struct {
	mu     sync.Mutex
	writer io.Writer
	bar    *pb.ProgressBar
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter() *ProgressFormatter {
	return &ProgressFormatter{}
}

// Start initializes the formatter
func (f *ProgressFormatter) Start(writer io.Writer, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	if title != "" {
		fmt.Fprintf(writer, "%s\n", title)
	}

	f.bar = pb.New(barTotal).
		SetTemplateString(barTemplate).
		SetWriter(writer).
		SetRefreshRate(getUpdateInterval())

	// keep the bar on one line
	if file, ok := writer.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			f.bar.SetWidth(width)
		}
	}

	f.bar.Set("label", "Starting...")
	f.bar.Start()
	return nil
}

// Progress moves the bar and prints warnings and errors
func (f *ProgressFormatter) Progress(ev models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch ev.Kind {
	case models.EventProgress:
		f.bar.SetCurrent(int64(ev.Percent * barTotal / 100))
		f.bar.Set("label", ev.Label)

	case models.EventLog:
		if ev.Level != models.LevelWarn && ev.Level != models.LevelError {
			return nil
		}
		// clear the bar line, the next refresh redraws it below
		fmt.Fprintf(f.writer, "\r\033[K%s %s\n", ev.Time.Format("15:04:05"), ev.Message)
	}
	return nil
}

// Complete stops the bar and displays summary
func (f *ProgressFormatter) Complete(ev models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ev.Status == models.StatusCompleted {
		f.bar.SetCurrent(barTotal)
	}
	f.bar.Finish()

	fmt.Fprintf(f.writer, "\n")
	writeSummary(f.writer, ev)
	return nil
}

// Error reports an error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil && f.bar.IsStarted() {
		f.bar.Finish()
	}
	w := f.writer
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
