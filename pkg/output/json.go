package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/camharvest/pkg/models"
)

// JSONFormatter writes one JSON object per line, for automation and scripting
type JSONFormatter struct {
	writer  io.Writer
	encoder *json.Encoder
}

// JSONEvent represents a single event in the JSON output stream
type JSONEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
}

// JSONLogData is the payload of a log event
type JSONLogData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// JSONProgressData is the payload of a progress event
type JSONProgressData struct {
	Percent float64 `json:"percent"`
	Label   string  `json:"label"`
}

// JSONReportData represents the final report data
type JSONReportData struct {
	RunID      string            `json:"run_id"`
	Status     string            `json:"status"`
	ExitCode   int               `json:"exit_code"`
	Duration   string            `json:"duration"`
	DurationMs int64             `json:"duration_ms"`
	Error      string            `json:"error,omitempty"`
	Transfer   *JSONTransferData `json:"transfer,omitempty"`
	Verify     *JSONVerifyData   `json:"verify,omitempty"`
	Deletion   *JSONDeletionData `json:"deletion,omitempty"`
}

// JSONTransferData represents extraction counters
type JSONTransferData struct {
	Listed     int              `json:"listed"`
	Rejected   int              `json:"rejected"`
	Candidates int              `json:"candidates"`
	Processed  int              `json:"processed"`
	Downloaded int              `json:"downloaded"`
	Present    int              `json:"present"`
	Failed     int              `json:"failed"`
	Renamed    int              `json:"renamed"`
	Deleted    int              `json:"deleted"`
	Files      []JSONFileResult `json:"files,omitempty"`
}

// JSONFileResult represents the outcome of one file
type JSONFileResult struct {
	Name      string `json:"name"`
	LocalPath string `json:"local_path,omitempty"`
	Result    string `json:"result"`
	Placement string `json:"placement,omitempty"`
	Deleted   bool   `json:"deleted,omitempty"`
	Error     string `json:"error,omitempty"`
}

// JSONVerifyData represents verification counters and the safe-delete set
type JSONVerifyData struct {
	LocalFiles    int      `json:"local_files"`
	LocalNames    int      `json:"local_names"`
	RemoteTotal   int      `json:"remote_total"`
	Matched       int      `json:"matched"`
	SafeDeleteSet []string `json:"safe_delete_set"`
}

// JSONDeletionData represents batched deletion counters
type JSONDeletionData struct {
	Requested     int `json:"requested"`
	Deleted       int `json:"deleted"`
	Batches       int `json:"batches"`
	FailedBatches int `json:"failed_batches"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, title string) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.encoder = json.NewEncoder(writer)
	return f.encoder.Encode(JSONEvent{
		Timestamp: time.Now(),
		Type:      "start",
		Data:      map[string]string{"title": title},
	})
}

// Progress writes log and progress events as they arrive
func (f *JSONFormatter) Progress(ev models.Event) error {
	switch ev.Kind {
	case models.EventLog:
		return f.encoder.Encode(JSONEvent{
			Timestamp: ev.Time,
			Type:      "log",
			Data:      JSONLogData{Level: string(ev.Level), Message: ev.Message},
		})
	case models.EventProgress:
		return f.encoder.Encode(JSONEvent{
			Timestamp: ev.Time,
			Type:      "progress",
			Data:      JSONProgressData{Percent: ev.Percent, Label: ev.Label},
		})
	}
	return nil
}

// Complete writes the final report as the last line
func (f *JSONFormatter) Complete(ev models.Event) error {
	return f.encoder.Encode(JSONEvent{
		Timestamp: ev.Time,
		Type:      "complete",
		Data:      reportData(ev),
	})
}

func reportData(ev models.Event) JSONReportData {
	data := JSONReportData{
		Status:   string(ev.Status),
		ExitCode: ev.Status.ExitCode(),
	}
	if ev.Err != nil {
		data.Error = ev.Err.Error()
	}

	var runID string
	var duration time.Duration
	switch {
	case ev.Transfer != nil:
		o := ev.Transfer
		runID, duration = o.RunID, o.Duration
		data.Transfer = &JSONTransferData{
			Listed:     o.Listed,
			Rejected:   o.Rejected,
			Candidates: o.Candidates,
			Processed:  o.Processed,
			Downloaded: o.Downloaded,
			Present:    o.Present,
			Failed:     o.Failed,
			Renamed:    o.Renamed,
			Deleted:    o.Deleted,
		}
		for _, fr := range o.Files {
			data.Transfer.Files = append(data.Transfer.Files, JSONFileResult{
				Name:      fr.Name,
				LocalPath: fr.LocalPath,
				Result:    string(fr.Result),
				Placement: string(fr.Placement),
				Deleted:   fr.Deleted,
				Error:     fr.Error,
			})
		}
	case ev.Verify != nil:
		r := ev.Verify
		runID, duration = r.RunID, r.Duration
		data.Verify = &JSONVerifyData{
			LocalFiles:    r.LocalFiles,
			LocalNames:    r.LocalNames,
			RemoteTotal:   r.RemoteTotal,
			Matched:       r.Matched,
			SafeDeleteSet: append([]string{}, r.SafeDeleteSet...),
		}
	case ev.Deletion != nil:
		d := ev.Deletion
		runID, duration = d.RunID, d.Duration
		data.Deletion = &JSONDeletionData{
			Requested:     d.Requested,
			Deleted:       d.Deleted,
			Batches:       d.Batches,
			FailedBatches: d.FailedBatches,
		}
	}
	data.RunID = runID
	data.Duration = duration.Round(time.Millisecond).String()
	data.DurationMs = duration.Milliseconds()
	return data
}

// Error reports an error
func (f *JSONFormatter) Error(err error) error {
	if f.encoder == nil {
		f.encoder = json.NewEncoder(os.Stdout)
	}
	return f.encoder.Encode(JSONEvent{
		Timestamp: time.Now(),
		Type:      "error",
		Data:      map[string]string{"error": err.Error()},
	})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
