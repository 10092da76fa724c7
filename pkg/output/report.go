package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sdejongh/camharvest/pkg/models"
)

// WriteSafeDeleteReport writes the safe-delete set of a verification run to a file.
// Format can be "human" or "json".
func WriteSafeDeleteReport(result *models.VerifyResult, remoteDir, localDir, path, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		return writeSafeDeleteJSON(result, remoteDir, localDir, file)
	default: // "human"
		return writeSafeDeleteHuman(result, remoteDir, localDir, file)
	}
}

func writeSafeDeleteHuman(result *models.VerifyResult, remoteDir, localDir string, w io.Writer) error {
	fmt.Fprintf(w, "Safe-Delete Report\n")
	fmt.Fprintf(w, "==================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Remote: %s\n", remoteDir)
	fmt.Fprintf(w, "Local backup: %s\n\n", localDir)
	fmt.Fprintf(w, "Matched %d of %d remote files (%d local files indexed)\n\n",
		result.Matched, result.RemoteTotal, result.LocalFiles)

	for _, name := range result.SafeDeleteSet {
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}

type safeDeleteJSON struct {
	Generated     string   `json:"generated"`
	RunID         string   `json:"run_id"`
	RemoteDir     string   `json:"remote_dir"`
	LocalDir      string   `json:"local_dir"`
	RemoteTotal   int      `json:"remote_total"`
	LocalFiles    int      `json:"local_files"`
	SafeDeleteSet []string `json:"safe_delete_set"`
}

func writeSafeDeleteJSON(result *models.VerifyResult, remoteDir, localDir string, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(safeDeleteJSON{
		Generated:     time.Now().Format(time.RFC3339),
		RunID:         result.RunID,
		RemoteDir:     remoteDir,
		LocalDir:      localDir,
		RemoteTotal:   result.RemoteTotal,
		LocalFiles:    result.LocalFiles,
		SafeDeleteSet: append([]string{}, result.SafeDeleteSet...),
	})
}
