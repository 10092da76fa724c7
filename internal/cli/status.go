package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/camharvest/pkg/device"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show device connection state",
		Long: `Report whether a phone is connected and authorized over adb,
and whether the configured camera folder exists on it.`,
		RunE: runStatus,
	}
}

type statusReport struct {
	State        device.ConnState `json:"state"`
	Description  string           `json:"description"`
	RemotePath   string           `json:"remote_path"`
	RemoteExists bool             `json:"remote_exists"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd.Context())

	s, err := newSession(nil)
	if err != nil {
		return err
	}
	defer s.Close()

	report := statusReport{
		State:      s.bridge.State(ctx),
		RemotePath: s.cfg.Device.RemotePath,
	}
	report.Description = report.State.Describe()
	if report.State == device.StateConnected {
		report.RemoteExists = s.bridge.Exists(ctx, report.RemotePath)
	}

	out := cmd.OutOrStdout()
	if s.cfg.Output.Format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return err
		}
	} else if !s.cfg.Output.Quiet {
		fmt.Fprintf(out, "Device: %s\n", report.Description)
		if report.State == device.StateConnected {
			found := "found"
			if !report.RemoteExists {
				found = "missing"
			}
			fmt.Fprintf(out, "Camera folder: %s (%s)\n", report.RemotePath, found)
		}
	}

	if report.State != device.StateConnected {
		return &ExitError{Code: 1, Err: fmt.Errorf("device %s", report.State)}
	}
	return nil
}
