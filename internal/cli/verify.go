package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sdejongh/camharvest/pkg/config"
	"github.com/sdejongh/camharvest/pkg/logging"
	"github.com/sdejongh/camharvest/pkg/output"
)

// VerifyFlags holds verify command flags
type VerifyFlags struct {
	Dest         string
	Delete       bool
	Yes          bool
	Report       string
	ReportFormat string
	BatchSize    int
}

var verifyFlags VerifyFlags

// NewVerifyCommand creates the verify command
func NewVerifyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Find phone files that are already backed up",
		Long: `Index every file under the local backup folder and compare the phone's camera
folder against it by name and size. Files with a matching local copy are reported
as safe to delete. Nothing is deleted unless --delete is given and confirmed.`,
		RunE: runVerify,
	}

	cmd.Flags().StringVarP(&verifyFlags.Dest, "dest", "d", "", "local backup folder (default: extract.destination)")
	cmd.Flags().BoolVar(&verifyFlags.Delete, "delete", false, "delete the safe files from the phone after confirmation")
	cmd.Flags().BoolVarP(&verifyFlags.Yes, "yes", "y", false, "do not ask for confirmation before deleting")
	cmd.Flags().StringVar(&verifyFlags.Report, "report", "", "write the safe-delete list to file")
	cmd.Flags().StringVar(&verifyFlags.ReportFormat, "report-format", "human", "report format: human, json")
	cmd.Flags().IntVar(&verifyFlags.BatchSize, "batch-size", 0, "files per delete call (default: verify.batch_size)")

	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd.Context())

	s, err := newSession(func(cfg *config.Config) error {
		if verifyFlags.Dest != "" {
			cfg.Extract.Destination = verifyFlags.Dest
		}
		if verifyFlags.BatchSize > 0 {
			cfg.Verify.BatchSize = verifyFlags.BatchSize
		}
		return nil
	})
	if err != nil {
		return err
	}
	defer s.Close()

	dest, err := validateDestination(s.cfg.Extract.Destination, false)
	if err != nil {
		return err
	}
	s.cfg.Extract.Destination = dest

	run, err := buildRunConfig(s.cfg)
	if err != nil {
		return err
	}

	events, err := s.engine.StartVerification(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to start verification: %w", err)
	}
	done, err := s.render(fmt.Sprintf("Verifying %s against %s", run.RemoteDir, run.LocalDir), events)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	if exit := exitFor(done); exit != nil {
		return exit
	}

	result := done.Verify
	if verifyFlags.Report != "" {
		if err := output.WriteSafeDeleteReport(result, run.RemoteDir, run.LocalDir, verifyFlags.Report, verifyFlags.ReportFormat); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if !verifyFlags.Delete || len(result.SafeDeleteSet) == 0 {
		return nil
	}

	if !verifyFlags.Yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to delete %d files without confirmation (use --yes)", len(result.SafeDeleteSet))
		}
		prompt := fmt.Sprintf("Delete %d files from %s?", len(result.SafeDeleteSet), run.RemoteDir)
		if !askYesNo(os.Stdin, cmd.OutOrStdout(), prompt) {
			fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled.")
			return nil
		}
	}

	s.logger.Info(ctx, "Deletion confirmed", logging.Fields{"count": len(result.SafeDeleteSet), "verify_run": result.RunID})

	// a fresh run ID ties the deletion log lines together
	delRun, err := buildRunConfig(s.cfg)
	if err != nil {
		return err
	}

	events, err = s.engine.StartDeletion(ctx, delRun, result.SafeDeleteSet)
	if err != nil {
		return fmt.Errorf("failed to start deletion: %w", err)
	}
	done, err = s.render(fmt.Sprintf("Deleting %d files from %s", len(result.SafeDeleteSet), delRun.RemoteDir), events)
	if err != nil {
		return fmt.Errorf("deletion failed: %w", err)
	}

	return exitFor(done)
}

// askYesNo prints prompt and reads one answer; only y or yes confirms
func askYesNo(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
