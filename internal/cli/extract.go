package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/camharvest/pkg/config"
	"github.com/sdejongh/camharvest/pkg/models"
)

// ExtractFlags holds extract command flags
type ExtractFlags struct {
	Dest        string
	CreateDest  bool
	Sort        string
	Limit       int
	Flat        bool
	DeleteAfter bool
	From        string
	To          string
	LetterFrom  string
	LetterTo    string
	Exclude     []string
}

var extractFlags ExtractFlags

// NewExtractCommand creates the extract command
func NewExtractCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Copy photos and videos from the phone",
		Long: `Copy media files from the device camera folder into a local backup folder.
Files already present locally are skipped, so an interrupted run can simply be restarted.
By default files are sorted into YYYY-MM folders by modification date.`,
		RunE: runExtract,
	}

	addSelectionFlags(cmd)
	cmd.Flags().BoolVar(&extractFlags.DeleteAfter, "delete-after", false, "delete each file from the phone once its local copy is verified")

	return cmd
}

// addSelectionFlags registers the destination and selection flags shared by extract and watch
func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&extractFlags.Dest, "dest", "d", "", "local backup folder (default: extract.destination)")
	cmd.Flags().BoolVar(&extractFlags.CreateDest, "create-dest", false, "create destination directory if it doesn't exist")
	cmd.Flags().StringVar(&extractFlags.Sort, "sort", "", "order: oldest-first, newest-first, name-asc, name-desc")
	cmd.Flags().IntVarP(&extractFlags.Limit, "limit", "n", 0, "process at most N files (0 = no limit)")
	cmd.Flags().BoolVar(&extractFlags.Flat, "flat", false, "keep files at the top of the destination instead of YYYY-MM folders")
	cmd.Flags().StringVar(&extractFlags.From, "from", "", "only files modified on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&extractFlags.To, "to", "", "only files modified on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&extractFlags.LetterFrom, "letter-from", "", "only files whose name starts at or after this letter")
	cmd.Flags().StringVar(&extractFlags.LetterTo, "letter-to", "", "only files whose name starts at or before this letter")
	cmd.Flags().StringSliceVar(&extractFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")
}

// applyExtractFlags overrides extract settings with command-line flags
func applyExtractFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if extractFlags.Dest != "" {
		cfg.Extract.Destination = extractFlags.Dest
	}

	if flags.Changed("sort") {
		order, err := models.ParseSortOrder(extractFlags.Sort)
		if err != nil {
			return err
		}
		cfg.Extract.SortOrder = order
	}

	if flags.Changed("limit") {
		cfg.Extract.Limit = extractFlags.Limit
	}

	if extractFlags.Flat {
		cfg.Extract.SmartPlacement = false
	}

	if flags.Changed("delete-after") {
		cfg.Extract.DeleteAfter = extractFlags.DeleteAfter
	}

	// Either bound enables the date rule, the other keeps its configured value
	if flags.Changed("from") || flags.Changed("to") {
		cfg.Extract.DateFilter.Enabled = true
		if extractFlags.From != "" {
			cfg.Extract.DateFilter.Start = extractFlags.From
		}
		if extractFlags.To != "" {
			cfg.Extract.DateFilter.End = extractFlags.To
		}
	}

	if flags.Changed("letter-from") || flags.Changed("letter-to") {
		cfg.Extract.LetterFilter.Enabled = true
		if extractFlags.LetterFrom != "" {
			cfg.Extract.LetterFilter.Start = extractFlags.LetterFrom
		}
		if extractFlags.LetterTo != "" {
			cfg.Extract.LetterFilter.End = extractFlags.LetterTo
		}
	}

	// Exclude patterns
	if len(extractFlags.Exclude) > 0 {
		cfg.Extract.Exclude = extractFlags.Exclude
	}

	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd.Context())

	s, err := newSession(func(cfg *config.Config) error {
		return applyExtractFlags(cmd, cfg)
	})
	if err != nil {
		return err
	}
	defer s.Close()

	dest, err := validateDestination(s.cfg.Extract.Destination, extractFlags.CreateDest)
	if err != nil {
		return err
	}
	s.cfg.Extract.Destination = dest

	run, err := buildRunConfig(s.cfg)
	if err != nil {
		return err
	}

	events, err := s.engine.StartTransfer(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to start extraction: %w", err)
	}

	done, err := s.render(fmt.Sprintf("Extracting %s -> %s", run.RemoteDir, run.LocalDir), events)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if s.logPath != "" && !s.cfg.Output.Quiet && s.cfg.Output.Format != "json" {
		fmt.Fprintf(cmd.OutOrStdout(), "Log: %s\n", s.logPath)
	}

	return exitFor(done)
}
