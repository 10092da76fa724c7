package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/camharvest/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or modify camharvest configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			applyGlobalFlags(cfg)

			adb := cfg.Device.ADBPath
			if adb == "" {
				adb = "adb (from PATH)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ADB: %s\n", adb)
			fmt.Fprintf(out, "Remote Path: %s\n", cfg.Device.RemotePath)
			fmt.Fprintf(out, "Destination: %s\n", cfg.Extract.Destination)
			fmt.Fprintf(out, "Sort Order: %s\n", cfg.Extract.SortOrder)
			fmt.Fprintf(out, "Limit: %d\n", cfg.Extract.Limit)
			fmt.Fprintf(out, "Smart Placement: %v\n", cfg.Extract.SmartPlacement)
			fmt.Fprintf(out, "Delete After Copy: %v\n", cfg.Extract.DeleteAfter)
			fmt.Fprintf(out, "Date Filter: %v (%s .. %s)\n", cfg.Extract.DateFilter.Enabled, cfg.Extract.DateFilter.Start, cfg.Extract.DateFilter.End)
			fmt.Fprintf(out, "Letter Filter: %v (%s .. %s)\n", cfg.Extract.LetterFilter.Enabled, cfg.Extract.LetterFilter.Start, cfg.Extract.LetterFilter.End)
			fmt.Fprintf(out, "Exclude: %v\n", cfg.Extract.Exclude)
			fmt.Fprintf(out, "Delete Batch Size: %d\n", cfg.Verify.BatchSize)
			fmt.Fprintf(out, "Schedule: %s\n", cfg.Schedule.Cron)
			fmt.Fprintf(out, "Output Format: %s\n", cfg.Output.Format)
			fmt.Fprintf(out, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}
