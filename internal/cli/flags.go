package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool

	// Device flags
	ADBPath    string
	RemotePath string
	Debug      bool

	// Output and logging flags
	Output    string
	LogFile   string
	LogFormat string
	LogLevel  string
	NoLog     bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/camharvest/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"verbose output",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output",
	)

	cmd.PersistentFlags().StringVar(&globalFlags.ADBPath, "adb", "", "path to the adb binary (default: adb from PATH)")
	cmd.PersistentFlags().StringVarP(&globalFlags.RemotePath, "remote", "r", "", "camera folder on the device")
	cmd.PersistentFlags().BoolVar(&globalFlags.Debug, "debug", false, "log every adb command")

	cmd.PersistentFlags().StringVarP(&globalFlags.Output, "output", "o", "", "output format: human, json")
	cmd.PersistentFlags().StringVar(&globalFlags.LogFile, "log-file", "", "write logs to this file instead of a session log")
	cmd.PersistentFlags().StringVar(&globalFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&globalFlags.NoLog, "no-log", false, "disable the session log")
}
