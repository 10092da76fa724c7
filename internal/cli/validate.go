package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/sdejongh/camharvest/internal/platform"
	"github.com/sdejongh/camharvest/pkg/config"
	"github.com/sdejongh/camharvest/pkg/device"
	"github.com/sdejongh/camharvest/pkg/logging"
	"github.com/sdejongh/camharvest/pkg/models"
	"github.com/sdejongh/camharvest/pkg/output"
	"github.com/sdejongh/camharvest/pkg/sync"
)

// ExitError asks main to exit with Code after a run that did not complete
type ExitError struct {
	Code   int
	Status models.RunStatus
	Err    error
}

func (e *ExitError) Error() string {
	if e.Status == "" && e.Err != nil {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("run %s: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("run %s", e.Status)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitFor maps the terminal event of a run to the command result
func exitFor(done models.Event) error {
	if done.Status == models.StatusCompleted {
		return nil
	}
	return &ExitError{Code: done.Status.ExitCode(), Status: done.Status, Err: done.Err}
}

// session holds what every device command needs
type session struct {
	cfg     *config.Config
	logger  logging.Logger
	logPath string
	bridge  *device.ADB
	engine  *sync.Engine
}

// newSession loads the configuration, applies global flags then apply, and
// opens the logger and the device bridge
func newSession(apply func(cfg *config.Config) error) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyGlobalFlags(cfg)
	if apply != nil {
		if err := apply(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, logPath, err := createLogger(cfg.Logging, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	bridge := createBridge(cfg, logger)
	return &session{
		cfg:     cfg,
		logger:  logger,
		logPath: logPath,
		bridge:  bridge,
		engine:  sync.NewEngine(bridge, logger),
	}, nil
}

func (s *session) Close() error {
	return s.logger.Close()
}

// render drains events into the configured formatter
func (s *session) render(title string, events <-chan models.Event) (models.Event, error) {
	formatter, w := createFormatter(s.cfg)
	return output.Render(formatter, w, title, events)
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyGlobalFlags overrides config values with global command-line flags
func applyGlobalFlags(cfg *config.Config) {
	if globalFlags.ADBPath != "" {
		cfg.Device.ADBPath = globalFlags.ADBPath
	}
	if globalFlags.RemotePath != "" {
		cfg.Device.RemotePath = globalFlags.RemotePath
	}
	if globalFlags.Debug {
		cfg.Device.Debug = true
		cfg.Logging.Level = "debug"
	}

	// Output format
	if globalFlags.Output != "" {
		cfg.Output.Format = globalFlags.Output
	}

	// Logging
	if globalFlags.LogFile != "" {
		cfg.Logging.File = globalFlags.LogFile
		cfg.Logging.Enabled = true
	}
	if globalFlags.LogFormat != "" {
		cfg.Logging.Format = globalFlags.LogFormat
	}
	if globalFlags.LogLevel != "" {
		cfg.Logging.Level = globalFlags.LogLevel
	}
	if globalFlags.NoLog {
		cfg.Logging.Enabled = false
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Enable progress in verbose mode
	if globalFlags.Verbose {
		cfg.Output.Progress = true
	}
}

// validateDestination normalizes the local destination and makes sure it is a directory
func validateDestination(path string, create bool) (string, error) {
	if err := platform.ValidatePath(path); err != nil {
		return "", fmt.Errorf("destination: %w (set --dest or extract.destination)", err)
	}
	dest := platform.NormalizePath(path)
	if err := platform.EnsureDir(dest, create); err != nil {
		return "", err
	}
	return dest, nil
}

// buildRunConfig creates the configuration of one pipeline run
func buildRunConfig(cfg *config.Config) (*models.SyncConfig, error) {
	run, err := cfg.SyncConfig(uuid.New().String())
	if err != nil {
		return nil, fmt.Errorf("failed to create run configuration: %w", err)
	}
	return run, nil
}

// createLogger opens the configured log file, or a session log named after now
func createLogger(cfg config.LoggingConfig, now time.Time) (logging.Logger, string, error) {
	if !cfg.Enabled {
		return logging.NewNullLogger(), "", nil
	}

	path := cfg.File
	if path == "" {
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = platform.DefaultLogDir(); err != nil {
				return nil, "", err
			}
		}
		path = logging.SessionLogPath(platform.NormalizePath(dir), now)
	}

	// Parse log format
	var format logging.Format
	switch cfg.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	logger, err := logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       platform.NormalizePath(path),
		Format:     format,
		Level:      logging.ParseLevel(cfg.Level),
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
	})
	if err != nil {
		return nil, "", err
	}
	return logger, path, nil
}

// createBridge creates the adb-backed device bridge
func createBridge(cfg *config.Config, logger logging.Logger) *device.ADB {
	return device.NewADB(device.ADBConfig{
		Path:   cfg.Device.ADBPath,
		Debug:  cfg.Device.Debug,
		Logger: logger,
	})
}

// createFormatter picks the output formatter: JSON when asked, a progress bar
// on an interactive terminal, plain lines otherwise
func createFormatter(cfg *config.Config) (output.Formatter, io.Writer) {
	switch {
	case cfg.Output.Quiet:
		return output.NewHumanFormatter(false), io.Discard
	case cfg.Output.Format == "json":
		return output.NewJSONFormatter(), os.Stdout
	case cfg.Output.Progress && term.IsTerminal(int(os.Stdout.Fd())):
		return output.NewProgressFormatter(), os.Stdout
	default:
		return output.NewHumanFormatter(globalFlags.Verbose), os.Stdout
	}
}

// commandContext returns the command context or a background one
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
