package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/sdejongh/camharvest/pkg/device"
	"github.com/sdejongh/camharvest/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Extract  ExtractConfig  `yaml:"extract"`
	Verify   VerifyConfig   `yaml:"verify"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DeviceConfig holds settings for reaching the phone
type DeviceConfig struct {
	ADBPath    string `yaml:"adb_path"`    // empty = adb from PATH
	RemotePath string `yaml:"remote_path"` // camera folder on the device
	Debug      bool   `yaml:"debug"`       // log every adb command
}

// ExtractConfig holds extraction settings
type ExtractConfig struct {
	Destination    string             `yaml:"destination"`
	SortOrder      models.SortOrder   `yaml:"sort_order"`
	Limit          int                `yaml:"limit"` // 0 = no limit
	SmartPlacement bool               `yaml:"smart_placement"`
	DeleteAfter    bool               `yaml:"delete_after"`
	DateFilter     models.DateRange   `yaml:"date_filter"`
	LetterFilter   models.LetterRange `yaml:"letter_filter"`
	Exclude        []string           `yaml:"exclude"`
}

// VerifyConfig holds verification and deletion settings
type VerifyConfig struct {
	BatchSize      int `yaml:"batch_size"`      // names per remote delete call
	ProgressStride int `yaml:"progress_stride"` // progress every N comparisons
}

// ScheduleConfig holds the watch command schedule
type ScheduleConfig struct {
	Cron string `yaml:"cron"` // six fields, seconds first
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bars
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Format     string `yaml:"format"` // "json" or "text"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	File       string `yaml:"file"`   // Log file path (empty = session log in Dir)
	Dir        string `yaml:"dir"`    // Directory for session logs (empty = camharvest/logs under the user config dir)
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			ADBPath:    "",
			RemotePath: device.DefaultRemoteDir,
			Debug:      false,
		},
		Extract: ExtractConfig{
			Destination:    "",
			SortOrder:      models.SortOldestFirst,
			Limit:          0,
			SmartPlacement: true,
			DeleteAfter:    false,
			DateFilter: models.DateRange{
				Enabled: false,
				Start:   "2020-01-01",
				End:     "2030-12-31",
			},
			LetterFilter: models.LetterRange{
				Enabled: false,
				Start:   "A",
				End:     "Z",
			},
			Exclude: []string{
				".trashed-*",
				"*.tmp",
			},
		},
		Verify: VerifyConfig{
			BatchSize:      20,
			ProgressStride: 100,
		},
		Schedule: ScheduleConfig{
			Cron: "0 */15 * * * *",
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Format:     "text",
			Level:      "info",
			File:       "",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 5,
			Compress:   false,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Device.RemotePath) == "" {
		return &models.ValidationError{
			Field:   "device.remote_path",
			Message: "must not be empty",
		}
	}

	if _, err := models.ParseSortOrder(string(c.Extract.SortOrder)); err != nil {
		return &models.ValidationError{
			Field:   "extract.sort_order",
			Message: err.Error(),
		}
	}

	if c.Extract.Limit < 0 {
		return &models.ValidationError{
			Field:   "extract.limit",
			Message: "must be 0 (no limit) or positive",
		}
	}

	if c.Verify.BatchSize < 1 {
		return &models.ValidationError{
			Field:   "verify.batch_size",
			Message: "must be at least 1",
		}
	}

	if c.Verify.ProgressStride < 1 {
		return &models.ValidationError{
			Field:   "verify.progress_stride",
			Message: "must be at least 1",
		}
	}

	if c.Schedule.Cron != "" {
		if _, err := ParseSchedule(c.Schedule.Cron); err != nil {
			return &models.ValidationError{
				Field:   "schedule.cron",
				Message: err.Error(),
			}
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size_mb",
			Message: "rotation settings cannot be negative",
		}
	}

	return nil
}

// ParseSchedule parses a six-field cron expression (seconds first)
// or a descriptor such as "@every 10m"
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// SyncConfig builds the immutable run configuration from the current settings.
// The sort order is normalized so legacy labels are accepted.
func (c *Config) SyncConfig(runID string) (*models.SyncConfig, error) {
	order, err := models.ParseSortOrder(string(c.Extract.SortOrder))
	if err != nil {
		return nil, err
	}

	cfg := &models.SyncConfig{
		ID:              runID,
		RemoteDir:       c.Device.RemotePath,
		LocalDir:        c.Extract.Destination,
		SortOrder:       order,
		Limit:           c.Extract.Limit,
		SmartPlacement:  c.Extract.SmartPlacement,
		DeleteAfterCopy: c.Extract.DeleteAfter,
		DateFilter:      c.Extract.DateFilter,
		LetterFilter:    c.Extract.LetterFilter,
		ExcludePatterns: append([]string(nil), c.Extract.Exclude...),
		BatchSize:       c.Verify.BatchSize,
		ProgressStride:  c.Verify.ProgressStride,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
