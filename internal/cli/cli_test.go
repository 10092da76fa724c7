package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sdejongh/camharvest/pkg/config"
	"github.com/sdejongh/camharvest/pkg/logging"
	"github.com/sdejongh/camharvest/pkg/models"
)

func parseExtract(t *testing.T, args ...string) *config.Config {
	t.Helper()
	extractFlags = ExtractFlags{}
	cmd := NewExtractCommand()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error = %v", args, err)
	}
	cfg := config.Default()
	if err := applyExtractFlags(cmd, cfg); err != nil {
		t.Fatalf("applyExtractFlags() error = %v", err)
	}
	return cfg
}

func TestApplyExtractFlags(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg := parseExtract(t)
		def := config.Default()
		if cfg.Extract.SortOrder != def.Extract.SortOrder || cfg.Extract.DateFilter.Enabled || cfg.Extract.LetterFilter.Enabled {
			t.Errorf("extract = %+v", cfg.Extract)
		}
		if !cfg.Extract.SmartPlacement || cfg.Extract.DeleteAfter {
			t.Errorf("extract = %+v", cfg.Extract)
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		cfg := parseExtract(t,
			"--dest", "/backup", "--sort", "Newest First", "--limit", "5",
			"--flat", "--delete-after", "--exclude", "*.tmp,*.mp4")

		if cfg.Extract.Destination != "/backup" || cfg.Extract.SortOrder != models.SortNewestFirst || cfg.Extract.Limit != 5 {
			t.Errorf("extract = %+v", cfg.Extract)
		}
		if cfg.Extract.SmartPlacement || !cfg.Extract.DeleteAfter {
			t.Errorf("extract = %+v", cfg.Extract)
		}
		if strings.Join(cfg.Extract.Exclude, ",") != "*.tmp,*.mp4" {
			t.Errorf("Exclude = %v", cfg.Extract.Exclude)
		}
	})

	t.Run("OneDateBoundEnablesFilter", func(t *testing.T) {
		cfg := parseExtract(t, "--from", "2024-03-01")
		f := cfg.Extract.DateFilter
		if !f.Enabled || f.Start != "2024-03-01" || f.End != "2030-12-31" {
			t.Errorf("DateFilter = %+v", f)
		}
	})

	t.Run("LetterBounds", func(t *testing.T) {
		cfg := parseExtract(t, "--letter-from", "i", "--letter-to", "v")
		f := cfg.Extract.LetterFilter
		if !f.Enabled || f.Start != "i" || f.End != "v" {
			t.Errorf("LetterFilter = %+v", f)
		}
	})

	t.Run("BadSort", func(t *testing.T) {
		extractFlags = ExtractFlags{}
		cmd := NewExtractCommand()
		cmd.ParseFlags([]string{"--sort", "random"})
		if err := applyExtractFlags(cmd, config.Default()); err == nil {
			t.Error("unknown sort order should fail")
		}
	})
}

func TestApplyGlobalFlags(t *testing.T) {
	defer func() { globalFlags = GlobalFlags{} }()

	globalFlags = GlobalFlags{
		ADBPath:    "/opt/platform-tools/adb",
		RemotePath: "/sdcard/DCIM/OpenCamera",
		Debug:      true,
		Output:     "json",
		LogFile:    "/tmp/run.log",
		Quiet:      true,
	}
	cfg := config.Default()
	cfg.Logging.Enabled = false
	applyGlobalFlags(cfg)

	if cfg.Device.ADBPath != "/opt/platform-tools/adb" || cfg.Device.RemotePath != "/sdcard/DCIM/OpenCamera" || !cfg.Device.Debug {
		t.Errorf("device = %+v", cfg.Device)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.File != "/tmp/run.log" || !cfg.Logging.Enabled {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Output.Format != "json" || cfg.Output.Progress || !cfg.Output.Quiet {
		t.Errorf("output = %+v", cfg.Output)
	}

	globalFlags = GlobalFlags{NoLog: true}
	cfg = config.Default()
	applyGlobalFlags(cfg)
	if cfg.Logging.Enabled {
		t.Error("--no-log should disable logging")
	}
}

func TestExitFor(t *testing.T) {
	if err := exitFor(models.Event{Status: models.StatusCompleted}); err != nil {
		t.Errorf("completed run error = %v", err)
	}

	cause := errors.New("listing failed")
	err := exitFor(models.Event{Status: models.StatusFailed, Err: cause})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("exitFor(failed) = %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("ExitError should unwrap to the run error")
	}

	err = exitFor(models.Event{Status: models.StatusCancelled})
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Errorf("exitFor(cancelled) = %v", err)
	}
}

func TestAskYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \r\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
	}
	for _, tt := range tests {
		var out strings.Builder
		if got := askYesNo(strings.NewReader(tt.input), &out, "Delete 3 files?"); got != tt.want {
			t.Errorf("askYesNo(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Delete 3 files? [y/N]: " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestCreateLogger(t *testing.T) {
	cfg := config.Default().Logging

	cfg.Enabled = false
	logger, path, err := createLogger(cfg, time.Now())
	if err != nil || path != "" {
		t.Fatalf("createLogger(disabled) = %q, %v", path, err)
	}
	if _, ok := logger.(*logging.NullLogger); !ok {
		t.Errorf("logger = %T, want *logging.NullLogger", logger)
	}

	cfg.Enabled = true
	cfg.Dir = t.TempDir()
	now := time.Date(2024, 3, 10, 14, 5, 9, 0, time.Local)
	logger, path, err = createLogger(cfg, now)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()
	if want := filepath.Join(cfg.Dir, "camharvest_2024-03-10_140509.log"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 3, "next", "x", "dangling"})
	if len(fields) != 2 || fields["entry"] != 3 || fields["next"] != "x" {
		t.Errorf("fields = %v", fields)
	}
}

func TestVersionCommand(t *testing.T) {
	defer func() { globalFlags = GlobalFlags{} }()

	tests := []struct {
		name   string
		output string
		args   []string
		check  func(t *testing.T, out string)
	}{
		{
			name: "Short",
			args: []string{"--short"},
			check: func(t *testing.T, out string) {
				if out != Version+"\n" {
					t.Errorf("output = %q", out)
				}
			},
		},
		{
			name: "Text",
			check: func(t *testing.T, out string) {
				if !strings.HasPrefix(out, "camharvest "+Version) {
					t.Errorf("output = %q", out)
				}
			},
		},
		{
			name:   "JSON",
			output: "json",
			check: func(t *testing.T, out string) {
				var info versionInfo
				if err := json.Unmarshal([]byte(out), &info); err != nil {
					t.Fatalf("invalid JSON %q: %v", out, err)
				}
				if info.Version != Version || info.Platform == "" {
					t.Errorf("info = %+v", info)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			globalFlags = GlobalFlags{Output: tt.output}
			var buf bytes.Buffer
			cmd := NewVersionCommand()
			cmd.SetOut(&buf)
			cmd.SetArgs(tt.args)
			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			tt.check(t, buf.String())
		})
	}
}
