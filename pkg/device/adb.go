package device

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sdejongh/camharvest/pkg/logging"
	"github.com/sdejongh/camharvest/pkg/models"
)

// DefaultRemoteDir is the camera folder on most Android devices
const DefaultRemoteDir = "/storage/emulated/0/DCIM/Camera"

// ADBConfig configures the adb-backed bridge
type ADBConfig struct {
	// Path to the adb binary; empty means "adb" from PATH
	Path string
	// Debug logs every command line at debug level
	Debug  bool
	Runner CommandRunner
	Logger logging.Logger
}

// ADB implements Bridge on top of the adb command line tool
type ADB struct {
	path   string
	debug  bool
	runner CommandRunner
	logger logging.Logger
}

// NewADB creates an adb bridge
func NewADB(cfg ADBConfig) *ADB {
	a := &ADB{
		path:   cfg.Path,
		debug:  cfg.Debug,
		runner: cfg.Runner,
		logger: cfg.Logger,
	}
	if a.path == "" {
		a.path = "adb"
	}
	if a.runner == nil {
		a.runner = ExecRunner{}
	}
	if a.logger == nil {
		a.logger = logging.NewNullLogger()
	}
	return a
}

func (a *ADB) run(ctx context.Context, args ...string) ([]byte, []byte, error) {
	if a.debug {
		a.logger.Debug(ctx, "adb command", logging.Fields{"cmd": a.path + " " + strings.Join(args, " ")})
	}
	return a.runner.Run(ctx, a.path, args...)
}

// ListFiles runs stat over every entry of remoteDir on the device
func (a *ADB) ListFiles(ctx context.Context, remoteDir string, mode models.ListMode) ([]RemoteEntry, error) {
	var format string
	switch mode {
	case models.ListWithSize:
		format = "'%s|%n'"
	case models.ListWithTimestamp:
		format = "'%Y|%s|%n'"
	default:
		return nil, fmt.Errorf("unsupported list mode %q", mode)
	}

	dir := strings.TrimRight(remoteDir, "/")
	if dir == "" {
		dir = "/"
	}

	stdout, _, err := a.run(ctx, "shell", "cd", shellQuote(dir), "&&", "stat", "-c", format, "*")
	if err != nil {
		return nil, err
	}

	return parseStatOutput(string(stdout), mode), nil
}

// Pull copies remotePath to localPath, preserving the timestamp
func (a *ADB) Pull(ctx context.Context, remotePath, localPath string) error {
	_, _, err := a.run(ctx, "pull", "-a", remotePath, localPath)
	return err
}

// Delete removes every path in one rm call
func (a *ADB) Delete(ctx context.Context, remotePaths []string) error {
	if len(remotePaths) == 0 {
		return nil
	}
	args := make([]string, 0, len(remotePaths)+2)
	args = append(args, "shell", "rm")
	for _, p := range remotePaths {
		args = append(args, shellQuote(p))
	}
	_, _, err := a.run(ctx, args...)
	return err
}

// TriggerMediaRescan asks the media provider to rescan external storage
func (a *ADB) TriggerMediaRescan(ctx context.Context) {
	_, _, err := a.run(ctx,
		"shell", "content", "call",
		"--uri", "content://media",
		"--method", "scan_volume",
		"--arg", "external_primary",
	)
	if err != nil {
		a.logger.Warn(ctx, "media rescan failed", logging.Fields{"error": err.Error()})
	}
}

// State parses the output of adb devices
func (a *ADB) State(ctx context.Context) ConnState {
	stdout, _, err := a.run(ctx, "devices")
	if err != nil {
		return StateError
	}
	return parseDevices(string(stdout))
}

// Exists reports whether a path exists on the device
func (a *ADB) Exists(ctx context.Context, remotePath string) bool {
	_, _, err := a.run(ctx, "shell", "ls", "-d", shellQuote(remotePath))
	return err == nil
}

// parseStatOutput turns "size|name" or "mtime|size|name" lines into entries.
// Lines that don't parse are dropped.
func parseStatOutput(out string, mode models.ListMode) []RemoteEntry {
	var entries []RemoteEntry
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		value, name, ok := strings.Cut(line, "|")
		if !ok || name == "" {
			continue
		}
		value = strings.TrimSpace(value)

		entry := RemoteEntry{Name: name}
		switch mode {
		case models.ListWithSize:
			size, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				continue
			}
			entry.Size = size
			entry.HasSize = true
		case models.ListWithTimestamp:
			sizeField, rest, ok := strings.Cut(name, "|")
			if !ok || rest == "" {
				continue
			}
			entry.Name = rest
			if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
				entry.ModTime = time.Unix(secs, 0)
				entry.HasModTime = true
			}
			if size, err := strconv.ParseInt(strings.TrimSpace(sizeField), 10, 64); err == nil {
				entry.Size = size
				entry.HasSize = true
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseDevices(out string) ConnState {
	state := StateNoDevice
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || strings.HasPrefix(line, "List of devices") {
			continue
		}
		switch fields[1] {
		case "device":
			return StateConnected
		case "unauthorized":
			state = StateUnauthorized
		case "offline":
			if state != StateUnauthorized {
				state = StateOffline
			}
		}
	}
	return state
}

// shellQuote quotes s for the device-side shell
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
