package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/sdejongh/camharvest/pkg/config"
	"github.com/sdejongh/camharvest/pkg/device"
	"github.com/sdejongh/camharvest/pkg/logging"
	"github.com/sdejongh/camharvest/pkg/models"
)

// WatchFlags holds watch command flags
type WatchFlags struct {
	Schedule string
	Now      bool
}

var watchFlags WatchFlags

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Extract on a schedule whenever the phone is connected",
		Long: `Run an extraction on a cron schedule (six fields, seconds first, or a
descriptor such as "@every 10m"). A tick is skipped while the previous run is
still going or while no authorized device is connected. Stop with Ctrl+C.`,
		RunE: runWatch,
	}

	addSelectionFlags(cmd)
	cmd.Flags().BoolVar(&extractFlags.DeleteAfter, "delete-after", false, "delete each file from the phone once its local copy is verified")
	cmd.Flags().StringVar(&watchFlags.Schedule, "schedule", "", "cron expression (default: schedule.cron)")
	cmd.Flags().BoolVar(&watchFlags.Now, "now", false, "run once immediately before waiting for the schedule")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd.Context())

	s, err := newSession(func(cfg *config.Config) error {
		if watchFlags.Schedule != "" {
			cfg.Schedule.Cron = watchFlags.Schedule
		}
		// one line per event reads better in a long-running log
		cfg.Output.Progress = false
		return applyExtractFlags(cmd, cfg)
	})
	if err != nil {
		return err
	}
	defer s.Close()

	if s.cfg.Schedule.Cron == "" {
		return fmt.Errorf("no schedule configured (use --schedule or schedule.cron)")
	}

	dest, err := validateDestination(s.cfg.Extract.Destination, extractFlags.CreateDest)
	if err != nil {
		return err
	}
	s.cfg.Extract.Destination = dest

	clog := cronLogger{ctx: ctx, logger: s.logger}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	if _, err := c.AddFunc(s.cfg.Schedule.Cron, func() { watchTick(ctx, s) }); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	s.logger.Info(ctx, "Watching for device", logging.Fields{"schedule": s.cfg.Schedule.Cron, "dest": dest})
	if !s.cfg.Output.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching (%s), press Ctrl+C to stop\n", s.cfg.Schedule.Cron)
	}

	if watchFlags.Now {
		watchTick(ctx, s)
	}

	c.Start()
	<-ctx.Done()

	s.engine.CancelTransfer()
	<-c.Stop().Done()
	s.logger.Info(context.Background(), "Watch stopped", nil)
	return nil
}

// watchTick runs one extraction if the device is ready and nothing else is running
func watchTick(ctx context.Context, s *session) {
	if ctx.Err() != nil {
		return
	}

	if state := s.bridge.State(ctx); state != device.StateConnected {
		s.logger.Info(ctx, "Tick skipped, device not ready", logging.Fields{"state": string(state)})
		return
	}

	run, err := buildRunConfig(s.cfg)
	if err != nil {
		s.logger.Error(ctx, "Tick skipped", err, nil)
		return
	}

	events, err := s.engine.StartTransfer(ctx, run)
	if errors.Is(err, models.ErrPipelineBusy) {
		s.logger.Info(ctx, "Tick skipped, a run is still active", nil)
		return
	}
	if err != nil {
		s.logger.Error(ctx, "Tick failed to start", err, nil)
		return
	}

	done, err := s.render(fmt.Sprintf("Extracting %s -> %s", run.RemoteDir, run.LocalDir), events)
	if err != nil {
		s.logger.Error(ctx, "Tick output failed", err, nil)
		return
	}
	s.logger.Info(ctx, "Tick finished", logging.Fields{"run_id": run.ID, "status": string(done.Status)})
}

// cronLogger routes scheduler messages to the application logger
type cronLogger struct {
	ctx    context.Context
	logger logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(l.ctx, "cron: "+msg, kvFields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(l.ctx, "cron: "+msg, err, kvFields(keysAndValues))
}

func kvFields(keysAndValues []interface{}) logging.Fields {
	fields := logging.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
