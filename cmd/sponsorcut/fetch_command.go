package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"sponsorcut/internal/config"
	"sponsorcut/internal/logging"
	"sponsorcut/internal/notifications"
	"sponsorcut/internal/pipeline"
	"sponsorcut/internal/preflight"
	"sponsorcut/internal/report"
	"sponsorcut/internal/services"
	"sponsorcut/internal/staging"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Download one video and remove its sponsor segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			req, err := flags.request(cmd, cfg, ctx.interactive(cmd))
			if err != nil {
				return err
			}
			req.Locator = args[0]

			run, err := ctx.prepareRun(cmd, cfg)
			if err != nil {
				return err
			}
			defer run.close()

			outcome, err := run.orchestrator.Run(run.ctx, req)
			run.observer.Close()
			run.formatter.Println(run.formatter.Outcome(outcome)...)

			notifier := notifications.NewService(cfg)
			notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(run.ctx), 15*time.Second)
			defer cancel()
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					if notifyErr := notifier.NotifyError(notifyCtx, err, outcome.Locator); notifyErr != nil {
						run.logger.Debug("error notification failed", logging.Error(notifyErr))
					}
				}
				return errors.Join(errReported, err)
			}
			removed := time.Duration(outcome.Removed() * float64(time.Second))
			if notifyErr := notifier.NotifyItemCompleted(notifyCtx, outcome.Title, outcome.OutputPath, removed); notifyErr != nil {
				run.logger.Debug("completion notification failed", logging.Error(notifyErr))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// runSession bundles what fetch and batch share for one invocation.
type runSession struct {
	ctx          context.Context
	stop         context.CancelFunc
	logger       *slog.Logger
	formatter    *report.Formatter
	observer     *report.ProgressObserver
	orchestrator *pipeline.Orchestrator
}

func (s *runSession) close() {
	s.observer.Close()
	s.stop()
}

// prepareRun runs preflight checks, sweeps stale workspaces, and wires the
// orchestrator to a progress observer on the command's output.
func (c *commandContext) prepareRun(cmd *cobra.Command, cfg *config.Config) (*runSession, error) {
	logger, err := c.ensureLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	runCtx, stop := c.runContext(cmd)

	if err := preflight.Err(preflight.RunAll(runCtx, cfg)); err != nil {
		stop()
		return nil, services.Wrap(services.ErrConfiguration, "preflight", "check environment", "environment not ready", err)
	}

	maxAge := time.Duration(cfg.Download.StaleTempHours) * time.Hour
	swept := staging.CleanStale(runCtx, cfg.Paths.TempDir, maxAge, logger)
	if len(swept.Removed) > 0 {
		logger.Info("removed stale workspace files",
			logging.Int("count", len(swept.Removed)),
			logging.String(logging.FieldEventType, "stale_cleanup"),
		)
	}

	formatter := c.formatter(cmd)
	observer := report.NewProgressObserver(formatter)
	orchestrator, err := pipeline.New(cfg, pipeline.Dependencies{
		Source:   c.newSource(cfg),
		Observer: observer,
		Logger:   logger,
	})
	if err != nil {
		stop()
		return nil, err
	}
	return &runSession{
		ctx:          runCtx,
		stop:         stop,
		logger:       logger,
		formatter:    formatter,
		observer:     observer,
		orchestrator: orchestrator,
	}, nil
}
