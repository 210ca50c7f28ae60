package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sponsorcut/internal/config"
	"sponsorcut/internal/logging"
	"sponsorcut/internal/report"
	"sponsorcut/internal/services"
	"sponsorcut/internal/source"
	"sponsorcut/internal/source/youtube"
)

// errReported marks failures whose details were already printed.
var errReported = errors.New("failure reported")

type commandContext struct {
	configFlag string
	noColor    bool
	verbose    bool

	// newSource builds the metadata/stream collaborator. Tests replace it.
	newSource func(cfg *config.Config) source.Client
	// isInteractive reports whether stdin can answer prompts.
	isInteractive func(r io.Reader) bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{
		newSource: func(cfg *config.Config) source.Client {
			return youtube.NewClient(cfg.Download.PreferMP4)
		},
		isInteractive: interactiveInput,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger writes to <log_dir>/sponsorcut.log, and also to stderr with
// --verbose.
func (c *commandContext) ensureLogger(stderr io.Writer) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		var console io.Writer
		if c.verbose {
			console = stderr
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, console)
	})
	return c.logger, c.loggerErr
}

// runContext returns a context canceled on SIGINT/SIGTERM and stamped with a
// fresh correlation id.
func (c *commandContext) runContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return services.WithRequestID(ctx, uuid.NewString()), stop
}

func (c *commandContext) interactive(cmd *cobra.Command) bool {
	return c.isInteractive(cmd.InOrStdin())
}

func (c *commandContext) formatter(cmd *cobra.Command) *report.Formatter {
	return report.NewFormatter(cmd.OutOrStdout(), c.noColor)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
