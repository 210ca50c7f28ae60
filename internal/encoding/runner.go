package encoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"sponsorcut/internal/logging"
	"sponsorcut/internal/progress"
	"sponsorcut/internal/services"
)

const diagnosticTailLines = 20

// TranscodeError carries the exit status and stderr of a failed transcode.
type TranscodeError struct {
	ExitCode    int
	Diagnostics string
	Err         error
}

func (e *TranscodeError) Error() string {
	msg := fmt.Sprintf("transcoder exited with status %d", e.ExitCode)
	if last := lastLine(e.Diagnostics); last != "" {
		msg += ": " + last
	}
	return msg
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// Tail returns the last n diagnostic lines.
func (e *TranscodeError) Tail(n int) []string {
	lines := strings.Split(strings.TrimRight(e.Diagnostics, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// Runner executes transcoder commands.
type Runner struct {
	logger *slog.Logger
}

// NewRunner constructs a runner. A nil logger discards output.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logging.NewComponentLogger(logger, "transcoder")}
}

// Run launches cmd and feeds its stderr through monitor until the process
// exits. Non-progress stderr lines are kept as diagnostics. A non-zero exit
// returns an error marked services.ErrEncode wrapping a *TranscodeError.
func (r *Runner) Run(ctx context.Context, cmd Command, monitor *progress.Monitor) error {
	if monitor == nil {
		return services.Wrap(services.ErrEncode, "encoding", "run transcoder", "progress monitor is required", nil)
	}
	logger := logging.WithContext(ctx, r.logger)

	proc := exec.CommandContext(ctx, cmd.Binary, cmd.Args()...)
	stderr, err := proc.StderrPipe()
	if err != nil {
		return services.Wrap(services.ErrEncode, "encoding", "run transcoder", "attach stderr", err)
	}
	logger.Info("transcoder starting",
		logging.String(logging.FieldEventType, "transcode_start"),
		logging.String("command", cmd.String()),
		logging.String("output", cmd.Output()),
	)
	started := time.Now()
	if err := proc.Start(); err != nil {
		return services.Wrap(services.ErrEncode, "encoding", "run transcoder", "start "+cmd.Binary, err)
	}

	var diagnostics []string
	consumeErr := monitor.Consume(ctx, stderr, func(line string) {
		diagnostics = append(diagnostics, line)
		logger.Debug("transcoder output", logging.String("line", line))
	})
	if consumeErr != nil {
		// The process blocks on a full pipe if nobody reads it.
		_, _ = io.Copy(io.Discard, stderr)
	}
	exitErr := monitor.Finish(proc.Wait())

	if ctxErr := ctx.Err(); ctxErr != nil {
		return services.Wrap(services.ErrEncode, "encoding", "run transcoder", "interrupted", ctxErr)
	}
	if exitErr != nil {
		code := -1
		var ee *exec.ExitError
		if errors.As(exitErr, &ee) {
			code = ee.ExitCode()
		}
		terr := &TranscodeError{
			ExitCode:    code,
			Diagnostics: strings.Join(diagnostics, "\n"),
			Err:         exitErr,
		}
		logging.ErrorWithContext(logger, "transcoder failed", "transcode_failed",
			logging.Int("exit_code", code),
			logging.String("diagnostics_tail", strings.Join(terr.Tail(diagnosticTailLines), "\n")),
			logging.String(logging.FieldErrorHint, "inspect the transcoder diagnostics above"),
			logging.String(logging.FieldImpact, "no output file was produced"),
		)
		return services.Wrap(services.ErrEncode, "encoding", "run transcoder", fmt.Sprintf("exit status %d", code), terr)
	}
	if consumeErr != nil {
		logging.WarnWithContext(logger, "transcoder output was truncated", "transcode_output_truncated",
			logging.Error(consumeErr),
			logging.String(logging.FieldImpact, "progress stopped updating before the transcode finished"),
		)
	}
	logger.Info("transcoder finished",
		logging.String(logging.FieldEventType, "transcode_complete"),
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("progress_updates", monitor.Updates()),
		logging.Int("malformed_lines", monitor.Malformed()),
	)
	return nil
}

func lastLine(text string) string {
	text = strings.TrimRight(text, "\n")
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return strings.TrimSpace(text)
}
