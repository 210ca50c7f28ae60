package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sponsorcut/internal/config"
	"sponsorcut/internal/deps"
	"sponsorcut/internal/encoding"
	"sponsorcut/internal/preflight"
	"sponsorcut/internal/report"
	"sponsorcut/internal/staging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var clean bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check binaries, encoders, directories and the temp workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			runCtx, stop := ctx.runContext(cmd)
			defer stop()
			f := ctx.formatter(cmd)

			depStatus := preflight.CheckSystemDeps(runCtx, cfg)
			f.Println(f.SectionHeader("Dependencies")...)
			f.Println(dependencyLines(f, depStatus)...)
			if ffmpegAvailable(depStatus) {
				if version, err := deps.Version(runCtx, cfg.FFmpegBinary()); err == nil {
					f.Println(f.StatusLine("Version", report.KindInfo, version))
				}
			}

			f.Println("")
			f.Println(f.SectionHeader("Encoders")...)
			f.Println(dependencyLines(f, deps.CheckEncoders(runCtx, cfg.FFmpegBinary(), encoding.Encoders()))...)

			f.Println("")
			f.Println(f.SectionHeader("Environment")...)
			checks := preflight.RunAll(runCtx, cfg)
			for _, check := range checks {
				kind := report.KindOK
				if !check.Passed {
					kind = report.KindError
				}
				f.Println(f.StatusLine(check.Name, kind, check.Detail))
			}

			f.Println("")
			f.Println(f.SectionHeader("Workspace")...)
			if clean {
				result := staging.CleanStale(runCtx, cfg.Paths.TempDir, staleAge(cfg), logger)
				f.Println(f.StatusLine("Cleaned", report.KindInfo, fmt.Sprintf("%d stale file(s)", len(result.Removed))))
				for _, failure := range result.Errors {
					f.Println(f.StatusLine("Cleanup", report.KindWarn, fmt.Sprintf("%s: %v", failure.Path, failure.Error)))
				}
			}
			artifacts, err := staging.ListArtifacts(cfg.Paths.TempDir)
			if err != nil {
				f.Println(f.StatusLine("Temp files", report.KindError, err.Error()))
			} else {
				f.Println(workspaceLine(f, artifacts, staleAge(cfg)))
			}

			if err := preflight.Err(checks); err != nil {
				return err
			}
			if missing := deps.Missing(depStatus); len(missing) > 0 {
				return fmt.Errorf("%s unavailable: %s", missing[0].Name, missing[0].Detail)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove stale workspace files first")
	return cmd
}

func dependencyLines(f *report.Formatter, statuses []deps.Status) []string {
	lines := make([]string, 0, len(statuses))
	for _, status := range statuses {
		switch {
		case status.Available && status.Path != "":
			lines = append(lines, f.StatusLine(status.Name, report.KindOK, status.Path))
		case status.Available:
			lines = append(lines, f.StatusLine(status.Name, report.KindOK, status.Description))
		case status.Optional:
			lines = append(lines, f.StatusLine(status.Name, report.KindWarn, status.Detail))
		default:
			lines = append(lines, f.StatusLine(status.Name, report.KindError, status.Detail))
		}
	}
	return lines
}

func ffmpegAvailable(statuses []deps.Status) bool {
	for _, status := range statuses {
		if status.Name == "FFmpeg" {
			return status.Available
		}
	}
	return false
}

func workspaceLine(f *report.Formatter, artifacts []staging.Artifact, maxAge time.Duration) string {
	if len(artifacts) == 0 {
		return f.StatusLine("Temp files", report.KindOK, "empty")
	}
	stale := 0
	cutoff := time.Now().Add(-maxAge)
	for _, a := range artifacts {
		if a.ModTime.Before(cutoff) {
			stale++
		}
	}
	message := fmt.Sprintf("%d file(s), %s", len(artifacts), humanize.IBytes(uint64(staging.TotalSize(artifacts))))
	if stale == 0 {
		return f.StatusLine("Temp files", report.KindInfo, message)
	}
	oldest := humanize.Time(artifacts[0].ModTime)
	return f.StatusLine("Temp files", report.KindWarn, fmt.Sprintf("%s, %d stale (oldest %s; run status --clean)", message, stale, oldest))
}

func staleAge(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Download.StaleTempHours) * time.Hour
}
