package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sponsorcut/internal/batch"
	"sponsorcut/internal/notifications"
	"sponsorcut/internal/services"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	cmd := &cobra.Command{
		Use:   "batch <file|->",
		Short: "Process a list of videos one after another",
		Long: "Reads one URL per line. Blank lines and lines starting with # are ignored,\n" +
			"duplicates are processed once. Use - to read the list from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			urls, err := readBatchList(cmd, args[0])
			if err != nil {
				return err
			}
			if len(urls) == 0 {
				return services.Wrap(services.ErrValidation, "cli", "read list", "no URLs in "+args[0], nil)
			}
			// A list read from stdin has consumed it, so there is nothing to prompt on.
			template, err := flags.request(cmd, cfg, !readsStdin(args[0]) && ctx.interactive(cmd))
			if err != nil {
				return err
			}

			run, err := ctx.prepareRun(cmd, cfg)
			if err != nil {
				return err
			}
			defer run.close()

			runner := batch.NewRunner(run.orchestrator, notifications.NewService(cfg), run.logger)
			runner.OnItemStart = func(index, total int, locator string) {
				run.observer.Close()
				run.formatter.Println("", run.formatter.Palette().Heading(fmt.Sprintf("[%d/%d] %s", index, total, locator)))
			}
			runner.OnItemDone = func(item batch.Item) {
				run.observer.Close()
				run.formatter.Println(run.formatter.Outcome(item.Outcome)...)
			}
			result := runner.Run(run.ctx, urls, template)
			run.formatter.Println("")
			run.formatter.Println(run.formatter.BatchSummary(result)...)

			if err := run.ctx.Err(); err != nil {
				return err
			}
			if !result.OK() {
				return errors.Join(errReported, fmt.Errorf("%d of %d items failed", result.Failed, len(result.Items)))
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func readBatchList(cmd *cobra.Command, name string) ([]string, error) {
	var r io.Reader
	if readsStdin(name) {
		r = cmd.InOrStdin()
	} else {
		file, err := os.Open(name)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "cli", "read list", "open batch file", err)
		}
		defer file.Close()
		r = file
	}
	urls, err := batch.ParseList(r)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "cli", "read list", "parse batch file", err)
	}
	return urls, nil
}

func readsStdin(name string) bool {
	return strings.TrimSpace(name) == "-"
}
