package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sponsorcut/internal/filtergraph"
	"sponsorcut/internal/report"
	"sponsorcut/internal/segments"
	"sponsorcut/internal/source/youtube"
	"sponsorcut/internal/sponsorblock"
)

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	var categories []string
	cmd := &cobra.Command{
		Use:   "segments <url-or-id>",
		Short: "Show the SponsorBlock intervals that would be removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			videoID, err := youtube.VideoID(args[0])
			if err != nil {
				return err
			}
			requested, err := parseCategories(categories)
			if err != nil {
				return err
			}
			if len(requested) == 0 {
				requested = cfg.SponsorBlock.Categories
			}
			client, err := sponsorblock.New(sponsorblock.Config{
				BaseURL:    cfg.SponsorBlock.BaseURL,
				Categories: requested,
				Timeout:    time.Duration(cfg.SponsorBlock.RequestTimeout) * time.Second,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			runCtx, stop := ctx.runContext(cmd)
			defer stop()
			raw, err := client.Fetch(runCtx, videoID)
			if err != nil {
				return err
			}

			f := ctx.formatter(cmd)
			f.Println(f.StatusLine("Video", report.KindInfo, videoID))
			f.Println(f.StatusLine("Categories", report.KindInfo, segments.CategoryLabels(client.Categories())))
			if len(raw) == 0 {
				f.Println(f.StatusLine("Segments", report.KindOK, "none submitted"))
				return nil
			}
			merged := segments.Merge(raw)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, rawSegmentsTable(raw).render())
			fmt.Fprintln(out, mergedSegmentsTable(merged).render())
			f.Println(f.StatusLine("Removed", report.KindInfo, report.FormatSeconds(merged.TotalDuration())))
			if filter, ok := filtergraph.Build(merged); ok {
				f.Println(f.StatusLine("Video filter", report.KindInfo, filter.Video))
				f.Println(f.StatusLine("Audio filter", report.KindInfo, filter.Audio))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "Categories to query (comma separated)")
	return cmd
}

func rawSegmentsTable(raw []segments.SponsorSegment) tableData {
	rows := make([][]string, 0, len(raw))
	for i, seg := range raw {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			report.FormatSeconds(seg.Start),
			report.FormatSeconds(seg.End),
			report.FormatSeconds(seg.Duration()),
			segments.CategoryLabel(seg.Category),
			seg.UUID,
		})
	}
	return tableData{
		title:   "Submitted",
		headers: []string{"#", "Start", "End", "Length", "Category", "UUID"},
		rows:    rows,
		aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	}
}

func mergedSegmentsTable(merged segments.MergedSet) tableData {
	intervals := merged.Intervals()
	rows := make([][]string, 0, len(intervals))
	for i, interval := range intervals {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			report.FormatSeconds(interval.Start),
			report.FormatSeconds(interval.End),
			report.FormatSeconds(interval.Duration()),
			segments.CategoryLabels(interval.Categories),
		})
	}
	return tableData{
		title:   "Excluded",
		headers: []string{"#", "Start", "End", "Length", "Categories"},
		rows:    rows,
		aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
	}
}
