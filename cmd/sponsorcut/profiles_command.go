package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sponsorcut/internal/encoding"
)

func newProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "profiles",
		Short:       "List encode profiles and audio formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, profilesTable().render())
			fmt.Fprintln(out, audioFormatsTable().render())
			return nil
		},
	}
}

func profilesTable() tableData {
	var rows [][]string
	for _, p := range encoding.VideoProfiles() {
		hardware := "no"
		if p.Hardware() {
			hardware = "yes"
		}
		rows = append(rows, []string{
			string(p),
			p.Label(),
			p.Encoder(),
			"." + p.Extension(),
			hardware,
			strings.Join(p.Aliases(), ", "),
		})
	}
	return tableData{
		title:   "Video profiles",
		headers: []string{"Profile", "Description", "Encoder", "Container", "GPU", "Aliases"},
		rows:    rows,
	}
}

func audioFormatsTable() tableData {
	var rows [][]string
	for _, f := range encoding.AudioFormats() {
		lossless := "no"
		if f.Lossless() {
			lossless = "yes"
		}
		rows = append(rows, []string{string(f), f.Encoder(), "." + f.Extension(), lossless})
	}
	return tableData{
		title:   "Audio formats (--mode audio)",
		headers: []string{"Format", "Encoder", "Container", "Lossless"},
		rows:    rows,
	}
}
