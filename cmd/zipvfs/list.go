package main

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls ARCHIVE",
		Aliases: []string{"list"},
		Short:   "List the entries of an archive.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.handler(args[0]).CreateEntriesMap()
			if err != nil {
				return err
			}

			type row struct {
				path  string
				isDir bool
				size  uint64
			}
			var rows []row
			for p, e := range m.All() {
				if p == "" {
					continue
				}
				rows = append(rows, row{path: p, isDir: e.IsDir, size: e.Size})
			}
			slices.SortFunc(rows, func(x, y row) int {
				switch {
				case x.path < y.path:
					return -1
				case x.path > y.path:
					return 1
				}
				return 0
			})

			out := cmd.OutOrStdout()
			for _, r := range rows {
				if r.isDir {
					fmt.Fprintf(out, "d %10s  %s/\n", "-", r.path)
					continue
				}
				fmt.Fprintf(out, "- %10s  %s\n", humanize.IBytes(r.size), r.path)
			}
			return nil
		},
	}
}
