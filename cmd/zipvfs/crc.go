package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func newCRCCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "crc ARCHIVE",
		Short: "Print the CRC-32 of every file in an archive.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.handler(args[0]).CRCTable()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range slices.Sorted(maps.Keys(table)) {
				fmt.Fprintf(out, "%08x  %s\n", table[p], p)
			}
			return nil
		},
	}
}
