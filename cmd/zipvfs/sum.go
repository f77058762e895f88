package main

import (
	_ "crypto/sha256" // registers the canonical digest algorithm
	"fmt"
	"runtime"
	"slices"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/zipvfs"
)

func newSumCommand(a *app) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "sum ARCHIVE [PATH...]",
		Short: "Print content digests of archive entries.",
		Long:  "Print the sha256 digest of each named entry, or of every file when no path is given.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := a.handler(args[0])
			paths := args[1:]
			if len(paths) == 0 {
				var err error
				if paths, err = filePaths(h); err != nil {
					return err
				}
			}

			digests, err := sumEntries(h, paths, jobs)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, p := range paths {
				fmt.Fprintf(out, "%s  %s\n", digests[i], p)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "entries digested concurrently")
	return cmd
}

func filePaths(h *zipvfs.Handler) ([]string, error) {
	m, err := h.CreateEntriesMap()
	if err != nil {
		return nil, err
	}
	var paths []string
	for p, e := range m.All() {
		if !e.IsDir {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	return paths, nil
}

// sumEntries digests paths concurrently. Results are in the order of paths.
func sumEntries(h *zipvfs.Handler, paths []string, jobs int) ([]digest.Digest, error) {
	digests := make([]digest.Digest, len(paths))
	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for i, p := range paths {
		g.Go(func() error {
			rc, err := h.OpenInputStream(p)
			if err != nil {
				return err
			}
			defer rc.Close()
			d, err := digest.Canonical.FromReader(rc)
			if err != nil {
				return fmt.Errorf("digest %s: %w", p, err)
			}
			digests[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return digests, nil
}
