package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/zipvfs"
	"github.com/meigma/zipvfs/cache"
)

type app struct {
	forceOverlay  bool
	crcTimestamps bool
	maxSize       string
	verbose       bool

	logger *slog.Logger
	cache  *cache.Cache
	limit  zipvfs.SizeLimit
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "zipvfs",
		Short:         "Read entries of zip and jar archives.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.teardown()
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&a.forceOverlay, "force-overlay", false, "read every archive through the io/fs overlay strategy")
	flags.BoolVar(&a.crcTimestamps, "crc-timestamps", false, "use entry CRC-32 values as timestamps")
	flags.StringVar(&a.maxSize, "max-size", humanize.IBytes(zipvfs.DefaultMaxSize), "largest entry loaded into memory")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log cache activity to stderr")

	cmd.AddCommand(
		newListCommand(a),
		newCatCommand(a),
		newCRCCommand(a),
		newSumCommand(a),
	)
	return cmd
}

func (a *app) setup(stderr io.Writer) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	maxSize, err := humanize.ParseBytes(a.maxSize)
	if err != nil {
		return fmt.Errorf("invalid --max-size: %w", err)
	}
	a.limit = zipvfs.ExtensionLimits{Default: maxSize}

	a.cache, err = cache.New(
		cache.WithForceOverlay(a.forceOverlay),
		cache.WithCRCTimestamps(a.crcTimestamps),
		cache.WithLogger(a.logger),
	)
	return err
}

func (a *app) teardown() {
	if a.cache == nil {
		return
	}
	stats := a.cache.Stats()
	a.logger.Debug("handle cache stats",
		slog.Uint64("hits", stats.Hits),
		slog.Uint64("misses", stats.Misses),
		slog.Uint64("opens", stats.Opens),
		slog.Uint64("evictions", stats.Evictions))
	a.cache.Clear()
}

func (a *app) handler(path string) *zipvfs.Handler {
	return zipvfs.New(path, a.cache,
		zipvfs.WithSizeLimit(a.limit),
		zipvfs.WithLogger(a.logger),
	)
}
