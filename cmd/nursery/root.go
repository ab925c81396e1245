package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"nurserycore/internal/blob"
	"nurserycore/internal/config"
	"nurserycore/internal/core"
	"nurserycore/internal/logging"
	"nurserycore/internal/savesystem"
)

// app carries what the subcommands share once configuration is loaded.
type app struct {
	stdout, stderr io.Writer

	cfgFile  string
	logLevel string

	cfg     *config.Config
	logger  *logging.Logger
	metrics core.MetricsRecorder
	expvar  *core.ExpvarMetricsRecorder
	prom    *core.PrometheusMetricsRecorder
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "nursery",
		Short: "Simulate a plant nursery inventory",
		Long: `nursery grows a composite inventory of plants, groups and decorated
items one simulated day at a time. Staff water and fertilize plants as the
supervisor notices trouble, customers buy matching stock, and the state can
be saved as a snapshot or exported as a save file.

Settings come from --config and NURSERY_* environment variables, for example
NURSERY_STORAGE_DRIVER=sqlite or NURSERY_BLOB_DRIVER=s3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml, toml or json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(newSimulateCmd(a), newRestoreCmd(a), newSpeciesCmd(a))
	return root
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load(ctx, config.LoadOptions{File: a.cfgFile})
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger, err := logging.New(level, a.stderr)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	switch cfg.Metrics.Backend {
	case config.MetricsExpvar:
		a.expvar = core.NewExpvarMetricsRecorder("")
		a.metrics = a.expvar
	case config.MetricsPrometheus:
		a.prom = core.NewPrometheusMetricsRecorder("")
		a.metrics = a.prom
	}
	return nil
}

// newService opens the configured snapshot store and returns a service
// bound to it, plus a func releasing the store.
func (a *app) newService(ctx context.Context) (*core.Service, func(), error) {
	store, err := core.OpenSnapshotStore(ctx, a.cfg.SnapshotStorage())
	if err != nil {
		return nil, nil, fmt.Errorf("open snapshot store: %w", err)
	}
	release := func() {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				a.logger.Warn("close snapshot store", "error", err)
			}
		}
	}
	opts := []core.ServiceOption{
		core.WithLogger(a.logger),
		core.WithSnapshotStore(store),
		core.WithSeason(a.cfg.Season()),
	}
	if a.metrics != nil {
		opts = append(opts, core.WithMetricsRecorder(a.metrics))
	}
	return core.NewService(opts...), release, nil
}

func (a *app) archive(ctx context.Context, overwrite bool) (*savesystem.Archive, error) {
	store, err := blob.Open(ctx, a.cfg.BlobStorage())
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	var opts []savesystem.Option
	if overwrite {
		opts = append(opts, savesystem.WithOverwrite())
	}
	return savesystem.New(store, opts...), nil
}
