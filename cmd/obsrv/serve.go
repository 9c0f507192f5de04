package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/obsrv-dev/obsrv/internal/config"
	oerrors "github.com/obsrv-dev/obsrv/internal/errors"
	"github.com/obsrv-dev/obsrv/pkg/describe"
	"github.com/obsrv-dev/obsrv/pkg/host"
	"github.com/obsrv-dev/obsrv/pkg/obsrv"
	"github.com/obsrv-dev/obsrv/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		dir     string
		file    string
		address string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live store over HTTP",
		Long: `Serve a store over HTTP with websocket push.

Settings come from obsrv.json in --config. Without a config file the
defaults are used and --file names the description.

Examples:
  obsrv serve
  obsrv serve --config ./deploy
  obsrv serve --file store.hcl --addr 0.0.0.0:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(dir, file)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&dir, "config", "c", ".", "Directory containing obsrv.json")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Description file (overrides obsrv.json)")
	cmd.Flags().StringVarP(&address, "addr", "a", "", "Listen address (overrides obsrv.json)")

	return cmd
}

// loadServeConfig reads obsrv.json from dir. A missing file is accepted
// when the description is given on the command line.
func loadServeConfig(dir, file string) (*config.Config, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		if file == "" || !isNotFound(err) {
			return nil, err
		}
		cfg = config.New()
	}
	if file != "" {
		// --file is relative to the working directory, not the config.
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, err
		}
		cfg.Description = abs
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, oerrors.New("O302"))
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := cfg.Logger(cmd.ErrOrStderr())

	data, err := describe.LoadFile(cfg.DescriptionPath())
	if err != nil {
		return err
	}

	hostConfig := host.Config{
		Address:     cfg.Server.Address,
		Indent:      cfg.JSON.Indent,
		MetricsPath: cfg.Metrics.Path,
		Logger:      logger,
	}

	var observers []obsrv.Observer
	if cfg.Tracing.Enabled {
		observers = append(observers, telemetry.OpenTelemetry(
			telemetry.WithTracerName(cfg.Tracing.TracerName),
		))
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observers = append(observers, telemetry.Prometheus(
			telemetry.WithRegistry(reg),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
		))
		hostConfig.Gatherer = reg
	}

	h, err := host.New(obsrv.Description{Data: data}, hostConfig, obsrv.WithObserver(observers...))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	success(out, "Serving %s", cfg.DescriptionPath())
	info(out, "http://%s/store", cfg.Server.Address)
	if cfg.Metrics.Enabled {
		info(out, "http://%s%s", cfg.Server.Address, cfg.Metrics.Path)
	}

	return h.Run(ctx)
}
