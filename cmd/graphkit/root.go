package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/kbukum/graphkit/config"
	"github.com/kbukum/graphkit/logger"
	"github.com/kbukum/graphkit/observability"
	"github.com/kbukum/graphkit/version"
)

const serviceName = "graphkit"

type rootOptions struct {
	configFile string
	logLevel   string
	otel       bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Load, generate and export property graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default searches ./cmd/graphkit, ./config and .)")
	flags.StringVar(&opts.logLevel, "log-level", "", "override logging.level")
	flags.BoolVar(&opts.otel, "otel", false, "export traces and metrics over OTLP")

	cmd.AddCommand(
		newLoadCmd(opts),
		newSampleCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig resolves the configuration and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var cfg config.Config
	loadOpts := []config.LoaderOption{config.WithDefaults(config.Defaults)}
	if o.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(o.configFile))
	}
	if err := config.LoadConfig(serviceName, &cfg, loadOpts...); err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.otel {
		cfg.Observability.Enabled = true
	}
	if cfg.Version == "" {
		cfg.Version = version.Get().Short()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// app bundles what every command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	metrics  *observability.Metrics
	shutdown func(context.Context) error
}

func (o *rootOptions) setup(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(&cfg.Logging, cfg.Name, cmd.ErrOrStderr())

	rt := &app{cfg: cfg, log: log, shutdown: func(context.Context) error { return nil }}
	if cfg.Observability.Enabled {
		if err := rt.initExport(ctx); err != nil {
			return nil, err
		}
	}
	rt.metrics, err = observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (rt *app) initExport(ctx context.Context) error {
	obs := rt.cfg.Observability

	tc := observability.DefaultTracerConfig(rt.cfg.Name)
	tc.ServiceVersion, tc.Environment = rt.cfg.Version, rt.cfg.Environment
	tc.Endpoint, tc.Insecure, tc.SampleRate = obs.TracingEndpoint, obs.Insecure, obs.SampleRate
	tp, err := observability.InitTracer(ctx, &tc)
	if err != nil {
		return err
	}

	mc := observability.DefaultMeterConfig(rt.cfg.Name)
	mc.ServiceVersion, mc.Environment = rt.cfg.Version, rt.cfg.Environment
	mc.Endpoint, mc.Insecure = obs.MetricsEndpoint, obs.Insecure
	mp, err := observability.InitMeter(ctx, &mc)
	if err != nil {
		return multierr.Append(err, tp.Shutdown(ctx))
	}

	rt.shutdown = func(ctx context.Context) error {
		return multierr.Combine(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
	rt.log.Info("telemetry export enabled", logger.Fields(
		"tracing_endpoint", obs.TracingEndpoint,
		"metrics_endpoint", obs.MetricsEndpoint,
	))
	return nil
}

// close flushes telemetry. Shutdown failures are logged, not returned.
func (rt *app) close(ctx context.Context) {
	if err := rt.shutdown(ctx); err != nil {
		rt.log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
	}
}
