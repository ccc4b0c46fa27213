package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/NetPo4ki/go-watcher/internal/config"
	"github.com/NetPo4ki/go-watcher/internal/logging"
	"github.com/NetPo4ki/go-watcher/internal/report"
	"github.com/NetPo4ki/go-watcher/internal/scenario"
	"github.com/NetPo4ki/go-watcher/observe/prom"
	"github.com/NetPo4ki/go-watcher/watcher"
)

// errScenarioFailed is returned when at least one scenario missed its plan.
var errScenarioFailed = errors.New("scenario failed")

// newLogger is a variable so tests can capture log output.
var newLogger = logging.New

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "watchdemo",
		Short: "Run concurrent workloads under a watcher and report their outcomes",
		Long: `watchdemo submits demo workloads to a watcher.Watcher, stops it and
checks that every work item delivered exactly one outcome.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./watchdemo.yaml or $HOME/.watchdemo/watchdemo.yaml)")
	cmd.PersistentFlags().Bool("dev", false, "human-friendly debug logging")
	bindFlag(v, "log.development", cmd.PersistentFlags().Lookup("dev"))

	cmd.AddCommand(newRunCmd(v, &cfgFile))
	cmd.AddCommand(newListCmd())
	return cmd
}

func newRunCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one scenario or all of them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, *cfgFile)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}
	flags := cmd.Flags()
	flags.String("scenario", "all", "scenario to run: single, mixed, pingpong, pipeline or all")
	flags.IntP("iterations", "n", 5, "work items (or rounds) per scenario")
	flags.Duration("stop-timeout", 0, "cancel outstanding work if Stop takes longer (0 waits)")
	flags.StringP("output", "o", "table", "output format (table, json, yaml)")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("metrics-addr", "", "serve /metrics on this address while running")

	bindFlag(v, "run.scenario", flags.Lookup("scenario"))
	bindFlag(v, "run.iterations", flags.Lookup("iterations"))
	bindFlag(v, "run.stop_timeout", flags.Lookup("stop-timeout"))
	bindFlag(v, "output.format", flags.Lookup("output"))
	bindFlag(v, "output.no_color", flags.Lookup("no-color"))
	bindFlag(v, "metrics.addr", flags.Lookup("metrics-addr"))
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range scenario.Names() {
				sc, err := scenario.Lookup(name)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", sc.Name, sc.Description); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func run(cmd *cobra.Command, cfg config.Config) error {
	ctx := cmd.Context()
	logger, err := newLogger(cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	if cfg.Metrics.Addr != "" {
		srv, err := startMetricsServer(cfg.Metrics.Addr, reg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := srv.Close(); cerr != nil {
				logger.Warn("metrics server shutdown", zap.Error(cerr))
			}
		}()
	}

	scenarios, err := scenario.Resolve(cfg.Run.Scenario)
	if err != nil {
		return err
	}
	runner := scenario.Runner{
		Iterations:  cfg.Run.Iterations,
		StopTimeout: cfg.Run.StopTimeout,
		Logger:      logger,
		Observer: func(name string) (watcher.Observer, error) {
			return prom.New(reg, name)
		},
	}
	reports, runErr := runner.RunAll(ctx, scenarios)

	failed := 0
	for _, r := range reports {
		if !r.Passed {
			failed++
		}
	}
	formatter := report.NewFormatter(report.Format(cfg.Output.Format),
		report.WithNoColor(cfg.Output.NoColor),
		report.WithWide(failed > 0),
	)
	if err := formatter.FormatReports(cmd.OutOrStdout(), reports); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errScenarioFailed, failed, len(reports))
	}
	return nil
}

// bindFlag only fails for a nil flag, which is a programming error.
func bindFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	cobra.CheckErr(v.BindPFlag(key, flag))
}
