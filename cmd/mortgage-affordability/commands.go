package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"

	"github.com/iwvelando/mortgage-affordability/internal/calculator"
	"github.com/iwvelando/mortgage-affordability/internal/server"
	"github.com/iwvelando/mortgage-affordability/internal/tables"
	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// requestOverrides are per-command flags layered over the configuration.
type requestOverrides struct {
	principal float64
	budget    float64
	basis     string
	rates     []string
}

func (o requestOverrides) apply(req *calculator.Request) error {
	if o.principal > 0 {
		req.Principal = o.principal
	}
	if o.budget > 0 {
		req.Budget = o.budget
	}
	if o.basis != "" {
		req.BudgetBasis = o.basis
	}
	if len(o.rates) > 0 {
		scenarios, err := parseRateFlags(o.rates)
		if err != nil {
			return err
		}
		req.RateScenarios = scenarios
	}
	return nil
}

// parseRateFlags reads "label=percent" or bare "percent" values.
func parseRateFlags(values []string) ([]calculator.RateScenarioSpec, error) {
	scenarios := make([]calculator.RateScenarioSpec, 0, len(values))
	for _, value := range values {
		label, rateText, found := strings.Cut(value, "=")
		if !found {
			rateText = label
			label = ""
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rateText), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q: %w", value, err)
		}
		scenarios = append(scenarios, calculator.RateScenarioSpec{
			Label:        strings.TrimSpace(label),
			InterestRate: rate,
		})
	}
	return scenarios, nil
}

// runCalculation loads the environment, runs calc on the configured request
// and renders the result.
func runCalculation(cmd *cobra.Command, flags *globalFlags, overrides requestOverrides, opts output.Options,
	calc func(ctx context.Context, svc *calculator.Service, req calculator.Request) (interface{}, error)) error {
	env, err := setup(cmd, flags)
	if err != nil {
		return err
	}
	defer env.close()

	req := calculator.RequestFromConfig(env.conf)
	if err := overrides.apply(&req); err != nil {
		return err
	}

	result, err := calc(cmd.Context(), env.svc, req)
	if err != nil {
		env.logger.Error("calculation failed",
			zap.String("op", "main"),
			zap.String("command", cmd.Name()),
			zap.Error(err),
		)
		return err
	}
	return output.Render(cmd.OutOrStdout(), env.outputFormat, result, opts)
}

func affordabilityCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "affordability",
		Short: "Calculate the maximum mortgage for the household",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculation(cmd, flags, requestOverrides{}, output.Options{},
				func(ctx context.Context, svc *calculator.Service, req calculator.Request) (interface{}, error) {
					return svc.Affordability(ctx, req)
				})
		},
	}
}

func scheduleCmd(flags *globalFlags) *cobra.Command {
	var overrides requestOverrides
	var monthly bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the amortization schedule",
		Long:  "Prints the amortization schedule of the configured principal, or of the maximum mortgage when none is configured.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculation(cmd, flags, overrides, output.Options{Monthly: monthly},
				func(ctx context.Context, svc *calculator.Service, req calculator.Request) (interface{}, error) {
					return svc.Schedule(ctx, req)
				})
		},
	}
	cmd.Flags().Float64Var(&overrides.principal, "principal", 0, "principal override")
	cmd.Flags().BoolVar(&monthly, "monthly", false, "list every month instead of loan-year totals")
	return cmd
}

func budgetCmd(flags *globalFlags) *cobra.Command {
	var overrides requestOverrides

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Find the mortgage a monthly budget affords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculation(cmd, flags, overrides, output.Options{},
				func(ctx context.Context, svc *calculator.Service, req calculator.Request) (interface{}, error) {
					return svc.Budget(ctx, req)
				})
		},
	}
	cmd.Flags().Float64Var(&overrides.budget, "budget", 0, "monthly budget override")
	cmd.Flags().StringVar(&overrides.basis, "basis", "", "budget basis override: gross or net")
	return cmd
}

func compareCmd(flags *globalFlags) *cobra.Command {
	var overrides requestOverrides

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare interest rate scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculation(cmd, flags, overrides, output.Options{},
				func(ctx context.Context, svc *calculator.Service, req calculator.Request) (interface{}, error) {
					return svc.CompareRates(ctx, req)
				})
		},
	}
	cmd.Flags().Float64Var(&overrides.principal, "principal", 0, "principal override")
	cmd.Flags().StringArrayVar(&overrides.rates, "rate", nil, "rate scenario as label=percent, repeatable")
	return cmd
}

func labelsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the energy labels and their surplus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer env.close()

			labels, err := env.svc.Labels(cmd.Context())
			if err != nil {
				return err
			}
			return output.Render(cmd.OutOrStdout(), env.outputFormat, labels, output.Options{})
		},
	}
}

func exportTablesCmd(flags *globalFlags) *cobra.Command {
	var burdenOut, labelsOut string

	cmd := &cobra.Command{
		Use:   "export-tables",
		Short: "Write the reference tables to XLSX workbooks",
		Long:  "Writes the configured (or built-in) financing burden and energy label tables to XLSX workbooks that can be edited and loaded back.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer env.close()

			store := tables.NewStore(env.logger)
			if burdenOut != "" {
				table, err := store.FinancingBurden(env.conf.Tables.FinancingBurden)
				if err != nil {
					return err
				}
				if err := writeFile(burdenOut, func(f *os.File) error {
					return tables.WriteFinancingBurdenXLSX(f, table)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote financing burden table to %s\n", burdenOut)
			}
			if labelsOut != "" {
				table, err := store.EnergyLabels(env.conf.Tables.EnergyLabels)
				if err != nil {
					return err
				}
				if err := writeFile(labelsOut, func(f *os.File) error {
					return tables.WriteEnergyLabelsXLSX(f, table)
				}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote energy label table to %s\n", labelsOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&burdenOut, "financing-burden", "financing_burden.xlsx", "output path for the financing burden table, empty to skip")
	cmd.Flags().StringVar(&labelsOut, "energy-labels", "energy_labels.xlsx", "output path for the energy label table, empty to skip")
	return cmd
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var serverConfigPath, address, maxRequestSize string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverConf, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				serverConf.Address = address
			}
			if maxRequestSize != "" {
				size, err := server.ParseSize(maxRequestSize)
				if err != nil {
					return err
				}
				serverConf.SetRequestSizeBytes(size)
			}

			env, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer env.close()

			logger := env.logger
			if serverConf.Logging.Level != "" || serverConf.Logging.Format != "" || serverConf.Logging.OutputFile != "" {
				logger, err = initializeLogger(serverConf.Logging, flags.logLevel)
				if err != nil {
					return fmt.Errorf("failed to initialize server logger: %w", err)
				}
				defer func() {
					_ = logger.Sync()
				}()
			}

			srv := newHTTPServer(serverConf, logger, env.svc)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("starting server",
					zap.String("op", "main.serve"),
					zap.String("address", serverConf.Address),
					zap.Int64("maxRequestSize", serverConf.RequestSizeBytes()),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down server", zap.String("op", "main.serve"))
			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConf.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	cmd.Flags().StringVar(&maxRequestSize, "max-request-size", "", "request body limit override, e.g. 64K")
	return cmd
}

func newHTTPServer(conf *server.Config, logger *zap.Logger, svc *calculator.Service) *http.Server {
	return &http.Server{
		Addr:              conf.Address,
		Handler:           server.NewHandler(logger, svc, conf.RequestSizeBytes(), resolveVersion()),
		ReadHeaderTimeout: conf.ReadTimeout,
		ReadTimeout:       conf.ReadTimeout,
		WriteTimeout:      conf.WriteTimeout,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mortgage-affordability %s\n", resolveVersion())
		},
	}
}

func resolveVersion() string {
	if version != "dev" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return version
}
