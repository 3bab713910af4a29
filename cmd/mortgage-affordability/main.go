package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iwvelando/mortgage-affordability/internal/cache"
	"github.com/iwvelando/mortgage-affordability/internal/calculator"
	"github.com/iwvelando/mortgage-affordability/internal/config"
	"github.com/iwvelando/mortgage-affordability/internal/tables"
	"github.com/iwvelando/mortgage-affordability/pkg/constants"
	"github.com/iwvelando/mortgage-affordability/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

type globalFlags struct {
	configPath   string
	logLevel     string
	outputFormat string
}

// environment is everything a command needs once the configuration is loaded.
type environment struct {
	conf         *config.Configuration
	logger       *zap.Logger
	svc          *calculator.Service
	outputFormat string
	closeCache   func()
}

func (e *environment) close() {
	if e.closeCache != nil {
		e.closeCache()
	}
	_ = e.logger.Sync()
}

// loadConfiguration reads the configuration file. A missing default file
// falls back to the built-in defaults; an explicitly named one must exist.
func loadConfiguration(path string, explicit bool) (*config.Configuration, bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return config.Default(), false, nil
		}
		return nil, false, fmt.Errorf("failed to load configuration at %s: %w", path, err)
	}
	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load configuration at %s: %w", path, err)
	}
	return conf, true, nil
}

func setup(cmd *cobra.Command, flags *globalFlags) (*environment, error) {
	conf, fromFile, err := loadConfiguration(flags.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return nil, err
	}

	logger, err := initializeLogger(conf.Logging, flags.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if !fromFile {
		logger.Info("configuration file not found, using defaults",
			zap.String("op", "main"),
			zap.String("path", flags.configPath),
			zap.String("example", constants.ExampleConfigFile),
		)
	}
	logger.Debug("configuration loaded",
		zap.String("op", "main"),
		zap.Int("earners", len(conf.Household.Incomes)),
		zap.Float64("grossIncome", conf.Household.GrossIncome()),
		zap.Float64("interestRate", conf.Mortgage.InterestRate),
		zap.Int("termYears", conf.Mortgage.TermYears),
	)

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if flags.outputFormat != "" {
		outputFormat = flags.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		_ = logger.Sync()
		return nil, err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	repo, err := cache.New(cmd.Context(), conf.Cache.ToCacheOptions(), logger)
	if err != nil {
		// The calculations do not depend on the cache.
		logger.Warn("cache unavailable, continuing without memoization",
			zap.String("op", "main"),
			zap.String("backend", conf.Cache.Backend),
			zap.Error(err),
		)
		repo = cache.Nop{}
	}

	env := &environment{
		conf:         conf,
		logger:       logger,
		outputFormat: outputFormat,
		svc: calculator.NewService(logger, tables.NewStore(logger),
			calculator.WithCache(repo),
			calculator.WithTablePaths(conf.Tables.FinancingBurden, conf.Tables.EnergyLabels),
		),
	}
	if closer, ok := repo.(io.Closer); ok {
		env.closeCache = func() {
			if err := closer.Close(); err != nil {
				logger.Warn("failed to close cache",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}
	}
	return env, nil
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "mortgage-affordability",
		Short:         "Mortgage affordability calculator",
		Long:          "Determines the maximum mortgage for a household, the monthly payments, the amortization schedule and the mortgage a monthly budget affords.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	root.AddCommand(
		affordabilityCmd(flags),
		scheduleCmd(flags),
		budgetCmd(flags),
		compareCmd(flags),
		labelsCmd(flags),
		exportTablesCmd(flags),
		serveCmd(flags),
		versionCmd(),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": %q}\n", err.Error())
		os.Exit(1)
	}
}
