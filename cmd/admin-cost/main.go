package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/iwvelando/admin-cost/internal/config"
	"github.com/iwvelando/admin-cost/internal/logging"
	"github.com/iwvelando/admin-cost/pkg/constants"
	"github.com/iwvelando/admin-cost/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type options struct {
	configPath   string
	envFile      string
	logLevel     string
	outputFormat string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "admin-cost",
		Short: "Estimate the administrative fees of a public works project",
		Long: `admin-cost prices the execution studies, owner assistance and works
monitoring of a project from the regulatory fee schedule, site by site.

Examples:
  admin-cost estimate --config config.yaml
  admin-cost estimate --output-format csv run.yaml
  admin-cost wizard --save run.yaml
  admin-cost serve --address :8080
  admin-cost rates`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.LoadDotEnv(opts.envFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to the run file")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", constants.DefaultEnvFile, "env file loaded before the configuration, if present")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json, yaml")

	rootCmd.AddCommand(estimateCmd(opts))
	rootCmd.AddCommand(wizardCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(ratesCmd(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveOutputFormat picks the CLI override, then the configured format,
// then pretty.
func (o *options) resolveOutputFormat(configured string) (string, error) {
	outputFormat := configured
	if o.outputFormat != "" {
		outputFormat = o.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return "", err
	}
	return outputFormat, nil
}

// loadRunFile loads the run file. When the default file is missing and the
// caller allows it, an empty run is returned instead.
func (o *options) loadRunFile(cmd *cobra.Command, allowMissing bool) (*config.Configuration, error) {
	if allowMissing && !cmd.Flags().Changed("config") {
		if _, err := os.Stat(o.configPath); errors.Is(err, os.ErrNotExist) {
			return config.LoadConfigurationFromReader(strings.NewReader(""))
		}
	}
	conf, err := config.LoadConfiguration(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}
	return conf, nil
}

func (o *options) newLogger(loggingConfig config.LoggingConfig) (*zap.Logger, error) {
	logger, err := logging.New(loggingConfig, o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "admin-cost version %s\n", version)
		},
	}
}
