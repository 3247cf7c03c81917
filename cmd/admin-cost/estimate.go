package main

import (
	"fmt"

	"github.com/iwvelando/admin-cost/internal/batch"
	"github.com/iwvelando/admin-cost/internal/config"
	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/iwvelando/admin-cost/pkg/output"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func estimateCmd(opts *options) *cobra.Command {
	var showProgress bool

	cmd := &cobra.Command{
		Use:   "estimate [run-file]",
		Short: "Price every site of a run file",
		Long: `Price the project of a run file for each of its sites and print the
summary. The run file defaults to --config; "-" reads it from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadEstimateRun(cmd, opts, args)
			if err != nil {
				return err
			}

			logger, err := opts.newLogger(conf.Logging)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			outputFormat, err := opts.resolveOutputFormat(conf.Output.Format)
			if err != nil {
				logger.Error(err.Error(), zap.String("op", "main.estimate"))
				return err
			}

			var runOpts batch.Options
			if showProgress {
				var bar *progressbar.ProgressBar
				runOpts.OnSite = func(_, total int, _ string, _ estimate.Breakdown) {
					if bar == nil {
						bar = progressbar.NewOptions(total,
							progressbar.OptionSetWriter(cmd.ErrOrStderr()),
							progressbar.OptionSetDescription("Pricing sites"),
							progressbar.OptionShowCount(),
						)
					}
					_ = bar.Add(1)
				}
			}

			result, err := batch.Run(logger, conf, runOpts)
			if err != nil {
				logger.Error("failed to estimate run",
					zap.String("op", "main.estimate"),
					zap.Error(err),
				)
				return err
			}

			return output.Write(cmd.OutOrStdout(), outputFormat, result.Report())
		},
	}

	cmd.Flags().BoolVar(&showProgress, "progress", false, "show a progress bar on stderr")
	return cmd
}

func loadEstimateRun(cmd *cobra.Command, opts *options, args []string) (*config.Configuration, error) {
	if len(args) == 0 {
		return opts.loadRunFile(cmd, false)
	}
	if args[0] == "-" {
		return config.LoadConfigurationFromReader(cmd.InOrStdin())
	}
	conf, err := config.LoadConfiguration(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", args[0], err)
	}
	return conf, nil
}
