package main

import (
	"fmt"
	"os"

	"github.com/iwvelando/admin-cost/internal/cli"
	"github.com/iwvelando/admin-cost/internal/estimate"
	"github.com/iwvelando/admin-cost/internal/session"
	"github.com/iwvelando/admin-cost/pkg/format"
	"github.com/iwvelando/admin-cost/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func wizardCmd(opts *options) *cobra.Command {
	var (
		sites    []string
		savePath string
	)

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Enter a run interactively, one site at a time",
		Long: `Ask for the project parameters, then for each site whether a previous
study exists and its reductions, and show the results. Sites come from
--site, then from the run file, then the default sites.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := opts.loadRunFile(cmd, true)
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

			formatter, err := format.NewFormatter(conf.Output.Locale, conf.Output.CurrencySymbol)
			if err != nil {
				return err
			}

			if len(sites) == 0 {
				sites = conf.SiteNames()
			}
			s := session.New(sites, estimate.NewCalculator(nil), logger)

			wizard := cli.NewWizard(cmd.InOrStdin(), cmd.OutOrStdout(), formatter, logger)
			inputs, err := wizard.Run(cmd.Context(), s)
			if err != nil {
				logger.Error("wizard stopped",
					zap.String("op", "main.wizard"),
					zap.String("run", s.ID()),
					zap.Error(err),
				)
				return err
			}

			report := output.NewReport(s, inputs, formatter)
			if opts.outputFormat != "" {
				outputFormat, err := opts.resolveOutputFormat("")
				if err != nil {
					return err
				}
				if err := output.Write(cmd.OutOrStdout(), outputFormat, report); err != nil {
					return err
				}
			}

			if savePath == "" {
				return nil
			}
			file, err := os.Create(savePath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", savePath, err)
			}
			if err := output.YAMLFormat(file, report); err != nil {
				_ = file.Close()
				return fmt.Errorf("failed to write %s: %w", savePath, err)
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Run saved to "+savePath))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&sites, "site", nil, "site to estimate, repeatable (overrides the run file)")
	cmd.Flags().StringVar(&savePath, "save", "", "write the run and its results to this YAML file")
	return cmd
}
