package main

import (
	"github.com/iwvelando/admin-cost/internal/rates"
	"github.com/iwvelando/admin-cost/pkg/output"
	"github.com/spf13/cobra"
)

func ratesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Print the fee schedule",
		Long:  "Print the study and monitoring rates per category and cost bracket (millions). A dash marks a combination with no rate.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outputFormat, err := opts.resolveOutputFormat("")
			if err != nil {
				return err
			}
			return output.RatesFormat(cmd.OutOrStdout(), outputFormat, rates.Default())
		},
	}
}
