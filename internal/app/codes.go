package app

import (
	"github.com/spf13/cobra"
)

func NewCodesCmd(mgr Manager) *cobra.Command {
	outputVal := formatValue(FormatText)

	cmd := &cobra.Command{
		Use:   "codes",
		Short: "List the issue codes",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return mgr.Codes(string(outputVal))
		},
	}
	cmd.Flags().VarP(&outputVal, "output", "o", "Output format (text, json)")

	return cmd
}
