package app

import (
	"github.com/spf13/cobra"
)

func NewCheckSchemaCmd(mgr Manager) *cobra.Command {
	outputVal := formatValue(FormatText)

	cmd := &cobra.Command{
		Use:   "check-schema <schema>",
		Short: "Check that a schema compiles",
		Args:  cobra.ExactArgs(1),
		Example: `
jsv check-schema person.schema.json
jsv check-schema person.schema.yaml -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mgr.CheckSchema(cmd.Context(), args[0], string(outputVal))
		},
	}
	cmd.Flags().VarP(&outputVal, "output", "o", "Output format (text, json)")

	return cmd
}
