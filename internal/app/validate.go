package app

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

func NewValidateCmd(mgr Manager) *cobra.Command {
	var verbose bool
	var watch bool
	var oneShot bool
	var workers int
	var changedSince string
	schemaPath := pathValue("")
	mask := optionalBool{}

	cmd := &cobra.Command{
		Use:   "validate -s <schema> [paths...]",
		Short: "Validate JSON and YAML documents against a schema",
		Long: `Validate every document named by paths against the schema. A directory
names every .json, .yaml and .yml file below it. With no paths, the current
directory is used. The exit status is non-zero when any document is invalid
or cannot be read.`,
		Example: `
jsv validate -s person.schema.json person.json
jsv validate -s person.schema.json ./people --mask-values -o json
jsv validate -s person.schema.yaml ./people -w
jsv validate -s person.schema.json ./people --changed-since main`,
	}

	cmd.Flags().VarP(&schemaPath, "schema", "s", "Schema to validate against (JSON or YAML)")
	_ = cmd.MarkFlagRequired("schema")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show valid documents too")
	outputVal := formatValue(FormatText)
	cmd.Flags().VarP(&outputVal, "output", "o", "Output format (text, json)")
	maskFlag := cmd.Flags().VarPF(&mask, "mask-values", "m", "Keep document values out of messages (overrides configuration)")
	maskFlag.NoOptDefVal = "true"
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Watch for changes and validate again")
	cmd.Flags().BoolVar(&oneShot, "one-shot", false, "Compile the schema again for every document")
	cmd.Flags().IntVarP(&workers, "jobs", "j", 0, "Documents validated in parallel (default: configuration, then one per CPU)")
	cmd.Flags().StringVar(&changedSince, "changed-since", "",
		"Only validate documents changed since this git revision, including uncommitted changes")
	cmd.MarkFlagsMutuallyExclusive("watch", "changed-since")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		targets := args
		if len(targets) == 0 {
			targets = []string{"."}
		}

		noColour, _ := cmd.Flags().GetBool("nocolour")
		opts := ValidateOptions{
			SchemaPath:   string(schemaPath),
			Targets:      targets,
			MaskValues:   mask.value,
			Format:       string(outputVal),
			Verbose:      verbose,
			UseColour:    !noColour,
			OneShot:      oneShot,
			Workers:      workers,
			ChangedSince: changedSince,
		}

		if watch {
			err := mgr.WatchValidation(cmd.Context(), opts, nil)
			if errors.Is(err, context.Canceled) {
				cmd.PrintErrln("Interrupted by user")
				return nil
			}
			return err
		}
		return mgr.ValidateDocuments(cmd.Context(), opts)
	}

	return cmd
}
