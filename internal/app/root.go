package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/antoniopresto/wasm-validator/internal/config"
	"github.com/antoniopresto/wasm-validator/internal/fs"
	"github.com/antoniopresto/wasm-validator/internal/validator"
)

// Version is the current version of jsv, set at build time.
var Version = "dev"

const InitCmdName = "init"

var LongDescription = `
jsv validates JSON and YAML documents against a JSON Schema and reports every
violation with a JSON Pointer path, a readable message and a stable code.
Messages can be masked so that values from the documents never appear in them.
`

// NewRootCmd creates the root command and wires up dependencies.
func NewRootCmd(lazy *LazyManager, ll *slog.LevelVar, stdout, stderr io.Writer, env fs.EnvProvider) *cobra.Command {
	var debug bool
	var noColour bool
	configPath := pathValue("")

	rootCmd := &cobra.Command{
		Use:           "jsv",
		Short:         "Validate documents against JSON Schemas",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Long:          LongDescription,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if debug {
				ll.Set(slog.LevelDebug)
			}
			// Skip initialization for help, completion and init commands
			if cmd.Name() == "help" || isCompletionCommand(cmd) || cmd.Name() == InitCmdName {
				return nil
			}
			// Skip if already initialised (e.g., in tests)
			if lazy.HasInner() {
				return nil
			}

			workDir, err := os.Getwd()
			if err != nil {
				return err
			}
			compiler, err := validator.NewSanthoshCompiler(validator.DefaultOptions())
			if err != nil {
				return err
			}
			cfg, err := config.New(string(configPath), env, workDir, compiler)
			if err != nil {
				return fmt.Errorf("configuration failed: %w", err)
			}

			logDir := workDir
			if cfg.Path != "" {
				logDir = filepath.Dir(cfg.Path)
			}
			logger, closer, err := setupLogger(stderr, ll, env, logDir)
			if err != nil {
				logger.Warn("logging to file disabled", "error", err)
			}
			lazy.closer = closer
			logger.Debug("configuration loaded", "path", cfg.Path)

			mgr := NewCLIManager(logger, cfg, fs.NewPathResolver())
			mgr.SetOutput(stdout)
			lazy.SetInner(mgr)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().VarP(&configPath, "config", "f",
		fmt.Sprintf("path to the configuration file (default: $%s, then ./%s)", config.EnvConfigPath, config.ConfigFile))
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	rootCmd.PersistentFlags().BoolVarP(&noColour, "nocolour", "c", false, "Disable colour in output")
	// Support alternate spellings
	rootCmd.PersistentFlags().BoolVar(&noColour, "nocolor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColor", false, "")
	rootCmd.PersistentFlags().BoolVar(&noColour, "noColour", false, "")
	_ = rootCmd.PersistentFlags().MarkHidden("nocolor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColor")
	_ = rootCmd.PersistentFlags().MarkHidden("noColour")

	// Subcommands
	rootCmd.AddCommand(NewInitCmd(fs.NewPathResolver()))
	rootCmd.AddCommand(NewValidateCmd(lazy))
	rootCmd.AddCommand(NewCheckSchemaCmd(lazy))
	rootCmd.AddCommand(NewCodesCmd(lazy))
	rootCmd.AddCommand(NewServeCmd(lazy))

	return rootCmd
}

// isCompletionCommand returns true if the command or any of its parents is the "completion" command.
func isCompletionCommand(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}
