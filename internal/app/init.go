package app

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/antoniopresto/wasm-validator/internal/config"
	"github.com/antoniopresto/wasm-validator/internal/fs"
)

// NewInitCmd returns a command that writes a default configuration file.
func NewInitCmd(pathResolver fs.PathResolver) *cobra.Command {
	cmd := &cobra.Command{
		Use:   InitCmdName + " [dirpath]",
		Short: "Create a default configuration file",
		Long:  `Create the directory if needed and write a commented ` + config.ConfigFile + ` with the default settings.`,
		Args:  cobra.MaximumNArgs(1),
		Example: `
jsv init
jsv init ./contracts
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirpath := "."
			if len(args) > 0 {
				dirpath = args[0]
			}

			if err := os.MkdirAll(dirpath, 0o750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

			configPath := filepath.Join(dirpath, config.ConfigFile)
			if _, err := os.Stat(configPath); err == nil {
				return &ConfigExistsError{Path: configPath}
			}

			if err := os.WriteFile(configPath, []byte(config.DefaultConfigContent), 0o600); err != nil {
				return fmt.Errorf("failed to write configuration file: %w", err)
			}

			cmd.Printf("Created %s\n", configPath)
			cmd.Printf("%s", envVarInstructions(pathResolver, configPath))
			return nil
		},
	}

	return cmd
}

func envVarInstructions(pathResolver fs.PathResolver, configPath string) string {
	return envVarInstructionsForOS(pathResolver, configPath, runtime.GOOS)
}

func envVarInstructionsForOS(pathResolver fs.PathResolver, configPath, goos string) string {
	abs, err := pathResolver.Abs(configPath)
	if err != nil {
		abs = configPath
	}

	envVar := config.EnvConfigPath
	instructions := "jsv reads it when run from this directory. To use it from anywhere, run:\n"

	switch goos {
	case "windows":
		instructions += fmt.Sprintf("\n  setx %s %q && set %q\n", envVar, abs, envVar+"="+abs)
	case "darwin":
		instructions += fmt.Sprintf("\n  echo 'export %s=%q' >> ~/.zshrc && source ~/.zshrc\n", envVar, abs)
	default:
		instructions += fmt.Sprintf("\n  echo 'export %s=%q' >> ~/.bashrc && source ~/.bashrc\n", envVar, abs)
	}

	return instructions
}
