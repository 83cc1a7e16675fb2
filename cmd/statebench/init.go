package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/decantr-dev/decantr/internal/config"
	"github.com/decantr-dev/decantr/internal/errors"
)

func initCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default statebench.yaml",
		Long: `Write the default configuration to the path given by --config.

Examples:
  statebench init
  statebench init --config=bench/statebench.yaml --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return errors.Newf(errors.CategoryCLI, "%s already exists", a.configPath).
					WithSuggestion("Pass --force to overwrite it")
			}
			if err := config.New().SaveTo(a.configPath); err != nil {
				return err
			}
			success("Wrote %s", a.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}
