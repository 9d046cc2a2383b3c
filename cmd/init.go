package cmd

import (
	"github.com/spf13/cobra"

	"github.com/palmguru/palmguru/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize palmguru configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose a vision model provider and generates a .palmguru.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
