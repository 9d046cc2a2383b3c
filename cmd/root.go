package cmd

import (
	"github.com/spf13/cobra"

	"github.com/palmguru/palmguru/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "palmguru",
	Short: "AI palm reading from a camera or an uploaded photo",
	Long: `PalmGuru takes a photo of your palm, from a camera or an image file,
asks a vision model for a palmistry reading, and renders the result in
your browser or terminal. Readings are for entertainment only.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetLevel("debug")
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".palmguru.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
