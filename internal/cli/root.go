package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "latchkey",
	Short: "Door-side tracker for easily forgotten items",
	Long:  "Latchkey correlates beacon sightings with motion at the front door and warns about items about to be left behind. Single Go binary.",
}

var configPath string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.latchkey/config.toml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(logCmd)
}
