package cmd

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/loadstone/loadstone/internal/logger"
)

// Version info set via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
)

var (
	verbose        bool
	dataDir        string
	masterlistPath string
	userlistPath   string
	gameVersion    string
)

var rootCmd = &cobra.Command{
	Use:     "loadstone",
	Short:   "Load order optimisation for modded RPGs",
	Version: version + " (" + commit + ")",
	Long: `loadstone derives a correct plugin load order from community metadata.

It merges the masterlist with your own userlist, evaluates each entry's
conditions against the game's data directory, and sorts the installed
plugins into a deterministic order.

Quick start:
  loadstone update https://example.com/masterlist.git v0.13   Fetch the masterlist
  loadstone sort --manifest plugins.yaml                      Compute a load order`,
}

func Execute() {
	defer logger.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getLogger returns the shared logger instance.
func getLogger() *log.Logger {
	if logger.Log == nil {
		logger.Init(verbose)
	}
	return logger.Log
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logger.Init(verbose)
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".", "Path to the game's data directory")
	rootCmd.PersistentFlags().StringVar(&masterlistPath, "masterlist", "masterlist.yaml", "Path to the masterlist file")
	rootCmd.PersistentFlags().StringVar(&userlistPath, "userlist", "", "Path to the userlist file (optional)")
	rootCmd.PersistentFlags().StringVar(&gameVersion, "game-version", "", "Version of the game executable, compared by version(\"\", ...) conditions")
}
