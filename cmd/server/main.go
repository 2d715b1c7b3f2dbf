package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const configFileName = "md2xlsx-ui.config"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "md2xlsx-ui",
		Short: "Web front end for the Markdown to Excel converter",
		Long: `md2xlsx-ui serves the upload page of the Markdown to Excel converter.

Each browser tab gets a server-side session that validates dropped or picked
files, shows notifications and progress, and posts the chosen file to the
conversion endpoint.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "path to the XML configuration file")

	rootCmd.AddCommand(
		serveCmd(),
		checkCmd(),
		versionCmd(),
	)
	return rootCmd
}

// defaultConfigPath places the config next to the executable.
func defaultConfigPath() string {
	exePath, err := os.Executable()
	if err != nil {
		return configFileName
	}
	return filepath.Join(filepath.Dir(exePath), configFileName)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "md2xlsx-ui %s (built %s)\n", Version, BuildTime)
		},
	}
}
