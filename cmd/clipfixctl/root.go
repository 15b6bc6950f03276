package main

import (
	"os"

	"github.com/clipfix/clipfix/internal/assets"
	"github.com/clipfix/clipfix/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clipfixctl",
	Short: "Manage runtime assets for the clipfix launcher",
	Long: `clipfixctl maintains everything the clipfix launcher needs at runtime:
the embedded Python interpreter (python.wasm), the application tree, and
the pure-Python packages it imports.

The launcher itself takes no flags; all of this tooling lives here.`,
}

var log zerolog.Logger

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to clipfix.toml (default: auto-discover)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	cobra.OnInitialize(func() {
		level := zerolog.InfoLevel
		if v, _ := rootCmd.PersistentFlags().GetBool("verbose"); v {
			level = zerolog.DebugLevel
		}
		log = logging.New(os.Stderr, level)
	})
}

// loadConfig resolves the runtime configuration honoring --config.
func loadConfig(cmd *cobra.Command) (assets.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = assets.Locate()
	}
	return assets.Resolve(path)
}
