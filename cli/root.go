package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sliverarmory/loadctx/internal/config"
)

var (
	configPath string
	rootDir    string
	platformID string
	locale     string
	logLevel   string

	app *launcher
)

var rootCmd = &cobra.Command{
	Use:          "loadctx",
	Short:        "Resolve embedded modules and platform native libraries the way the game launcher does",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("root") {
			cfg.RootDirectory = rootDir
		}
		if flags.Changed("platform") {
			cfg.PlatformOverride = platformID
		}
		if flags.Changed("locale") {
			cfg.Locale = locale
		}
		if flags.Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		l, err := newLauncher(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("start launcher: %w", err)
		}
		app = l
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		return app.close(cmd.Context())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "HCL configuration file")
	flags.StringVar(&rootDir, "root", "", "Absolute root directory for native libraries (default: executable directory)")
	flags.StringVar(&platformID, "platform", "", "Override the OS family used for the native library directory")
	flags.StringVar(&locale, "locale", "", "BCP 47 locale for output (default: invariant)")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(nativeCmd, moduleCmd, layoutCmd)
}
