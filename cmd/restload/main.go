package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Benjamin-Hogan/restload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is stamped at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "restload",
	Short:         "Run ordered batches of HTTP tasks against configured REST APIs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the restload version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "restload", version)
	},
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("mask_sensitive", true)
	v.SetDefault("store_driver", "sqlite")
	v.SetDefault("store_path", "")
	v.SetDefault("store_dsn", "")
	v.SetDefault("store_table", "")

	// Environment variables support: RESTLOAD_CONFIG_FILE, RESTLOAD_LOG_LEVEL, ...
	v.SetEnvPrefix("RESTLOAD")
	v.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.String("config-file", v.GetString("config_file"), "path to the config registry (default $HOME/.restload/configs.json)")
	pf.String("log-level", v.GetString("log_level"), "log level: error, warn, info, debug")
	pf.String("log-format", v.GetString("log_format"), "log format: text, json, color")
	pf.Bool("mask-sensitive", v.GetBool("mask_sensitive"), "mask tokens and credentials in log output")

	_ = v.BindPFlag("config_file", pf.Lookup("config-file"))
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log_format", pf.Lookup("log-format"))
	_ = v.BindPFlag("mask_sensitive", pf.Lookup("mask-sensitive"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(configsCmd)
	rootCmd.AddCommand(endpointsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging configures the global logger from the log_* settings.
func setupLogging() error {
	v := viper.GetViper()
	level := v.GetString("log_level")

	var logger *restload.Logger
	format := strings.ToLower(strings.TrimSpace(v.GetString("log_format")))
	switch format {
	case "json":
		logger = restload.NewJSONLogger(level)
	case "color", "colour":
		logger = restload.NewColorLogger(level)
	case "text", "":
		logger = restload.NewLogger(level)
	default:
		return fmt.Errorf("invalid log format: %s (valid: text, json, color)", v.GetString("log_format"))
	}

	logger.EnableMasking(v.GetBool("mask_sensitive"))
	restload.SetDefaultLogger(logger)
	restload.EnableMasking(v.GetBool("mask_sensitive"))
	return nil
}

// openRegistry loads the config registry from --config-file or the default
// per-user location.
func openRegistry() (*restload.Registry, error) {
	path := strings.TrimSpace(viper.GetString("config_file"))
	if path == "" {
		var err error
		path, err = restload.DefaultRegistryPath()
		if err != nil {
			return nil, err
		}
	}
	return restload.LoadRegistry(path)
}

// openStore connects the run-history backend from the store_* settings.
func openStore() (restload.Store, error) {
	v := viper.GetViper()
	return restload.OpenStore(restload.StoreConfig{
		Driver:    v.GetString("store_driver"),
		Path:      v.GetString("store_path"),
		DSN:       v.GetString("store_dsn"),
		TableName: v.GetString("store_table"),
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
