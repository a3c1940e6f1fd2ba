// Package main provides the mindmap CLI: the server and a few commands for
// inspecting stored maps.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mindmap/internal/config"
	"mindmap/internal/observability"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "mindmap",
	Short: "Mind-map editor server and tools",
	Long: `mindmap stores mind maps and runs headless editing sessions over HTTP.

Examples:
  mindmap serve --addr :3000
  mindmap list --user 1 --search plan
  mindmap export <id> --format mermaid > map.mmd`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: search "+config.EnvConfigPath+", ./"+config.ConfigFileName+", XDG and /etc)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(serveCmd, listCmd, showCmd, exportCmd, configCmd)
}

// loadConfig reads the config named by --config, or the first one found
func loadConfig() (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if configPath != "" {
		cfg, path, err = config.LoadFromPath(configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, path, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, path, nil
}

func newLogger(cfg *config.Config) (*observability.Logger, error) {
	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
