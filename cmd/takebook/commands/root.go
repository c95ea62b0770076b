// Package commands implements the takebook command line.
package commands

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/takebook/internal/app"
	"github.com/ayusman/takebook/internal/config"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	dbPath     string
	logLevel   string
}

// load reads the configuration and applies the persistent flags on top.
func (g *globals) load() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, err
	}
	if g.dbPath != "" {
		cfg.DBPath = g.dbPath
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, fmt.Errorf("--log-level: %w", err)
	}
	log.SetLevel(level)
	return cfg, nil
}

// open loads the configuration and assembles the app.
func (g *globals) open(opts ...app.Option) (*app.App, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, opts...)
}

// NewRootCmd builds the takebook command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "takebook",
		Short: "takebook is a tiny social feed with webcam games",
		// Without a subcommand the desktop app starts.
		RunE: func(c *cobra.Command, args []string) error {
			return runGUI(g)
		},
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&g.dbPath, "db", "", "SQLite database path")
	flags.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newGUICmd(g),
		newTrayCmd(g),
		newServeCmd(g),
		newSnakeCmd(g),
		newFiltersCmd(g),
		newMoodCmd(g),
		newUserCmd(g),
		newPostCmd(g),
		newScoresCmd(g),
		newHooksCmd(g),
	)
	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
