package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/takebook/internal/app"
	"github.com/ayusman/takebook/internal/config"
	"github.com/ayusman/takebook/internal/server"
)

func newServeCmd(g *globals) *cobra.Command {
	var addr, static string
	c := &cobra.Command{
		Use:   "serve",
		Short: "runs the HTTP API, MJPEG stream and game websocket",
		RunE: func(c *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.Config()
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if static != "" {
				cfg.Server.StaticDir = static
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a, cfg.Server)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	c.Flags().StringVar(&static, "static", "", "directory of static files served at /")
	return c
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, a *app.App, cfg config.ServerConfig) error {
	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		log.WithField("dir", webDir).Info("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir:       webDir,
		Store:           a.Store(),
		Runner:          a.Runner(),
		SessionDefaults: a.SessionDefaults(),
	})
	return srv.ListenAndServe(ctx, cfg.Addr)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.takebook/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(config.DataDir(), "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
