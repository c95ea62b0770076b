package commands

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/takebook/internal/app"
	"github.com/ayusman/takebook/internal/session"
	"github.com/ayusman/takebook/internal/tray"
)

func newTrayCmd(g *globals) *cobra.Command {
	var noServer bool
	c := &cobra.Command{
		Use:   "tray",
		Short: "runs the system tray launcher",
		RunE: func(c *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			addr := a.Config().Server.Addr
			if !noServer {
				go func() {
					if err := serve(ctx, a, a.Config().Server); err != nil {
						log.WithError(err).Error("http server stopped")
					}
				}()
			}

			t := tray.New()
			t.OnLaunch(func(l tray.Launch) {
				go launchFromTray(ctx, a, t, l)
			})
			t.OnStop(func() { a.Runner().Stop() })
			t.OnOpen(func() {
				if noServer {
					log.Warn("web UI disabled with --no-server")
					return
				}
				if err := openBrowser(webURL(addr)); err != nil {
					log.WithError(err).Warn("open browser")
				}
			})
			t.OnQuit(cancel)

			log.Info("tray running")
			t.Run()
			return nil
		},
	}
	c.Flags().BoolVar(&noServer, "no-server", false, "do not start the HTTP server")
	return c
}

// launchFromTray runs one session in its own window and reports the result.
func launchFromTray(ctx context.Context, a *app.App, t *tray.Tray, l tray.Launch) {
	cfg := a.SessionDefaults()
	cfg.Kind = l.Kind
	if l.Kind == session.Filter {
		cfg.FilterMode = l.Mode
	}
	if l.Kind == session.Snake {
		cfg.User = resolveUser(a.Store(), "")
	}

	t.SetRunning(true)
	defer t.SetRunning(false)

	out, err := playInWindow(ctx, a, cfg)
	if err != nil {
		log.WithError(err).WithField("kind", l.Kind).Error("start session")
		return
	}
	if l.Kind == session.Snake {
		t.SetLastScore(out)
	}
}

// webURL turns a listen address into a browsable URL.
func webURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
