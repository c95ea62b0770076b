package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/takebook/internal/app"
	"github.com/ayusman/takebook/internal/filter"
	"github.com/ayusman/takebook/internal/render"
	"github.com/ayusman/takebook/internal/session"
	"github.com/ayusman/takebook/internal/store"
)

// frameDelay is how long each frame waits for a key press.
const frameDelay = time.Millisecond

func newSnakeCmd(g *globals) *cobra.Command {
	var (
		user        string
		independent bool
		seed        uint64
	)
	c := &cobra.Command{
		Use:   "snake",
		Short: "plays hand-tracked snake in a camera window (ESC quits)",
		RunE: func(c *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.SessionDefaults()
			cfg.Kind = session.Snake
			cfg.User = resolveUser(a.Store(), user)
			if c.Flags().Changed("independent") {
				cfg.IndependentHands = independent
			}
			if c.Flags().Changed("seed") {
				cfg.Game.Seed = seed
			}

			out, err := playInWindow(c.Context(), a, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%s after %d frames. Score: %d\n", out.Reason, out.Frames, out.Score)
			return nil
		},
	}
	c.Flags().StringVarP(&user, "user", "u", "", "email to record the score for (default: last logged-in user)")
	c.Flags().BoolVar(&independent, "independent", false, "give every hand its own snake")
	c.Flags().Uint64Var(&seed, "seed", 0, "food placement seed (0 seeds from the clock)")
	return c
}

func newFiltersCmd(g *globals) *cobra.Command {
	var mode string
	c := &cobra.Command{
		Use:   "filters",
		Short: "shows the camera through a live filter (ESC quits)",
		Args: func(c *cobra.Command, args []string) error {
			if mode == "" {
				return nil
			}
			_, err := filter.ParseMode(mode)
			return err
		},
		RunE: func(c *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.SessionDefaults()
			cfg.Kind = session.Filter
			if mode != "" {
				cfg.FilterMode, _ = filter.ParseMode(mode)
			}

			_, err = playInWindow(c.Context(), a, cfg)
			return err
		},
	}
	c.Flags().StringVarP(&mode, "mode", "m", "", fmt.Sprintf("filter mode: %v", filter.Names()))
	return c
}

func newMoodCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "mood",
		Short: "labels your mood from your smile (ESC quits)",
		RunE: func(c *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.SessionDefaults()
			cfg.Kind = session.Mood
			_, err = playInWindow(c.Context(), a, cfg)
			return err
		},
	}
}

// resolveUser falls back to the last user who logged in to the desktop app.
func resolveUser(st *store.Store, user string) string {
	if user != "" {
		return user
	}
	return st.Settings().GetOr(store.SettingLastEmail, "")
}

// playInWindow runs one session in a gocv window until it ends, ESC is
// pressed, the window is closed or the process is interrupted.
func playInWindow(ctx context.Context, a *app.App, cfg session.Config) (session.Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// highgui windows belong to the thread that created them.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := a.Runner().Start(ctx, cfg)
	if err != nil {
		return session.Outcome{}, err
	}

	win := render.NewWindow("TakeBook - " + cfg.Kind.String())
	defer win.Close()

	display(ctx, a.Runner().Mailbox(), s, win)
	return s.Wait(), nil
}

// display shows frames of s until it ends. Closing the window or pressing
// ESC stops the session.
func display(ctx context.Context, mb *session.Mailbox, s *session.Session, win *render.Window) {
	frames, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.Done():
		case <-frames.Done():
		}
		cancel()
	}()

	var seq uint64
	for {
		f, err := mb.Next(frames, seq)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.WithError(err).Debug("display stopped")
			}
			return
		}
		seq = f.Seq
		if f.SessionID != s.ID() || f.Image == nil {
			continue
		}

		key, err := win.ShowImage(f.Image, frameDelay)
		if err != nil {
			log.WithError(err).Warn("show frame")
			continue
		}
		if key == render.KeyEscape || !win.IsOpen() {
			s.Stop()
			return
		}
	}
}
