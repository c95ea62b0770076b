// Package shell is the TakeBook desktop app: login, feed and the Khelo Kudo
// camera sessions.
package shell

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/session"
	"github.com/ayusman/takebook/internal/store"
)

// AppID identifies the fyne application (preferences, single instance).
const AppID = "com.ayusman.takebook"

// Options configures the shell.
type Options struct {
	Store  *store.Store
	Runner *session.Runner
	// Defaults seed every session the shell starts.
	Defaults session.Config
}

// Shell owns the main window and the logged-in user.
type Shell struct {
	app    fyne.App
	win    fyne.Window
	store  *store.Store
	runner *session.Runner
	base   session.Config

	ctx    context.Context
	cancel context.CancelFunc

	user  string
	khelo *khelo
	tabs  *container.AppTabs
	home  *container.TabItem
}

// New creates the shell on a new fyne app.
func New(opts Options) *Shell {
	return NewWithApp(app.NewWithID(AppID), opts)
}

// NewWithApp creates the shell on an existing fyne app.
func NewWithApp(a fyne.App, opts Options) *Shell {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Shell{
		app:    a,
		store:  opts.Store,
		runner: opts.Runner,
		base:   opts.Defaults,
		ctx:    ctx,
		cancel: cancel,
	}
	s.win = a.NewWindow("TakeBook Login")
	s.win.SetOnClosed(s.shutdown)
	return s
}

// Run shows the login screen and blocks until the window closes.
func (s *Shell) Run() {
	s.showLogin()
	s.win.ShowAndRun()
}

// User returns the logged-in email, or "".
func (s *Shell) User() string {
	return s.user
}

func (s *Shell) shutdown() {
	s.cancel()
	if s.runner != nil {
		if out, ok := s.runner.Stop(); ok {
			log.WithField("session", out.SessionID).Info("stopped session on exit")
		}
	}
}

// showHome replaces the window content with the tabbed home view.
func (s *Shell) showHome() {
	s.win.SetTitle("TakeBook - Home")
	s.khelo = newKhelo(s)

	s.home = container.NewTabItem("Home", s.feedView())
	s.tabs = container.NewAppTabs(
		s.home,
		container.NewTabItem("About", aboutView()),
		container.NewTabItem("Khelo Kudo", s.khelo.view()),
		container.NewTabItem("Account", s.accountView()),
	)
	s.tabs.OnSelected = func(ti *container.TabItem) {
		if ti == s.home {
			s.refreshFeed()
		}
	}
	s.win.SetContent(s.tabs)
	s.win.Resize(fyne.NewSize(950, 600))
}

// refreshFeed rebuilds only the Home tab. The Khelo Kudo tab keeps its
// widgets so a running session stays attached to its video and Stop button.
func (s *Shell) refreshFeed() {
	if s.tabs == nil || s.home == nil {
		return
	}
	s.home.Content = s.feedView()
	s.tabs.Refresh()
}

// logout stops any running session and returns to the login screen.
func (s *Shell) logout() {
	if s.runner != nil {
		s.runner.Stop()
	}
	log.WithField("user", s.user).Info("logged out")
	s.user = ""
	s.khelo = nil
	s.tabs = nil
	s.home = nil
	s.showLogin()
}
