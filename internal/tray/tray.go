// Package tray provides a system tray launcher for TakeBook's camera sessions.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/takebook/internal/filter"
	"github.com/ayusman/takebook/internal/session"
)

// Launch describes a session the user asked the tray to start.
type Launch struct {
	Kind session.Kind
	// Mode is the initial filter mode; only meaningful for filter sessions.
	Mode filter.Mode
}

// Tray represents the system tray application.
type Tray struct {
	onLaunch func(Launch)
	onStop   func()
	onOpen   func()
	onQuit   func()
	running  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuStop      *systray.MenuItem
	menuLastScore *systray.MenuItem
}

// New creates a new Tray instance.
func New() *Tray {
	return &Tray{}
}

// OnLaunch sets the callback called when a session menu item is clicked.
func (t *Tray) OnLaunch(fn func(Launch)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onLaunch = fn
}

// OnStop sets the callback called when the stop menu item is clicked.
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnOpen sets the callback called when the open menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// launchItem pairs a menu item with the session it starts.
type launchItem struct {
	item   *systray.MenuItem
	launch Launch
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("TakeBook")
	systray.SetTooltip("TakeBook - Khelo Kudo")

	items := []launchItem{
		{systray.AddMenuItem("Play Snake", "Hand-tracked snake"), Launch{Kind: session.Snake}},
	}
	filters := systray.AddMenuItem("Live Filters", "Live camera filters")
	for _, m := range filter.Modes() {
		items = append(items, launchItem{
			filters.AddSubMenuItem(m.String(), fmt.Sprintf("Start with the %s filter", m)),
			Launch{Kind: session.Filter, Mode: m},
		})
	}
	items = append(items, launchItem{
		systray.AddMenuItem("Mood Detector", "Smile detection"), Launch{Kind: session.Mood},
	})

	t.menuStop = systray.AddMenuItem("Stop Session", "Stop the running session")
	t.menuStop.Disable()
	systray.AddSeparator()

	t.menuLastScore = systray.AddMenuItem("Last score: none", "Score of the last snake game")
	t.menuLastScore.Disable()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Web UI...", "Open TakeBook in the browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit TakeBook")

	// One goroutine per launch item; systray exposes a channel per item.
	for _, li := range items {
		go func(li launchItem) {
			for range li.item.ClickedCh {
				t.handleLaunch(li.launch)
			}
		}(li)
	}

	go func() {
		for {
			select {
			case <-t.menuStop.ClickedCh:
				t.handleStop()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleLaunch handles a session menu item click.
func (t *Tray) handleLaunch(l Launch) {
	t.mu.RLock()
	callback := t.onLaunch
	t.mu.RUnlock()

	if callback != nil {
		callback(l)
	}
}

// handleStop handles the stop menu item click.
func (t *Tray) handleStop() {
	t.mu.RLock()
	callback := t.onStop
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleOpen handles the open menu item click.
func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetRunning enables the stop item while a session runs.
func (t *Tray) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.running = running
	if t.menuStop == nil {
		return
	}
	if running {
		t.menuStop.Enable()
	} else {
		t.menuStop.Disable()
	}
}

// IsRunning reports whether the tray believes a session is running.
func (t *Tray) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

// SetLastScore updates the last score display in the menu.
func (t *Tray) SetLastScore(out session.Outcome) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastScore != nil {
		t.menuLastScore.SetTitle(LastScoreTitle(out))
	}
}

// LastScoreTitle formats a finished snake game for the menu.
func LastScoreTitle(out session.Outcome) string {
	if out.SessionID == "" {
		return "Last score: none"
	}
	return fmt.Sprintf("Last score: %d (%s)", out.Score, out.Status)
}
