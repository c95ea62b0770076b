package shell

import (
	"context"
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/takebook/internal/filter"
	"github.com/ayusman/takebook/internal/game"
	"github.com/ayusman/takebook/internal/session"
	"github.com/ayusman/takebook/internal/store"
)

// khelo is the Khelo Kudo tab: session launchers and a live video area.
type khelo struct {
	shell  *Shell
	video  *VideoDisplay
	status *widget.Label
	modes  *widget.Select
	stop   *widget.Button
	start  []*widget.Button
}

func newKhelo(s *Shell) *khelo {
	return &khelo{shell: s}
}

func (k *khelo) view() fyne.CanvasObject {
	s := k.shell
	k.video = NewVideoDisplay()
	k.status = widget.NewLabel("Pick a game.")

	k.modes = widget.NewSelect(filter.Names(), nil)
	k.modes.SetSelected(k.savedMode().String())
	k.modes.OnChanged = func(name string) {
		mode, err := filter.ParseMode(name)
		if err != nil {
			return
		}
		if err := s.store.Settings().Set(store.SettingFilterMode, mode.String()); err != nil {
			log.WithError(err).Warn("remember filter mode")
		}
		if s.runner == nil {
			return
		}
		if active := s.runner.Active(); active != nil && active.Kind() == session.Filter {
			if err := active.SetMode(mode); err != nil {
				log.WithError(err).Warn("switch filter mode")
			}
		}
	}

	snake := widget.NewButton("Play Snake", func() { k.launch(session.Snake) })
	snake.Importance = widget.HighImportance
	filters := widget.NewButton("Live Filters", func() { k.launch(session.Filter) })
	filters.Importance = widget.SuccessImportance
	mood := widget.NewButton("Mood Detector", func() { k.launch(session.Mood) })
	mood.Importance = widget.WarningImportance
	k.start = []*widget.Button{snake, filters, mood}

	k.stop = widget.NewButton("Stop", func() {
		if s.runner != nil {
			s.runner.Stop()
		}
	})
	k.stop.Importance = widget.DangerImportance
	k.stop.Disable()

	controls := container.NewVBox(
		widget.NewLabelWithStyle("Khelo Kudo Zone", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		snake,
		container.NewBorder(nil, nil, nil, k.modes, filters),
		mood,
		widget.NewSeparator(),
		k.stop,
		k.status,
	)
	return container.NewBorder(nil, nil, controls, nil, k.video)
}

// savedMode is the last filter mode the user picked.
func (k *khelo) savedMode() filter.Mode {
	name := k.shell.store.Settings().GetOr(store.SettingFilterMode, k.shell.base.FilterMode.String())
	mode, err := filter.ParseMode(name)
	if err != nil {
		return k.shell.base.FilterMode
	}
	return mode
}

func (k *khelo) setRunning(running bool) {
	for _, b := range k.start {
		if running {
			b.Disable()
		} else {
			b.Enable()
		}
	}
	if running {
		k.stop.Enable()
	} else {
		k.stop.Disable()
	}
}

func (k *khelo) launch(kind session.Kind) {
	s := k.shell
	if s.runner == nil {
		dialog.ShowError(errors.New("camera sessions are not available"), s.win)
		return
	}

	cfg := s.base
	cfg.Kind = kind
	cfg.User = s.user
	cfg.FilterMode = k.savedMode()

	sess, err := s.runner.Start(s.ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("kind", kind).Error("start session")
		dialog.ShowError(err, s.win)
		return
	}

	k.video.Clear()
	k.setRunning(true)
	k.status.SetText(fmt.Sprintf("Starting %s...", kind))
	go k.pump(sess)
}

// pump copies the session's frames into the video widget until it ends.
func (k *khelo) pump(sess *session.Session) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-sess.Done()
		cancel()
	}()

	mailbox := k.shell.runner.Mailbox()
	var seq uint64
	for {
		f, err := mailbox.Next(ctx, seq)
		if err != nil {
			break
		}
		seq = f.Seq
		if f.SessionID != sess.ID() || f.Image == nil {
			continue
		}
		img, text := f.Image, frameStatus(f)
		fyne.Do(func() {
			k.video.UpdateFrame(img)
			k.status.SetText(text)
		})
	}

	out := sess.Wait()
	fyne.Do(func() { k.finished(out) })
}

func (k *khelo) finished(out session.Outcome) {
	k.setRunning(false)
	k.status.SetText(outcomeText(out))
	if out.Kind == session.Snake && out.Status == game.Collided {
		dialog.ShowInformation("GAME OVER", outcomeText(out), k.shell.win)
	}
}

// frameStatus is the status line shown under the live video.
func frameStatus(f session.Frame) string {
	switch f.Kind {
	case session.Snake:
		if f.Status == game.Collided {
			return fmt.Sprintf("GAME OVER - Score: %d", f.Score)
		}
		return fmt.Sprintf("Score: %d", f.Score)
	case session.Filter:
		return "Filter: " + f.Label
	case session.Mood:
		return "Mood: " + f.Label
	default:
		return ""
	}
}

// outcomeText summarises a finished session.
func outcomeText(out session.Outcome) string {
	if out.Kind == session.Snake {
		return fmt.Sprintf("Game ended (%s). Score: %d", out.Reason, out.Score)
	}
	return fmt.Sprintf("%s session ended (%s).", out.Kind, out.Reason)
}
