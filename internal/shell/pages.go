package shell

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"
)

func aboutView() fyne.CanvasObject {
	return container.NewVBox(
		widget.NewLabelWithStyle("About TakeBook", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("A small social feed with webcam games, built with Go, fyne, OpenCV and SQLite.",
			fyne.TextAlignCenter, fyne.TextStyle{}),
	)
}

func (s *Shell) accountView() fyne.CanvasObject {
	logout := widget.NewButton("Logout", s.logout)
	logout.Importance = widget.DangerImportance

	return container.NewVBox(
		widget.NewLabelWithStyle("Account", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Logged in as: "+s.user),
		widget.NewLabel(s.bestScoreText()),
		logout,
	)
}

// bestScoreText is the Account tab's snake record line.
func (s *Shell) bestScoreText() string {
	best, err := s.store.Scores().Best(s.user)
	if err != nil {
		log.WithError(err).Warn("load best score")
		return "Best snake score: unavailable"
	}
	return fmt.Sprintf("Best snake score: %d", best)
}
