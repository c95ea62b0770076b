package commands

import (
	"github.com/spf13/cobra"

	"github.com/ayusman/takebook/internal/shell"
)

func newGUICmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "opens the TakeBook desktop app",
		RunE: func(c *cobra.Command, args []string) error {
			return runGUI(g)
		},
	}
}

func runGUI(g *globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	shell.New(shell.Options{
		Store:    a.Store(),
		Runner:   a.Runner(),
		Defaults: a.SessionDefaults(),
	}).Run()
	return nil
}
