package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHooksCmd(g *globals) *cobra.Command {
	c := &cobra.Command{
		Use:   "hooks",
		Short: "lists the game-over hooks found in the hooks directory",
		RunE: func(c *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			hooks := a.Hooks().List()
			if len(hooks) == 0 {
				fmt.Fprintf(c.OutOrStdout(), "No hooks in %s\n", a.Hooks().Dir())
				return nil
			}
			w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, h := range hooks {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Manifest.Name, h.Manifest.Version,
					strings.Join(h.Manifest.Events, ","), h.Manifest.Description)
			}
			return w.Flush()
		},
	}
	return c
}
