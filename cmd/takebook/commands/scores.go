package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ayusman/takebook/internal/store"
)

func newScoresCmd(g *globals) *cobra.Command {
	var (
		limit int
		email string
	)
	c := &cobra.Command{
		Use:   "scores",
		Short: "prints the snake leaderboard",
		RunE: func(c *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			var scores []store.Score
			if email != "" {
				scores, err = a.Store().Scores().ForUser(email)
				if limit > 0 && len(scores) > limit {
					scores = scores[:limit]
				}
			} else {
				scores, err = a.Store().Scores().Top(limit)
			}
			if err != nil {
				return err
			}
			if len(scores) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "No games yet.")
				return nil
			}

			w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, sc := range scores {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
					humanize.Ordinal(i+1), sc.Email, sc.Score, sc.Status, sc.Duration.Round(100*time.Millisecond))
			}
			return w.Flush()
		},
	}
	c.Flags().IntVarP(&limit, "limit", "n", 10, "number of scores")
	c.Flags().StringVarP(&email, "email", "e", "", "only this player's games, newest first")
	return c
}
