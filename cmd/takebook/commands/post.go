package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ayusman/takebook/internal/store"
)

func newPostCmd(g *globals) *cobra.Command {
	c := &cobra.Command{
		Use:   "post",
		Short: "writes and reads the feed",
	}

	var author, image string
	add := &cobra.Command{
		Use:   "add CONTENT...",
		Short: "posts to the feed",
		Args: func(c *cobra.Command, args []string) error {
			if strings.TrimSpace(strings.Join(args, " ")) == "" {
				return errors.New("post content is required")
			}
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			who := resolveUser(a.Store(), author)
			if who == "" {
				return errors.New("--author is required when nobody has logged in")
			}
			p, err := a.Store().AddPost(who, strings.Join(args, " "), image)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "posted #%d\n", p.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&author, "author", "a", "", "author email (default: last logged-in user)")
	add.Flags().StringVarP(&image, "image", "i", "", "path of an image to attach")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "prints the feed, newest first",
		RunE: func(c *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			posts, err := a.Store().Posts().List(limit)
			if err != nil {
				return err
			}
			if len(posts) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "No posts yet.")
				return nil
			}
			printPosts(c, posts, time.Now())
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n posts (0 for all)")

	c.AddCommand(add, list)
	return c
}

func printPosts(c *cobra.Command, posts []store.Post, now time.Time) {
	w := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, p := range posts {
		image := ""
		if p.ImagePath != "" {
			image = "[image] "
		}
		fmt.Fprintf(w, "%s\t%s\t%s%s\n", p.Author, humanize.RelTime(p.CreatedAt, now, "ago", "from now"), image, p.Content)
	}
	w.Flush()
}
