package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd(g *globals) *cobra.Command {
	c := &cobra.Command{
		Use:   "user",
		Short: "manages accounts",
	}

	var password string
	add := &cobra.Command{
		Use:   "add EMAIL",
		Short: "creates an account",
		Args: func(c *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("exactly one email is required")
			}
			if password == "" {
				return errors.New("--password is required")
			}
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			a, err := g.open()
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.Store().CreateUser(args[0], password)
			if err != nil {
				return err
			}
			if !created {
				return fmt.Errorf("email already registered: %s", args[0])
			}
			fmt.Fprintf(c.OutOrStdout(), "created %s\n", args[0])
			return nil
		},
	}
	add.Flags().StringVarP(&password, "password", "p", "", "account password")

	c.AddCommand(add)
	return c
}
