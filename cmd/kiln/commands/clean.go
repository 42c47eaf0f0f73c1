package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [targets...]",
		Short: "Remove the build products of the specified targets, or of all of them",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.bootstrap(cmd); err != nil {
				return err
			}
			opts, err := c.runOptions(cmd)
			if err != nil {
				return err
			}
			return c.app.Clean(cmd.Context(), args, opts)
		},
	}
}
