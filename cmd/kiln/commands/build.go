package commands

import (
	"github.com/spf13/cobra"
)

func addForceFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP("force", "f", false, "Rebuild every target regardless of timestamps")
}

func (c *CLI) newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build the specified targets, or all of them",
		Args:  cobra.ArbitraryArgs,
		RunE:  c.runBuild,
	}
	addForceFlag(cmd)
	return cmd
}

func (c *CLI) runBuild(cmd *cobra.Command, args []string) error {
	if err := c.bootstrap(cmd); err != nil {
		return err
	}

	opts, err := c.runOptions(cmd)
	if err != nil {
		return err
	}
	opts.Force, err = cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	return c.app.Build(cmd.Context(), args, opts)
}
