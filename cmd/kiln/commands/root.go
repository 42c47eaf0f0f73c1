// Package commands implements the CLI commands for the kiln build tool.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
)

// CLI represents the command line interface for kiln.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
	// argv re-executes the program after a self rebuild.
	argv []string
}

// New creates a new CLI instance with the given app.
// Without a subcommand kiln builds.
func New(a *app.App) *CLI {
	c := &CLI{
		app:  a,
		argv: os.Args,
	}

	rootCmd := &cobra.Command{
		Use:           "kiln [targets...]",
		Short:         "An incremental build executor for C programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		Args:          cobra.ArbitraryArgs,
		RunE:          c.runBuild,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.PersistentFlags().StringP("config", "c", app.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "Number of concurrent jobs (default: configured cores or CPU count)")
	addForceFlag(rootCmd)

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
	c.argv = append([]string{c.rootCmd.Name()}, args...)
}

// bootstrap rebuilds kiln itself before a command touches the build tree.
func (c *CLI) bootstrap(cmd *cobra.Command) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	return c.app.Bootstrap(cmd.Context(), configPath, c.argv)
}

func (c *CLI) runOptions(cmd *cobra.Command) (app.RunOptions, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return app.RunOptions{}, err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return app.RunOptions{}, err
	}
	return app.RunOptions{ConfigPath: configPath, Cores: jobs}, nil
}

// SetOutput redirects the command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}
