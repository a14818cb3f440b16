// Package commands implements the CLI commands for quill.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/quill/internal/build"
	"go.trai.ch/quill/internal/features"
)

// CLI represents the command line interface for quill.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
	json    bool
	verbose bool
}

// Application represents the application logic interface.
type Application interface {
	Features() *features.Set
	SetVerbose(verbose bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "quill",
		Short:         "Manage the content of a quill CMS from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	// -v belongs to --verbose, so it must exist before the version flag is added.
	rootCmd.PersistentFlags().BoolVar(&c.json, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log requests and cache activity")

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"
	rootCmd.PersistentPreRun = func(*cobra.Command, []string) {
		if c.verbose {
			c.app.SetVerbose(true)
		}
	}

	rootCmd.AddCommand(
		c.newVersionCmd(),
		c.newLoginCmd(),
		c.newLogoutCmd(),
		c.newWhoamiCmd(),
		c.newDashboardCmd(),
		c.newPostsCmd(),
		c.newTagsCmd(),
		c.newCategoriesCmd(),
		c.newSectionsCmd(),
		c.newUsersCmd(),
		c.newTemplatesCmd(),
		c.newTrashCmd(),
		c.newSearchCmd(),
		c.newMediaCmd(),
		c.newWatchCmd(),
	)

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
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
