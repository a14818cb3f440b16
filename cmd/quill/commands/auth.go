package commands

import (
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/quill/internal/core/domain"
	"go.trai.ch/zerr"
)

// EnvPassword supplies the login password when --password is not given.
const EnvPassword = "QUILL_PASSWORD"

func (c *CLI) newLoginCmd() *cobra.Command {
	var creds domain.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if creds.Password == "" {
				creds.Password = os.Getenv(EnvPassword)
			}
			if creds.Email == "" {
				return zerr.With(zerr.Wrap(domain.ErrMissingArgument, "login"), "flag", "email")
			}
			if creds.Password == "" {
				return zerr.With(zerr.Wrap(domain.ErrMissingArgument, "login"), "flag", "password")
			}

			user, err := c.app.Features().Auth.Login.Run(cmd.Context(), creds)
			if err != nil {
				return err
			}
			return c.printer(cmd).done(user, "signed in as "+user.Email)
		},
	}
	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Account password (or set "+EnvPassword+")")
	return cmd
}

func (c *CLI) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.Features().Auth.Logout.Run(cmd.Context(), struct{}{}); err != nil {
				return err
			}
			return c.printer(cmd).done(map[string]bool{"signedOut": true}, "signed out")
		},
	}
}

func (c *CLI) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := c.app.Features().Auth.Me().Get(cmd.Context())
			if err != nil {
				return err
			}
			return c.printer(cmd).result(me,
				[]string{"ID", "NAME", "EMAIL", "ROLE"},
				[][]string{{me.ID, me.Name, me.Email, me.Role}},
			)
		},
	}
}
