package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/shopdesk/internal/config"
	"github.com/lehigh-university-libraries/shopdesk/internal/tokenstore"
	"github.com/lehigh-university-libraries/shopdesk/internal/validation"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var form validation.LoginForm

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a catalog admin",
		Long: `Signs in to the catalog API and saves the returned token until it expires.

The password may be given with --password or the ` + config.EnvPassword + ` environment variable.`,
		Example: `  shopdesk login --username admin@example.com --password secret1

  # Read the password from the environment
  ` + config.EnvPassword + `=secret1 shopdesk login --username admin@example.com`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if form.Password == "" {
				form.Password = os.Getenv(config.EnvPassword)
			}
			if err := validation.Validate(form); err != nil {
				return err
			}

			client, err := opts.client()
			if err != nil {
				return err
			}

			cred, err := client.SignIn(cmd.Context(), form.Username, form.Password)
			if err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}
			if err := opts.tokens.Save(*cred); err != nil {
				return err
			}

			slog.Debug("Saved credential", "path", opts.tokens.Path())
			fmt.Fprintf(cmd.OutOrStdout(), "%s signed in as %s until %s\n",
				okStyle.Render("✓"), form.Username, cred.Expires.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&form.Username, "username", "u", "", "Admin email address")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Admin password")

	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved admin token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.tokens.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that the saved admin token is still accepted",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			token, err := opts.token()
			if errors.Is(err, tokenstore.ErrNoCredential) {
				fmt.Fprintln(cmd.OutOrStdout(), failStyle.Render("✗")+" not signed in")
				return err
			}
			if err != nil {
				return err
			}

			if err := client.CheckUser(cmd.Context(), token); err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("✓")+" signed in")
			return nil
		},
	}
}
