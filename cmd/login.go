package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonandersen/backspread/internal/auth"
	"github.com/jonandersen/backspread/internal/keyring"
)

// loginOptions holds dependencies for the login and logout commands.
type loginOptions struct {
	provider func() (*auth.Provider, error)
}

// newLoginCmd creates the login command with the given options.
func newLoginCmd(opts *loginOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and cache credentials",
		Long: `Log in through the browser and cache the OAuth token.

The authorization URL is printed; after logging in, paste the URL the
browser was redirected to. The token is stored with mode 0600 and is
refreshed automatically by later commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.provider()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			if _, err := p.Interactive(ctx); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in. Credentials cached at %s\n", p.CachePath)
			return nil
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

// newLogoutCmd creates the logout command with the given options.
func newLogoutCmd(opts *loginOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Delete cached credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.provider()
			if err != nil {
				return err
			}

			if err := auth.DeleteToken(p.CachePath); err != nil {
				return fmt.Errorf("failed to delete credentials: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func init() {
	opts := &loginOptions{
		provider: func() (*auth.Provider, error) {
			cfg, err := loadConfig()
			if err != nil {
				return nil, err
			}
			return newProvider(cfg, keyring.NewEnvStore(keyring.NewSystemStore()))
		},
	}
	rootCmd.AddCommand(newLoginCmd(opts))
	rootCmd.AddCommand(newLogoutCmd(opts))
}
