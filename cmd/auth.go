package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/deepfocus-cli/auth"
	"github.com/user/deepfocus-cli/pkg/export"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with Google",
	Long: `Sign in with your Google account in the browser. Signing in enables progress saving,
Google Drive export and YouTube metadata without an API key.

Requires google.client_id and google.client_secret of a desktop OAuth client.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		oc, err := auth.OAuthConfig(cfg.Google)
		if err != nil {
			return err
		}

		launcher := export.NewOSLauncher()
		flow := &auth.Flow{
			Config: oc,
			Logger: logger,
			Open: func(url string) error {
				fmt.Println("Opening your browser to sign in. If it does not open, visit:")
				fmt.Println()
				fmt.Println("  " + url)
				fmt.Println()
				if err := launcher.Open(url); err != nil {
					logger.Debug().Err(err).Msg("browser did not open")
				}
				return nil
			},
		}

		creds, err := flow.Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("sign-in failed: %w", err)
		}
		if err := auth.SaveCredentials(cfg.Google.TokenPath, creds); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		fmt.Printf("Signed in as %s\n", creds.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored Google sign-in",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := auth.RemoveCredentials(cfg.Google.TokenPath); err != nil {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}
		if !session.Authenticated() {
			fmt.Println("Not signed in.")
			return nil
		}
		fmt.Printf("%s (%s)\n", session.Email(), session.UserID())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
