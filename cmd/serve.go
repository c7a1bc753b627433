package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/deepfocus-cli/config"
	"github.com/user/deepfocus-cli/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve watch history over HTTP",
	Long: `Run the watch-history API so several machines can share progress. Clients use
store.driver: http with a token from "deepfocus serve token".

The server stores history in Postgres when store.driver is postgres and in the local
SQLite database otherwise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sc := cfg.Store
		if sc.Driver == config.StoreHTTP {
			sc.Driver = config.StoreSQLite
		}
		store, closeStore, err := openStore(ctx, sc)
		if err != nil {
			return err
		}
		defer closeStore()

		srv, err := server.New(cfg.Server, store, logger)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		return srv.Shutdown(ctx)
	},
}

var serveTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API token for a user",
	Long:  `Print a bearer token for the watch-history API. Without --user the signed-in Google account is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			session, err := loadSession(cmd.Context())
			if err != nil {
				return err
			}
			if !session.Authenticated() {
				return fmt.Errorf("--user is required when not signed in")
			}
			userID = session.UserID()
		}

		token, err := server.GenerateToken(cfg.Server.JWTSecret, userID, cfg.Server.TokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	serveTokenCmd.Flags().String("user", "", "user id the token is issued for")

	serveCmd.AddCommand(serveTokenCmd)
	rootCmd.AddCommand(serveCmd)
}
