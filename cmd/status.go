package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server and authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newCLIServerContext(cmd.Context(), serverURL)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			cfg := sc.Config()
			if cfg.ServerURL == "" {
				fmt.Println("No server configured. Run 'talkbridge login --server <url>' first.")
				return nil
			}
			fmt.Printf("Server:        %s\n", cfg.ServerURL)

			if status, err := sc.NextcloudClient().Status(cmd.Context()); err != nil {
				fmt.Printf("Reachable:     no (%v)\n", err)
			} else {
				fmt.Printf("Reachable:     yes (Nextcloud %s)\n", status.Version)
			}

			if _, ok := sc.TokenManager().CurrentAccessToken(); ok {
				fmt.Println("Authenticated: yes")
			} else {
				fmt.Println("Authenticated: no")
			}

			if profile, ok, _ := sc.TokenManager().Profile(); ok {
				fmt.Printf("User:          %s (%s)\n", profile.ID, profile.DisplayName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Nextcloud server URL (default: TALKBRIDGE_SERVER or the last used server)")
	return cmd
}
