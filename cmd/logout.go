package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newCLIServerContext(cmd.Context(), "")
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			if err := sc.TokenManager().Logout(); err != nil {
				return fmt.Errorf("failed to sign out: %w", err)
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}
