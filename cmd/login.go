package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FredrikJonassonItsb/talkbridge/internal/auth"
	"github.com/FredrikJonassonItsb/talkbridge/internal/browser"
)

// printedWindow is the Window for --no-browser logins: the URL was printed
// rather than opened, so completion of the redirect is the only close signal.
type printedWindow struct {
	completed func() bool
}

func (w printedWindow) Closed() bool { return w.completed() }

type printURLOpener struct {
	completed func() bool
}

func (o printURLOpener) Open(url string) (auth.Window, error) {
	fmt.Printf("Open this URL in your browser to sign in:\n\n  %s\n\n", url)
	return printedWindow{completed: o.completed}, nil
}

func newLoginCmd() *cobra.Command {
	var (
		serverURL string
		noBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to a Nextcloud server",
		Long: `Sign in to a Nextcloud server using the OAuth2 authorization-code flow.

Opens the authorization page in the system browser and waits for the redirect
to complete. Tokens and the user profile are stored locally and picked up by
all other commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newCLIServerContext(cmd.Context(), serverURL)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			if sc.Config().ServerURL == "" {
				return fmt.Errorf("no server URL: pass --server or set TALKBRIDGE_SERVER")
			}

			flow := sc.FlowController()

			redirect := auth.NewRedirectServer(flow, nil)
			if err := redirect.Start(); err != nil {
				return err
			}
			defer func() { _ = redirect.Shutdown(context.Background()) }()

			sc.Config().RedirectURI = redirect.URL()

			var opener auth.WindowOpener
			if noBrowser {
				opener = printURLOpener{completed: redirect.Completed}
			} else {
				opener = browser.WindowOpener{Completed: redirect.Completed}
			}
			flow.SetTransports(auth.NewExternalTransport(opener, sc.TokenManager(), nil))

			res, err := flow.Login(cmd.Context(), sc.Config().ServerURL)
			if err != nil {
				return fmt.Errorf("sign-in failed: %w", err)
			}
			if res.Status != auth.StatusAuthenticated {
				return fmt.Errorf("sign-in did not complete (%s)", res.Status)
			}

			if profile, ok, _ := sc.TokenManager().Profile(); ok {
				fmt.Printf("Signed in to %s as %s\n", sc.Config().ServerURL, profile.ID)
			} else {
				fmt.Printf("Signed in to %s\n", sc.Config().ServerURL)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Nextcloud server URL (default: TALKBRIDGE_SERVER or the last used server)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the sign-in URL instead of opening the browser")
	return cmd
}
