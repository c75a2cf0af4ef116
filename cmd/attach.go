package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FredrikJonassonItsb/talkbridge/internal/appointment"
	"github.com/FredrikJonassonItsb/talkbridge/internal/attendee"
	"github.com/FredrikJonassonItsb/talkbridge/internal/provision"
)

func newAttachCmd() *cobra.Command {
	var (
		appointmentFile string
		securityFile    string
		calendar        string
		roomType        int
		serverURL       string
	)

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach a Talk meeting to an appointment",
		Long: `Attach a Nextcloud Talk meeting to an appointment stored as a JSON file.

Runs the full provisioning pipeline: validates the appointment, creates the
Talk room, writes a calendar event carrying per-attendee security directives,
and updates the appointment body and location in place.

Attendee security settings can be supplied as a JSON file mapping attendee
email addresses to settings:

  {
    "alice@example.com": {"authLevel": "loa3", "personalId": "19800101-1234"},
    "bob@example.com":   {"authLevel": "sms", "smsNumber": "+46701234567"}
  }

Completed steps are not rolled back on failure; the output reports how far
provisioning got.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := newCLIServerContext(cmd.Context(), serverURL)
			if err != nil {
				return err
			}
			defer func() { _ = sc.Shutdown() }()

			cfg := sc.Config()
			if cfg.ServerURL == "" {
				return fmt.Errorf("no server URL: pass --server or run 'talkbridge login' first")
			}
			if calendar != "" {
				cfg.Calendar = calendar
			}
			if roomType != 0 {
				cfg.RoomType = roomType
			}

			host := appointment.NewFileHost(appointmentFile, nil)

			var session *provision.Session
			if securityFile != "" {
				session = provision.NewSession()
				if _, err := session.LoadAttendees(cmd.Context(), host); err != nil {
					return err
				}
				settings, err := readSecurityFile(securityFile)
				if err != nil {
					return err
				}
				for email, s := range settings {
					session.SetSettings(email, s)
				}
			}

			pipeline := provision.NewPipeline(cfg, sc.NextcloudClient(), sc.NextcloudClient(),
				sc.TokenManager(), host, nil)
			result := pipeline.Run(cmd.Context(), session)

			for _, step := range result.SucceededSteps {
				fmt.Printf("  ✓ %s\n", step)
			}
			if result.Err != nil {
				if result.Room != nil {
					fmt.Printf("Talk room was created: %s\n", result.Room.URL)
				}
				return result.Err
			}

			fmt.Printf("Talk meeting attached: %s\n", result.Room.URL)
			fmt.Printf("Calendar event %s written to calendar %q\n", result.CalendarUID, cfg.Calendar)
			return nil
		},
	}

	cmd.Flags().StringVar(&appointmentFile, "appointment", "", "Path to the appointment JSON file (required)")
	cmd.Flags().StringVar(&securityFile, "security", "", "Path to a JSON file with per-attendee security settings")
	cmd.Flags().StringVar(&calendar, "calendar", "", "Calendar to write the event to (default: personal)")
	cmd.Flags().IntVar(&roomType, "room-type", 0, "Talk room type (default: 3, public)")
	cmd.Flags().StringVar(&serverURL, "server", "", "Nextcloud server URL (default: TALKBRIDGE_SERVER or the last used server)")
	_ = cmd.MarkFlagRequired("appointment")
	return cmd
}

func readSecurityFile(path string) (map[string]attendee.SecuritySettings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read security file: %w", err)
	}
	var settings map[string]attendee.SecuritySettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("invalid security file %s: %w", path, err)
	}
	return settings, nil
}
