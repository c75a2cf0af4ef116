package nextcloud

import (
	"context"
	"fmt"
	"net/http"

	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
)

// PutEvent writes an iCalendar document to the CalDAV collection of the
// given user and calendar, at the deterministic per-event path <uid>.ics.
func (c *Client) PutEvent(ctx context.Context, username, calendar, uid, ics string) error {
	if username == "" {
		return fmt.Errorf("username is required for the calendar path")
	}

	url := c.cfg.CalendarObjectURL(username, calendar, uid)
	req, err := c.request(ctx, http.MethodPut, url, ics)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/calendar")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calendar write request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpError("calendar write", resp)
	}

	c.logger.Info("calendar event written",
		logging.KeyCalendar, calendar,
		"uid", uid)
	return nil
}
