package nextcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ServerStatus is the public status.php document.
type ServerStatus struct {
	Installed bool   `json:"installed"`
	Version   string `json:"version"`
	Edition   string `json:"edition"`
}

// TestConnection probes status.php without authentication and reports
// whether the server is reachable and installed.
func (c *Client) TestConnection(ctx context.Context) (bool, error) {
	status, err := c.Status(ctx)
	if err != nil {
		return false, err
	}
	return status.Installed, nil
}

// Status fetches the server's public status document.
func (c *Client) Status(ctx context.Context) (*ServerStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.StatusURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError("server status", resp)
	}

	var status ServerStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("invalid status response: %w", err)
	}
	return &status, nil
}

// Capabilities fetches the server capabilities document, returned as raw
// JSON since only presence checks are needed.
func (c *Client) Capabilities(ctx context.Context) (json.RawMessage, error) {
	req, err := c.request(ctx, http.MethodGet, c.cfg.ServerURL+"/ocs/v2.php/cloud/capabilities?format=json", "")
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capabilities request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError("capabilities", resp)
	}

	var parsed struct {
		OCS struct {
			Data struct {
				Capabilities json.RawMessage `json:"capabilities"`
			} `json:"data"`
		} `json:"ocs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("invalid capabilities response: %w", err)
	}
	return parsed.OCS.Data.Capabilities, nil
}
