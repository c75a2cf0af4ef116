package nextcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/FredrikJonassonItsb/talkbridge/internal/auth"
)

// ocsUserResponse is the envelope of the cloud/user endpoint. The display
// name key has varied across server releases.
type ocsUserResponse struct {
	OCS struct {
		Data struct {
			ID            string `json:"id"`
			DisplayName   string `json:"displayname"`
			DisplayNameV2 string `json:"display-name"`
			Email         string `json:"email"`
		} `json:"data"`
	} `json:"ocs"`
}

// FetchProfile retrieves the authenticated user's profile. Satisfies
// auth.ProfileFetcher so the login flow can cache the profile after the code
// exchange.
func (c *Client) FetchProfile(ctx context.Context) (auth.Profile, error) {
	req, err := c.request(ctx, http.MethodGet, c.cfg.UserProfileURL()+"?format=json", "")
	if err != nil {
		return auth.Profile{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return auth.Profile{}, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return auth.Profile{}, httpError("fetch profile", resp)
	}

	var parsed ocsUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return auth.Profile{}, fmt.Errorf("invalid profile response: %w", err)
	}

	data := parsed.OCS.Data
	displayName := data.DisplayName
	if displayName == "" {
		displayName = data.DisplayNameV2
	}
	return auth.Profile{
		ID:          data.ID,
		DisplayName: displayName,
		Email:       data.Email,
	}, nil
}
