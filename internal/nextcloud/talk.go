package nextcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
)

// RoomDescriptor is the result of creating a Talk room. Immutable once
// received; consumed to build the calendar event and the appointment body.
type RoomDescriptor struct {
	Token  string `json:"token"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	RoomID int64  `json:"roomId"`
}

type createRoomRequest struct {
	RoomType int    `json:"roomType"`
	RoomName string `json:"roomName"`
}

// ocsRoomResponse is the envelope of the Talk room endpoint. Older servers
// report the room name as displayName.
type ocsRoomResponse struct {
	OCS struct {
		Data struct {
			Token       string `json:"token"`
			Name        string `json:"name"`
			DisplayName string `json:"displayName"`
			ID          int64  `json:"id"`
		} `json:"data"`
	} `json:"ocs"`
}

// CreateRoom creates a Talk room named roomName. The join URL is synthesized
// client-side from the returned room token.
func (c *Client) CreateRoom(ctx context.Context, roomName string, roomType int) (*RoomDescriptor, error) {
	if roomName == "" {
		roomName = "Meeting"
	}
	if roomType == 0 {
		roomType = c.cfg.RoomType
	}

	body, err := json.Marshal(createRoomRequest{RoomType: roomType, RoomName: roomName})
	if err != nil {
		return nil, err
	}

	req, err := c.request(ctx, http.MethodPost, c.cfg.TalkRoomURL(), string(body))
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create room request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError("create room", resp)
	}

	var parsed ocsRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("invalid room response: %w", err)
	}

	data := parsed.OCS.Data
	name := data.Name
	if name == "" {
		name = data.DisplayName
	}
	room := &RoomDescriptor{
		Token:  data.Token,
		Name:   name,
		URL:    c.cfg.CallURL(data.Token),
		RoomID: data.ID,
	}

	c.logger.Info("talk room created",
		logging.KeyRoom, room.Token,
		logging.KeyServer, logging.ServerHost(c.cfg.ServerURL))
	return room, nil
}
