package talk_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/FredrikJonassonItsb/talkbridge/internal/attendee"
	"github.com/FredrikJonassonItsb/talkbridge/internal/provision"
	"github.com/FredrikJonassonItsb/talkbridge/internal/server"
	"github.com/FredrikJonassonItsb/talkbridge/internal/tools/batch"
	"github.com/FredrikJonassonItsb/talkbridge/internal/tools/common"
)

// attendeeView is one attendee with its current security settings and the
// per-field editability derived from them.
type attendeeView struct {
	Email              string                    `json:"email"`
	Name               string                    `json:"name,omitempty"`
	Type               string                    `json:"type"`
	Settings           attendee.SecuritySettings `json:"settings"`
	PersonalIDEditable bool                      `json:"personalIdEditable"`
	SMSNumberEditable  bool                      `json:"smsNumberEditable"`
}

func attendeeViews(enriched []attendee.Enriched) []attendeeView {
	out := make([]attendeeView, 0, len(enriched))
	for _, e := range enriched {
		out = append(out, attendeeView{
			Email:              e.Email,
			Name:               e.Name,
			Type:               e.Type,
			Settings:           e.Settings,
			PersonalIDEditable: e.Settings.PersonalIDEditable(),
			SMSNumberEditable:  e.Settings.SMSNumberEditable(),
		})
	}
	return out
}

// RegisterTalkTools registers the Talk room and meeting provisioning tools
// with the MCP server. Write tools are skipped in read-only mode.
func RegisterTalkTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	registerSessionTools(s, sc)

	if readOnly {
		return nil
	}

	registerCreateRoomTool(s, sc)
	registerProvisionTool(s, sc)
	return nil
}

func registerCreateRoomTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("talk_create_room",
		mcp.WithDescription("Create one or more Nextcloud Talk rooms. Accepts a single room name "+
			"or an array of names; each room is created independently and partial failures are reported per name."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Room name, or a JSON array of room names"),
		),
		mcp.WithNumber("roomType",
			mcp.Description("Talk room type (default: the configured type, 3 = public)"),
		),
	)

	s.AddTool(tool, common.InstrumentedToolHandlerWithService("talk_create_room", "talk", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, ok := request.Params.Arguments.(map[string]interface{})
			if !ok {
				return mcp.NewToolResultError("name is required"), nil
			}

			names, err := batch.ParseStringOrArray(args["name"], "name")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			roomType := sc.Config().RoomType
			if v, ok := args["roomType"].(float64); ok {
				roomType = int(v)
			}

			results := batch.ProcessBatch(names, func(name string) (string, error) {
				room, err := sc.NextcloudClient().CreateRoom(ctx, name, roomType)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("created room %q (token %s): %s", room.Name, room.Token, room.URL), nil
			})

			return mcp.NewToolResultText(batch.FormatResults(results)), nil
		}))
}

func registerSessionTools(s *mcpserver.MCPServer, sc *server.ServerContext) {
	loadTool := mcp.NewTool("meeting_load_attendees",
		mcp.WithDescription("Load the attendee list from an appointment into an editing session. "+
			"New attendees get default security settings; settings of attendees no longer present are dropped. "+
			"Returns the session id to use with meeting_set_security and meeting_provision."),
		mcp.WithString("appointment",
			mcp.Required(),
			mcp.Description("Appointment snapshot as JSON: subject, start, end, body, requiredAttendees, optionalAttendees"),
		),
		mcp.WithString("sessionId",
			mcp.Description("Existing session id; omit to start a new session"),
		),
	)

	s.AddTool(loadTool, common.InstrumentedToolHandler("meeting_load_attendees", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			snap, err := parseSnapshot(args["appointment"])
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			sessionID, session, errResult := resolveSession(sc, args, true)
			if errResult != nil {
				return errResult, nil
			}

			attendees, err := session.LoadAttendees(ctx, newSnapshotHost(snap))
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to load attendees: %v", err)), nil
			}

			out, _ := json.MarshalIndent(struct {
				SessionID string         `json:"sessionId"`
				Attendees []attendeeView `json:"attendees"`
			}{
				SessionID: sessionID,
				Attendees: attendeeViews(attendee.MergeAll(attendees, session.Settings())),
			}, "", "  ")
			return mcp.NewToolResultText(string(out)), nil
		}))

	setTool := mcp.NewTool("meeting_set_security",
		mcp.WithDescription("Set the security settings for one attendee in an editing session. "+
			"Fields not applicable under the chosen authentication level and notification channel are cleared."),
		mcp.WithString("sessionId",
			mcp.Required(),
			mcp.Description("Session id from meeting_load_attendees"),
		),
		mcp.WithString("email",
			mcp.Required(),
			mcp.Description("Attendee email address"),
		),
		mcp.WithString("authLevel",
			mcp.Description("Required authentication: none, sms, or loa3 (default: none)"),
		),
		mcp.WithBoolean("secureEmail",
			mcp.Description("Deliver the invitation as secure email"),
		),
		mcp.WithString("personalId",
			mcp.Description("National personal number; applies only with loa3 or secure email"),
		),
		mcp.WithString("smsNumber",
			mcp.Description("Mobile number; applies only with sms authentication or email+sms notification"),
		),
		mcp.WithString("notification",
			mcp.Description("Notification channels: email or email+sms (default: email)"),
		),
	)

	s.AddTool(setTool, common.InstrumentedToolHandler("meeting_set_security", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			_, session, errResult := resolveSession(sc, args, false)
			if errResult != nil {
				return errResult, nil
			}

			email, _ := args["email"].(string)
			if email == "" {
				return mcp.NewToolResultError("email is required"), nil
			}

			settings := session.SettingsFor(email)
			if v, ok := args["authLevel"].(string); ok && v != "" {
				settings.AuthLevel = attendee.AuthLevel(v)
			}
			if v, ok := args["secureEmail"].(bool); ok {
				settings.SecureEmail = v
			}
			if v, ok := args["personalId"].(string); ok {
				settings.PersonalID = v
			}
			if v, ok := args["smsNumber"].(string); ok {
				settings.SMSNumber = v
			}
			if v, ok := args["notification"].(string); ok && v != "" {
				settings.Notification = attendee.Notification(v)
			}

			session.SetSettings(email, settings)
			applied := session.SettingsFor(email)

			out, _ := json.MarshalIndent(struct {
				Email              string                    `json:"email"`
				Settings           attendee.SecuritySettings `json:"settings"`
				PersonalIDEditable bool                      `json:"personalIdEditable"`
				SMSNumberEditable  bool                      `json:"smsNumberEditable"`
			}{
				Email:              email,
				Settings:           applied,
				PersonalIDEditable: applied.PersonalIDEditable(),
				SMSNumberEditable:  applied.SMSNumberEditable(),
			}, "", "  ")
			return mcp.NewToolResultText(string(out)), nil
		}))

	clearTool := mcp.NewTool("meeting_clear_session",
		mcp.WithDescription("Discard an editing session and its attendee security settings."),
		mcp.WithString("sessionId",
			mcp.Required(),
			mcp.Description("Session id from meeting_load_attendees"),
		),
	)

	s.AddTool(clearTool, common.InstrumentedToolHandler("meeting_clear_session", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})
			id, _ := args["sessionId"].(string)
			if id == "" {
				return mcp.NewToolResultError("sessionId is required"), nil
			}
			sc.Sessions().Remove(id)
			return mcp.NewToolResultText("Session discarded"), nil
		}))
}

func registerProvisionTool(s *mcpserver.MCPServer, sc *server.ServerContext) {
	tool := mcp.NewTool("meeting_provision",
		mcp.WithDescription("Provision a Talk meeting for an appointment: validate it, create the Talk room, "+
			"write the calendar event with per-attendee security directives, and update the appointment body "+
			"and location. Completed steps are not rolled back on failure; the result reports how far provisioning got."),
		mcp.WithString("appointment",
			mcp.Required(),
			mcp.Description("Appointment snapshot as JSON: subject, start, end, body, requiredAttendees, optionalAttendees"),
		),
		mcp.WithString("sessionId",
			mcp.Description("Editing session carrying attendee security settings; omit for defaults"),
		),
	)

	s.AddTool(tool, common.InstrumentedToolHandlerWithService("meeting_provision", "talk", "provision", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			snap, err := parseSnapshot(args["appointment"])
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			var session *provision.Session
			sessionID, _ := args["sessionId"].(string)
			if sessionID != "" {
				var ok bool
				session, ok = sc.Sessions().Get(sessionID)
				if !ok {
					return mcp.NewToolResultError(fmt.Sprintf("unknown session %q", sessionID)), nil
				}
			}

			host := newSnapshotHost(snap)
			pipeline := provision.NewPipeline(sc.Config(), sc.NextcloudClient(), sc.NextcloudClient(),
				sc.TokenManager(), host, nil)

			result := pipeline.Run(ctx, session)

			steps := make([]string, 0, len(result.SucceededSteps))
			for _, step := range result.SucceededSteps {
				steps = append(steps, string(step))
			}

			if result.Err != nil {
				out, _ := json.MarshalIndent(struct {
					Error          string   `json:"error"`
					SucceededSteps []string `json:"succeededSteps"`
					RoomURL        string   `json:"roomUrl,omitempty"`
					CalendarUID    string   `json:"calendarUid,omitempty"`
				}{
					Error:          result.Err.Error(),
					SucceededSteps: steps,
					RoomURL:        roomURL(result),
					CalendarUID:    result.CalendarUID,
				}, "", "  ")
				return mcp.NewToolResultError(string(out)), nil
			}

			// Settings never outlive the action that consumed them.
			if sessionID != "" {
				sc.Sessions().Remove(sessionID)
			}

			mutated := host.Result()
			out, _ := json.MarshalIndent(struct {
				SucceededSteps []string `json:"succeededSteps"`
				RoomName       string   `json:"roomName"`
				RoomToken      string   `json:"roomToken"`
				RoomURL        string   `json:"roomUrl"`
				CalendarUID    string   `json:"calendarUid"`
				Body           string   `json:"body"`
				Location       string   `json:"location"`
			}{
				SucceededSteps: steps,
				RoomName:       result.Room.Name,
				RoomToken:      result.Room.Token,
				RoomURL:        result.Room.URL,
				CalendarUID:    result.CalendarUID,
				Body:           mutated.Body,
				Location:       mutated.Location,
			}, "", "  ")
			return mcp.NewToolResultText(string(out)), nil
		}))
}

func roomURL(r *provision.Result) string {
	if r.Room == nil {
		return ""
	}
	return r.Room.URL
}

// resolveSession finds the session named by the sessionId argument. With
// createMissing set, an absent or empty id starts a fresh session.
func resolveSession(sc *server.ServerContext, args map[string]interface{}, createMissing bool) (string, *provision.Session, *mcp.CallToolResult) {
	id, _ := args["sessionId"].(string)
	if id == "" {
		if !createMissing {
			return "", nil, mcp.NewToolResultError("sessionId is required")
		}
		newID, session := sc.Sessions().Create()
		return newID, session, nil
	}

	session, ok := sc.Sessions().Get(id)
	if !ok {
		if !createMissing {
			return "", nil, mcp.NewToolResultError(fmt.Sprintf("unknown session %q", id))
		}
		id, session = sc.Sessions().Create()
	}
	return id, session, nil
}
