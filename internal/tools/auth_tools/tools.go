package auth_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/FredrikJonassonItsb/talkbridge/internal/auth"
	"github.com/FredrikJonassonItsb/talkbridge/internal/browser"
	"github.com/FredrikJonassonItsb/talkbridge/internal/server"
	"github.com/FredrikJonassonItsb/talkbridge/internal/tools/common"
)

// statusReport is the JSON shape returned by the nextcloud_status tool.
type statusReport struct {
	Server        string `json:"server"`
	Reachable     bool   `json:"reachable"`
	Version       string `json:"version,omitempty"`
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
}

// RegisterAuthTools registers the authentication tools with the MCP server.
func RegisterAuthTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	loginTool := mcp.NewTool("nextcloud_login",
		mcp.WithDescription("Sign in to a Nextcloud server. Opens the system browser for the "+
			"OAuth2 authorization flow and waits until the sign-in completes or times out."),
		mcp.WithString("server",
			mcp.Description("Nextcloud server URL (default: the configured server)"),
		),
	)

	s.AddTool(loginTool, common.InstrumentedToolHandler("nextcloud_login", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, _ := request.Params.Arguments.(map[string]interface{})

			serverURL := sc.Config().ServerURL
			if v, ok := args["server"].(string); ok && v != "" {
				serverURL = v
			}
			if serverURL == "" {
				return mcp.NewToolResultError("server is required: no server URL configured"), nil
			}

			flow := sc.FlowController()

			redirect := auth.NewRedirectServer(flow, nil)
			if err := redirect.Start(); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to start redirect listener: %v", err)), nil
			}
			defer func() { _ = redirect.Shutdown(context.Background()) }()

			sc.Config().RedirectURI = redirect.URL()

			opener := browser.WindowOpener{Completed: redirect.Completed}
			transport := auth.NewExternalTransport(opener, sc.TokenManager(), nil)
			flow.SetTransports(transport)

			res, err := flow.Login(ctx, serverURL)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Sign-in failed: %v", err)), nil
			}
			if res.Status == auth.StatusCancelled {
				return mcp.NewToolResultText("Sign-in cancelled"), nil
			}

			profile, ok, _ := sc.TokenManager().Profile()
			if ok {
				return mcp.NewToolResultText(fmt.Sprintf("Signed in to %s as %s", serverURL, profile.ID)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("Signed in to %s", serverURL)), nil
		}))

	logoutTool := mcp.NewTool("nextcloud_logout",
		mcp.WithDescription("Sign out from the Nextcloud server. Removes the stored tokens and profile."),
	)

	s.AddTool(logoutTool, common.InstrumentedToolHandler("nextcloud_logout", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if err := sc.TokenManager().Logout(); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to sign out: %v", err)), nil
			}
			return mcp.NewToolResultText("Signed out"), nil
		}))

	statusTool := mcp.NewTool("nextcloud_status",
		mcp.WithDescription("Report the connection and authentication status for the configured Nextcloud server."),
	)

	s.AddTool(statusTool, common.InstrumentedToolHandlerWithService("nextcloud_status", "status", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			report := statusReport{
				Server: sc.Config().ServerURL,
			}

			if status, err := sc.NextcloudClient().Status(ctx); err == nil {
				report.Reachable = status.Installed
				report.Version = status.Version
			}

			_, report.Authenticated = sc.TokenManager().CurrentAccessToken()
			if profile, ok, _ := sc.TokenManager().Profile(); ok {
				report.User = profile.ID
				report.DisplayName = profile.DisplayName
			}

			out, _ := json.MarshalIndent(report, "", "  ")
			return mcp.NewToolResultText(string(out)), nil
		}))

	return nil
}
