package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/FredrikJonassonItsb/talkbridge/internal/server"
)

// RegisterUserResources registers session-specific user resources.
// These resources provide information about the authenticated Nextcloud
// account and the active provisioning configuration.
func RegisterUserResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Register user profile resource
	profileResource := mcp.NewResource(
		"user://profile",
		"Current User Profile",
		mcp.WithResourceDescription("Information about the currently authenticated Nextcloud account"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(profileResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleUserProfile(ctx, request, sc)
	})

	// Register server configuration resource
	configResource := mcp.NewResource(
		"server://config",
		"Server Configuration",
		mcp.WithResourceDescription("Nextcloud server URL and provisioning configuration"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(configResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleServerConfig(ctx, request, sc)
	})

	return nil
}

// handleUserProfile returns the cached profile of the signed-in user
func handleUserProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	profile, ok, err := sc.TokenManager().Profile()
	if err != nil {
		return nil, fmt.Errorf("failed to read user profile: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("not signed in: no user profile available")
	}

	_, authenticated := sc.TokenManager().CurrentAccessToken()

	profileData := map[string]interface{}{
		"id":            profile.ID,
		"displayName":   profile.DisplayName,
		"email":         profile.Email,
		"server":        sc.Config().ServerURL,
		"authenticated": authenticated,
	}

	jsonData, err := json.MarshalIndent(profileData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal profile data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleServerConfig returns the provisioning configuration in effect
func handleServerConfig(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()

	configData := map[string]interface{}{
		"server":         cfg.ServerURL,
		"calendar":       cfg.Calendar,
		"roomType":       cfg.RoomType,
		"clientId":       cfg.ClientID,
		"activeSessions": sc.Sessions().Len(),
	}

	jsonData, err := json.MarshalIndent(configData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
