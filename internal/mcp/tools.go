// ABOUTME: MCP tool definitions and registration for the confidant server
// ABOUTME: Each tool takes an optional user_id that falls back to the default user
package mcp

import (
	"time"

	"github.com/harper/confidant/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

var userIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "User identifier (default: the configured default user)",
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, sessions *session.Service, defaultUser string) *Handlers {
	handlers := &Handlers{
		sessions:    sessions,
		defaultUser: defaultUser,
		now:         time.Now,
	}

	// 1. reflect - one conversation turn
	server.AddTool(mcp.Tool{
		Name:        "reflect",
		Description: "Share something with the journal companion. Returns its reply, how many memories were stored, and any achievements unlocked by this turn.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"message": map[string]interface{}{
					"type":        "string",
					"description": "What the user wants to say",
				},
				"user_id": userIDProperty,
			},
			Required: []string{"message"},
		},
	}, handlers.Reflect)

	// 2. end_session - closing summary
	server.AddTool(mcp.Tool{
		Name:        "end_session",
		Description: "Close the current session with a short, warm summary of what was discussed.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProperty,
			},
		},
	}, handlers.EndSession)

	// 3. list_memories - recent memories, optionally filtered by category
	server.AddTool(mcp.Tool{
		Name:        "list_memories",
		Description: "List the most recent memories stored for a user, optionally filtered by category.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProperty,
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Only list memories in this category (e.g. fear_patterns)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of memories to return (default: 10)",
					"default":     defaultMemoryLimit,
				},
			},
		},
	}, handlers.ListMemories)

	// 4. relationship_stats - days together, streaks, depth
	server.AddTool(mcp.Tool{
		Name:        "relationship_stats",
		Description: "Get relationship statistics: days together, sessions, streaks and connection depth.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProperty,
			},
		},
	}, handlers.RelationshipStats)

	// 5. check_achievements - unlock anything newly earned
	server.AddTool(mcp.Tool{
		Name:        "check_achievements",
		Description: "Evaluate achievement rules and return any achievements newly unlocked.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProperty,
			},
		},
	}, handlers.CheckAchievements)

	// 6. areas_to_work_on - recurring struggle themes
	server.AddTool(mcp.Tool{
		Name:        "areas_to_work_on",
		Description: "List recurring struggle themes with how often they appeared and short examples.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"user_id": userIDProperty,
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of areas to return (default: 5)",
					"default":     defaultAreaLimit,
				},
			},
		},
	}, handlers.AreasToWorkOn)

	return handlers
}
