// ABOUTME: MCP tool handler implementations backed by the session and memory services
// ABOUTME: Failures are returned as tool errors so the agent sees them, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harper/confidant/internal/models"
	"github.com/harper/confidant/internal/relationship"
	"github.com/harper/confidant/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	defaultMemoryLimit = 10
	maxMemoryLimit     = 100
	defaultAreaLimit   = 5
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	sessions    *session.Service
	defaultUser string
	now         func() time.Time
}

func (h *Handlers) userKey(request mcp.CallToolRequest) string {
	if id := strings.TrimSpace(request.GetString("user_id", "")); id != "" {
		return id
	}
	return h.defaultUser
}

// Reflect handles the reflect tool
func (h *Handlers) Reflect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	if strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("message cannot be empty"), nil
	}

	result, err := h.sessions.ProcessInput(ctx, h.userKey(request), message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reflect failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"response":        result.Response,
		"memories_stored": result.MemoriesStored,
		"unlocked":        achievementSummaries(result.Unlocked),
	})
}

// EndSession handles the end_session tool
func (h *Handlers) EndSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := h.sessions.EndSession(ctx, h.userKey(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to end session: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{"summary": summary})
}

// ListMemories handles the list_memories tool
func (h *Handlers) ListMemories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultMemoryLimit)
	if limit < 1 {
		limit = defaultMemoryLimit
	}
	if limit > maxMemoryLimit {
		limit = maxMemoryLimit
	}
	category := strings.TrimSpace(request.GetString("category", ""))

	mem := h.sessions.Memory()
	u, err := mem.User(ctx, h.userKey(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load user: %v", err)), nil
	}
	memories, err := mem.Store().RecentMemories(ctx, u.ID, limit, category)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list memories: %v", err)), nil
	}

	items := make([]map[string]interface{}, 0, len(memories))
	for _, m := range memories {
		items = append(items, map[string]interface{}{
			"id":              m.ID,
			"observation":     m.Observation,
			"interpretation":  m.Interpretation,
			"category":        m.Category,
			"relevance_score": m.RelevanceScore,
			"created_at":      m.CreatedAt.Format(time.RFC3339),
		})
	}

	return jsonResult(map[string]interface{}{
		"memories": items,
		"count":    len(items),
	})
}

// RelationshipStats handles the relationship_stats tool
func (h *Handlers) RelationshipStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.sessions.Memory().RelationshipStats(ctx, h.userKey(request), h.now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load relationship stats: %v", err)), nil
	}
	return jsonResult(stats)
}

// CheckAchievements handles the check_achievements tool
func (h *Handlers) CheckAchievements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mem := h.sessions.Memory()
	u, err := mem.User(ctx, h.userKey(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load user: %v", err)), nil
	}
	unlocked, err := mem.Store().CheckAndUnlockAchievements(ctx, u.ID, h.now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to check achievements: %v", err)), nil
	}
	return jsonResult(map[string]interface{}{
		"unlocked": achievementSummaries(unlocked),
	})
}

// AreasToWorkOn handles the areas_to_work_on tool
func (h *Handlers) AreasToWorkOn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultAreaLimit)
	if limit < 1 {
		limit = defaultAreaLimit
	}

	areas, err := h.sessions.Memory().AreasToWorkOn(ctx, h.userKey(request), limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load areas: %v", err)), nil
	}
	if areas == nil {
		areas = []models.AreaToWorkOn{}
	}
	return jsonResult(map[string]interface{}{"areas": areas})
}

func achievementSummaries(list []models.Achievement) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(list))
	for _, a := range list {
		item := map[string]interface{}{
			"id":              a.ID,
			"achievement_key": a.Key,
			"unlocked_at":     a.UnlockedAt.Format(time.RFC3339),
		}
		if def, ok := relationship.Lookup(a.Key); ok {
			item["title"] = def.Title
			item["description"] = def.Description
		}
		out = append(out, item)
	}
	return out
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
