// ABOUTME: Tests for MCP tool handlers against an in-memory store and a fake model
// ABOUTME: Verifies tool results, default users and tool-level error reporting
package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/harper/confidant/internal/interpreter"
	"github.com/harper/confidant/internal/llm"
	"github.com/harper/confidant/internal/memory"
	"github.com/harper/confidant/internal/models"
	"github.com/harper/confidant/internal/session"
	"github.com/harper/confidant/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

type fakeModel struct{}

func (fakeModel) Complete(ctx context.Context, tier llm.Tier, req llm.Request) (*llm.Response, error) {
	if tier == llm.TierLight {
		return &llm.Response{Content: `[{"observation":"Afraid of letting the team down","category":"fear_patterns","relevance_score":8,"people_mentioned":["Priya"]}]`}, nil
	}
	return &llm.Response{Content: "That sounds heavy. What would help tonight?"}, nil
}

func setupHandlers(t *testing.T) *Handlers {
	t.Helper()
	store, err := storage.NewInMemory()
	if err != nil {
		t.Fatalf("NewInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	sessions := session.NewService(memory.NewService(store), interpreter.New(fakeModel{}, nil, nil))
	server := mcpserver.NewMCPServer("confidant-test", "0.0.0")
	return RegisterTools(server, sessions, "default_user")
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	if res == nil {
		t.Fatal("nil result")
	}
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	if res.IsError {
		t.Fatalf("tool error: %s", text.Text)
	}
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", text.Text, err)
	}
	return out
}

func TestReflect(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	res, err := h.Reflect(ctx, callRequest(map[string]any{"message": "Big demo tomorrow", "user_id": "alice"}))
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	out := resultJSON(t, res)

	if out["response"] != "That sounds heavy. What would help tonight?" {
		t.Errorf("response = %v", out["response"])
	}
	if out["memories_stored"] != float64(1) {
		t.Errorf("memories_stored = %v, want 1", out["memories_stored"])
	}
	unlocked, _ := out["unlocked"].([]interface{})
	if len(unlocked) != 1 {
		t.Fatalf("unlocked = %v, want first_step", out["unlocked"])
	}
	first := unlocked[0].(map[string]interface{})
	if first["achievement_key"] != "first_step" || first["title"] != "First Step" {
		t.Errorf("unlocked[0] = %v", first)
	}
}

func TestReflect_Validation(t *testing.T) {
	h := setupHandlers(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing message", map[string]any{}},
		{"blank message", map[string]any{"message": "   "}},
		{"wrong type", map[string]any{"message": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.Reflect(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("Reflect() protocol error = %v", err)
			}
			if !res.IsError {
				t.Error("expected a tool error")
			}
		})
	}
}

func TestListMemories(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	if _, err := h.Reflect(ctx, callRequest(map[string]any{"message": "Big demo tomorrow"})); err != nil {
		t.Fatal(err)
	}
	if _, err := h.sessions.Memory().StoreObservation(ctx, "default_user", models.Observation{Observation: "Slept well", Category: "self_care"}); err != nil {
		t.Fatal(err)
	}

	out := resultJSON(t, mustCall(t, h.ListMemories, map[string]any{}))
	if out["count"] != float64(2) {
		t.Errorf("count = %v, want 2", out["count"])
	}

	out = resultJSON(t, mustCall(t, h.ListMemories, map[string]any{"category": "fear_patterns"}))
	memories := out["memories"].([]interface{})
	if len(memories) != 1 {
		t.Fatalf("filtered memories = %d, want 1", len(memories))
	}
	if memories[0].(map[string]interface{})["observation"] != "Afraid of letting the team down" {
		t.Errorf("memory = %v", memories[0])
	}

	out = resultJSON(t, mustCall(t, h.ListMemories, map[string]any{"limit": 1}))
	if out["count"] != float64(1) {
		t.Errorf("limited count = %v, want 1", out["count"])
	}
}

func TestRelationshipStatsAndAchievements(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	if _, err := h.Reflect(ctx, callRequest(map[string]any{"message": "hello", "user_id": "bo"})); err != nil {
		t.Fatal(err)
	}

	stats := resultJSON(t, mustCall(t, h.RelationshipStats, map[string]any{"user_id": "bo"}))
	if stats["total_sessions"] != float64(1) {
		t.Errorf("total_sessions = %v, want 1", stats["total_sessions"])
	}
	if stats["days_together"] != float64(1) {
		t.Errorf("days_together = %v, want 1", stats["days_together"])
	}

	check := resultJSON(t, mustCall(t, h.CheckAchievements, map[string]any{"user_id": "bo"}))
	if got := check["unlocked"].([]interface{}); len(got) != 0 {
		t.Errorf("second check unlocked %v, want nothing", got)
	}

	fresh := resultJSON(t, mustCall(t, h.RelationshipStats, map[string]any{"user_id": "nobody"}))
	if fresh["total_sessions"] != float64(0) {
		t.Errorf("new user total_sessions = %v, want 0", fresh["total_sessions"])
	}
}

func TestAreasToWorkOn(t *testing.T) {
	h := setupHandlers(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := h.Reflect(ctx, callRequest(map[string]any{"message": "worried again"})); err != nil {
			t.Fatal(err)
		}
	}

	out := resultJSON(t, mustCall(t, h.AreasToWorkOn, map[string]any{}))
	areas := out["areas"].([]interface{})
	if len(areas) != 1 {
		t.Fatalf("areas = %v, want one", areas)
	}
	area := areas[0].(map[string]interface{})
	if area["title"] != "Fear Patterns" || area["frequency"] != float64(3) {
		t.Errorf("area = %v", area)
	}

	empty := resultJSON(t, mustCall(t, h.AreasToWorkOn, map[string]any{"user_id": "someone-else"}))
	if got := empty["areas"].([]interface{}); len(got) != 0 {
		t.Errorf("areas for new user = %v, want empty", got)
	}
}

func TestEndSession(t *testing.T) {
	h := setupHandlers(t)

	out := resultJSON(t, mustCall(t, h.EndSession, map[string]any{}))
	if out["summary"] == "" {
		t.Error("summary should not be empty")
	}
}

func mustCall(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := fn(context.Background(), callRequest(args))
	if err != nil {
		t.Fatalf("tool call error = %v", err)
	}
	return res
}
