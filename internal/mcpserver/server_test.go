package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/vetbridge/internal/matchservice"
	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/recommend"
	"github.com/starford/vetbridge/internal/search"
	"github.com/starford/vetbridge/internal/taxonomy"
	"github.com/starford/vetbridge/internal/testutil"
	"github.com/starford/vetbridge/internal/triage"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db := testutil.SeededDB(t,
		models.Resource{ID: "vet-center", Title: "Vet Center", Description: "Readjustment counseling for PTSD.",
			Categories: []string{"mental-health"}, OrgType: models.OrgInstitutional, Rating: 4.5},
		models.Resource{ID: "retreat", Title: "Warrior Retreat", Tags: []string{"trauma"},
			Categories: []string{"mental-health"}, OrgType: models.OrgGrassroots, Rating: 4.2},
	)
	tax := taxonomy.Default()
	engine := search.NewEngine(db, tax, search.DefaultConfig(), testutil.Logger())
	builder := recommend.New(engine, recommend.DefaultConfig(), testutil.Logger())
	machine := triage.New(nil, builder, tax, triage.Config{}, testutil.Logger())
	return New(matchservice.New(engine, builder, machine, tax), "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"search_resources":    srv.searchResources,
		"get_resource":        srv.getResource,
		"recommend_resources": srv.recommendResources,
		"triage_turn":         srv.triageTurn,
		"check_crisis":        srv.checkCrisis,
		"expand_symptoms":     srv.expandSymptoms,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchResources(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "search_resources", map[string]any{
		"symptoms":   []any{"ptsd"},
		"min_rating": 4.3,
	})
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	var resp search.Response
	if err := json.Unmarshal([]byte(resultText(r)), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "vet-center" {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestGetResource(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_resource", map[string]any{"id": "retreat"})
	if r.IsError || !strings.Contains(resultText(r), "Warrior Retreat") {
		t.Errorf("result = %q", resultText(r))
	}

	r = callTool(t, srv, "get_resource", map[string]any{"id": "missing"})
	if !r.IsError {
		t.Error("expected error for missing resource")
	}

	r = callTool(t, srv, "get_resource", map[string]any{})
	if !r.IsError {
		t.Error("expected error without id")
	}
}

func TestRecommendResources(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "recommend_resources", map[string]any{
		"severity": "crisis",
		"symptoms": []any{"ptsd"},
		"seed":     "abc123",
	})
	if r.IsError {
		t.Fatalf("error: %s", resultText(r))
	}
	var set models.RecommendationSet
	if err := json.Unmarshal([]byte(resultText(r)), &set); err != nil {
		t.Fatal(err)
	}
	if len(set.Institutional) == 0 || set.Institutional[0].ResourceID != "veterans-crisis-line" {
		t.Errorf("institutional = %+v", set.Institutional)
	}
}

func TestTriageTurn_RoundTripsSession(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "triage_turn", map[string]any{"step": "welcome"})
	var first triage.Response
	if err := json.Unmarshal([]byte(resultText(r)), &first); err != nil {
		t.Fatal(err)
	}
	if first.NextStep != models.StepCategory || first.Session.ID == "" {
		t.Fatalf("first turn = %+v", first)
	}

	var session map[string]any
	raw, _ := json.Marshal(first.Session)
	_ = json.Unmarshal(raw, &session)

	r = callTool(t, srv, "triage_turn", map[string]any{
		"step":         string(first.NextStep),
		"user_message": "I need help with housing",
		"session":      session,
	})
	var second triage.Response
	if err := json.Unmarshal([]byte(resultText(r)), &second); err != nil {
		t.Fatal(err)
	}
	if second.Session.ID != first.Session.ID {
		t.Errorf("session id changed: %q -> %q", first.Session.ID, second.Session.ID)
	}
	if second.Session.Answers.Category != taxonomy.CategoryHousing {
		t.Errorf("category = %q", second.Session.Answers.Category)
	}
}

func TestTriageTurn_SessionAsText(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "triage_turn", map[string]any{
		"step":    "context",
		"session": `{"id":"s1","step":"context","crisis":true}`,
	})
	var resp triage.Response
	if err := json.Unmarshal([]byte(resultText(r)), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.IsCrisis {
		t.Error("crisis session should stay in crisis")
	}

	r = callTool(t, srv, "triage_turn", map[string]any{"step": "context", "session": "{broken"})
	if !r.IsError {
		t.Error("expected error for malformed session")
	}
}

func TestCheckCrisis(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "check_crisis", map[string]any{"text": "some days I want to die"})
	if !strings.Contains(resultText(r), `"isCrisis": true`) {
		t.Errorf("result = %q", resultText(r))
	}
	r = callTool(t, srv, "check_crisis", map[string]any{"text": "looking for a job"})
	if !strings.Contains(resultText(r), `"isCrisis": false`) {
		t.Errorf("result = %q", resultText(r))
	}
}

func TestExpandSymptoms(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "expand_symptoms", map[string]any{"symptoms": []any{"ptsd"}})
	var got map[string][]string
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, term := range got["ptsd"] {
		if term == "trauma" {
			found = true
		}
	}
	if !found {
		t.Errorf("ptsd expansion %v lacks trauma", got["ptsd"])
	}
}

func TestReadProtocol(t *testing.T) {
	srv := testServer(t)
	contents, err := srv.readProtocol(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || !strings.Contains(tc.Text, "Crisis handling") {
		t.Errorf("contents = %+v", contents)
	}
}
