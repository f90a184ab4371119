// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the matching engine as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vetbridge/internal/apperr"
	"github.com/starford/vetbridge/internal/matchservice"
	"github.com/starford/vetbridge/internal/models"
	"github.com/starford/vetbridge/internal/query"
	"github.com/starford/vetbridge/internal/triage"
)

const protocolURI = "vetbridge://triage-protocol"

// Server wraps the MCP server with Vetbridge tools.
type Server struct {
	mcp *server.MCPServer
	svc *matchservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *matchservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Vetbridge",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_resources",
		mcp.WithDescription("Search the veteran resource catalog. Falls back to broader results when nothing matches; "+
			"the response says so in 'degraded' and 'level'."),
		mcp.WithString("query", mcp.Description("Free text")),
		mcp.WithString("category", mcp.Description("Category key, e.g. mental-health or housing")),
		mcp.WithArray("symptoms", mcp.WithStringItems(), mcp.Description("Symptom keys, e.g. ptsd, sleep")),
		mcp.WithString("location", mcp.Description("Two-letter state code, or 'national'")),
		mcp.WithString("type", mcp.Description("Resource type"), mcp.Enum("institutional", "grassroots", "regional")),
		mcp.WithNumber("min_rating", mcp.Description("Minimum rating, 0-5")),
		mcp.WithNumber("page", mcp.Description("Page number, from 1")),
		mcp.WithNumber("page_size", mcp.Description("Results per page")),
		mcp.WithString("seed", mcp.Description("Seed for a reproducible, track-balanced ordering")),
	), s.searchResources)

	s.mcp.AddTool(mcp.NewTool("get_resource",
		mcp.WithDescription("Read one catalog resource by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Resource id")),
	), s.getResource)

	s.mcp.AddTool(mcp.NewTool("recommend_resources",
		mcp.WithDescription("Build institutional, grassroots and regional recommendations. "+
			"Crisis severity always puts the Veterans Crisis Line first."),
		mcp.WithString("severity", mcp.Description("Severity tier"), mcp.Enum("low", "moderate", "high", "crisis")),
		mcp.WithString("category", mcp.Description("Category key")),
		mcp.WithArray("symptoms", mcp.WithStringItems(), mcp.Description("Symptom keys")),
		mcp.WithString("location", mcp.Description("Two-letter state code")),
		mcp.WithString("seed", mcp.Description("Seed for a reproducible ordering")),
	), s.recommendResources)

	s.mcp.AddTool(mcp.NewTool("triage_turn",
		mcp.WithDescription("Advance the intake wizard by one step. Pass back the 'session' from the previous "+
			"response unchanged. Read "+protocolURI+" first."),
		mcp.WithString("step", mcp.Required(), mcp.Description("Current step, 'welcome' to start")),
		mcp.WithString("user_message", mcp.Description("The veteran's latest answer")),
		mcp.WithString("category", mcp.Description("Category picked from the suggestions")),
		mcp.WithArray("symptoms", mcp.WithStringItems(), mcp.Description("Symptoms picked from the suggestions")),
		mcp.WithString("location", mcp.Description("Two-letter state code")),
		mcp.WithObject("session", mcp.Description("Session object returned by the previous turn")),
	), s.triageTurn)

	s.mcp.AddTool(mcp.NewTool("check_crisis",
		mcp.WithDescription("Screen text for crisis language. Returns crisis resources on a match."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to screen")),
	), s.checkCrisis)

	s.mcp.AddTool(mcp.NewTool("expand_symptoms",
		mcp.WithDescription("Expand symptom keys into the search terms used to match resources."),
		mcp.WithArray("symptoms", mcp.Required(), mcp.WithStringItems(), mcp.Description("Symptom keys")),
	), s.expandSymptoms)

	s.mcp.AddResource(
		mcp.NewResource(protocolURI, "Triage Protocol",
			mcp.WithResourceDescription("How the intake wizard moves between steps and handles crisis language."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readProtocol,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrCatalogUnavailable):
		return mcp.NewToolResultError("resource catalog unavailable, try again later")
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) searchResources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := query.Request{
		Query:        req.GetString("query", ""),
		Category:     req.GetString("category", ""),
		Symptoms:     req.GetStringSlice("symptoms", nil),
		Location:     req.GetString("location", ""),
		ResourceType: req.GetString("type", ""),
		Page:         req.GetInt("page", 0),
		PageSize:     req.GetInt("page_size", 0),
		Seed:         req.GetString("seed", ""),
	}
	if _, ok := req.GetArguments()["min_rating"]; ok {
		v := req.GetFloat("min_rating", 0)
		q.MinRating = &v
	}
	resp, err := s.svc.Search(ctx, q)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(resp)
}

func (s *Server) getResource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Resource(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(res)
}

func (s *Server) recommendResources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	set, err := s.svc.Recommend(ctx, matchservice.RecommendRequest{
		Severity: req.GetString("severity", ""),
		Category: req.GetString("category", ""),
		Symptoms: req.GetStringSlice("symptoms", nil),
		Location: req.GetString("location", ""),
		Seed:     req.GetString("seed", ""),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(set)
}

func (s *Server) triageTurn(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	step, err := req.RequireString("step")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	turn := triage.Request{
		Step:        step,
		UserMessage: req.GetString("user_message", ""),
		Category:    req.GetString("category", ""),
		Symptoms:    req.GetStringSlice("symptoms", nil),
		Location:    req.GetString("location", ""),
	}
	if raw, ok := req.GetArguments()["session"]; ok && raw != nil {
		sess, err := decodeSession(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		turn.Session = sess
	}
	return jsonResult(s.svc.Triage(ctx, turn))
}

// decodeSession accepts the session as an object or as its JSON text.
func decodeSession(raw any) (*models.Session, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		data = b
	}
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return &sess, nil
}

func (s *Server) checkCrisis(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.CheckCrisis(text))
}

func (s *Server) expandSymptoms(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys, err := req.RequireStringSlice("symptoms")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.ExpandSymptoms(keys))
}

func (s *Server) readProtocol(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      protocolURI,
			MIMEType: "text/markdown",
			Text:     TriageProtocol,
		},
	}, nil
}
