// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Dagaz tracker tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halldor/dagaz/internal/models"
	"github.com/halldor/dagaz/internal/store"
	"github.com/halldor/dagaz/internal/tracker"
)

// Server wraps the MCP server with Dagaz tracker tools.
type Server struct {
	mcp *server.MCPServer
	svc *tracker.Service
}

// New creates a new MCP server with all tracker tools registered.
func New(svc *tracker.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_items",
		mcp.WithDescription("List bugs or tasks, optionally filtered by status slug and a search query. "+
			"Search matches any word against titles, descriptions, and comments."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Item kind: bug or task")),
		mcp.WithString("status", mcp.Description("Optional status slug filter (e.g. open, in-progress)")),
		mcp.WithString("query", mcp.Description("Optional search query")),
	), s.listItems)

	s.mcp.AddTool(mcp.NewTool("read_item",
		mcp.WithDescription("Read one item in full: description, links, comments, and change history."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Item kind: bug or task")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Item slug (e.g. crash-on-save)")),
	), s.readItem)

	s.mcp.AddTool(mcp.NewTool("create_item",
		mcp.WithDescription("Create a new bug or task. The status must come from the kind's catalogue; "+
			"read the dagaz://status-catalogue resource for the valid slugs."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Item kind: bug or task")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Item title")),
		mcp.WithString("description", mcp.Description("Markdown description")),
		mcp.WithString("status", mcp.Description("Initial status slug (defaults to the kind's first status)")),
		mcp.WithString("due_date", mcp.Description("Optional due date, YYYY-MM-DD")),
	), s.createItem)

	s.mcp.AddTool(mcp.NewTool("change_status",
		mcp.WithDescription("Move an item to a new status. The transition is recorded in the item's history."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Item kind: bug or task")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Item slug")),
		mcp.WithString("status", mcp.Required(), mcp.Description("Target status slug")),
		mcp.WithString("remark", mcp.Description("Optional remark stored with the transition")),
	), s.changeStatus)

	s.mcp.AddTool(mcp.NewTool("add_comment",
		mcp.WithDescription("Append a comment to an item's activity feed."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Item kind: bug or task")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Item slug")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Comment text (Markdown)")),
	), s.addComment)

	// Resource: the status catalogues for both kinds.
	s.mcp.AddResource(
		mcp.NewResource("dagaz://status-catalogue", "Status Catalogue",
			mcp.WithResourceDescription("Valid status slugs per item kind, with colors and final flags."),
			mcp.WithMIMEType("application/json"),
		),
		s.readStatusCatalogue,
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

func requireKind(req mcp.CallToolRequest) (models.Kind, error) {
	v, err := req.RequireString("kind")
	if err != nil {
		return "", err
	}
	kind := models.Kind(v)
	if !kind.Valid() {
		return "", fmt.Errorf("unknown kind %q (want bug or task)", v)
	}
	return kind, nil
}

func (s *Server) listItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := store.ListOptions{
		Kind:   kind,
		Search: req.GetString("query", ""),
		Limit:  50,
		Now:    time.Now().UTC(),
	}
	if status := req.GetString("status", ""); status != "" {
		opts.StatusSlugs = []string{status}
	}
	items, total, err := s.svc.List(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(struct {
		Total int           `json:"total"`
		Items []models.Item `json:"items"`
	}{total, items}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := s.svc.GetItem(ctx, kind, slug)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", kind, slug)), nil
	}
	out, _ := json.MarshalIndent(item, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var due *time.Time
	if v := req.GetString("due_date", ""); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("bad due_date %q: want YYYY-MM-DD", v)), nil
		}
		t = t.UTC()
		due = &t
	}

	item, err := s.svc.CreateItem(ctx, kind, title,
		req.GetString("description", ""), req.GetString("status", ""), due)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s/%s", kind, item.Slug)), nil
}

func (s *Server) changeStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.ChangeStatus(ctx, kind, slug, status, req.GetString("remark", "")); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("status changed: %s/%s -> %s", kind, slug, status)), nil
}

func (s *Server) addComment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.AddComment(ctx, kind, slug, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("comment added to %s/%s", kind, slug)), nil
}

func (s *Server) readStatusCatalogue(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	catalogue := make(map[string][]models.Status, 2)
	for _, kind := range []models.Kind{models.KindBug, models.KindTask} {
		statuses, err := s.svc.Statuses(ctx, kind)
		if err != nil {
			return nil, err
		}
		catalogue[string(kind)] = statuses
	}
	out, _ := json.MarshalIndent(catalogue, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dagaz://status-catalogue",
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}
