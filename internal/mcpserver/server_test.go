package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/halldor/dagaz/internal/models"
	"github.com/halldor/dagaz/internal/testutil"
	"github.com/halldor/dagaz/internal/tracker"
)

func testServer(t *testing.T) (*Server, *tracker.Service) {
	t.Helper()
	svc := tracker.NewService(testutil.TestDB(t), nil)
	return New(svc), svc
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are exercised directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_items":
		result, err = srv.listItems(ctx, req)
	case "read_item":
		result, err = srv.readItem(ctx, req)
	case "create_item":
		result, err = srv.createItem(ctx, req)
	case "change_status":
		result, err = srv.changeStatus(ctx, req)
	case "add_comment":
		result, err = srv.addComment(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

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

func TestCreateAndReadItem(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "create_item", map[string]interface{}{
		"kind":        "bug",
		"title":       "Crash on save",
		"description": "Stack trace attached",
		"due_date":    "2026-01-15",
	})
	if res.IsError {
		t.Fatalf("create failed: %s", resultText(res))
	}
	if got := resultText(res); got != "created: bug/crash-on-save" {
		t.Fatalf("unexpected result: %s", got)
	}

	res = callTool(t, srv, "read_item", map[string]interface{}{
		"kind": "bug",
		"slug": "crash-on-save",
	})
	text := resultText(res)
	if !strings.Contains(text, `"title": "Crash on save"`) {
		t.Errorf("read_item missing title:\n%s", text)
	}
	if !strings.Contains(text, "2026-01-15") {
		t.Errorf("read_item missing due date:\n%s", text)
	}
}

func TestCreateItemRejectsBadKind(t *testing.T) {
	srv, _ := testServer(t)
	res := callTool(t, srv, "create_item", map[string]interface{}{
		"kind":  "epic",
		"title": "Nope",
	})
	if !res.IsError {
		t.Fatal("expected error for unknown kind")
	}
}

func TestListItemsFiltersByQuery(t *testing.T) {
	srv, _ := testServer(t)

	callTool(t, srv, "create_item", map[string]interface{}{"kind": "task", "title": "Write release notes"})
	callTool(t, srv, "create_item", map[string]interface{}{"kind": "task", "title": "Upgrade database"})

	res := callTool(t, srv, "list_items", map[string]interface{}{
		"kind":  "task",
		"query": "release",
	})
	text := resultText(res)
	if !strings.Contains(text, "write-release-notes") {
		t.Errorf("matching item missing:\n%s", text)
	}
	if strings.Contains(text, "upgrade-database") {
		t.Errorf("non-matching item present:\n%s", text)
	}
}

func TestChangeStatusRecordsHistory(t *testing.T) {
	srv, svc := testServer(t)

	callTool(t, srv, "create_item", map[string]interface{}{"kind": "bug", "title": "Leak"})

	res := callTool(t, srv, "change_status", map[string]interface{}{
		"kind":   "bug",
		"slug":   "leak",
		"status": "on-dev",
		"remark": "taking this",
	})
	if res.IsError {
		t.Fatalf("change_status failed: %s", resultText(res))
	}

	item, err := svc.GetItem(context.Background(), models.KindBug, "leak")
	if err != nil {
		t.Fatal(err)
	}
	if item.Status.Slug != "on-dev" {
		t.Fatalf("status = %s", item.Status.Slug)
	}
	if len(item.History) != 1 || item.History[0].Remark != "taking this" {
		t.Fatalf("history = %+v", item.History)
	}
}

func TestChangeStatusUnknownSlug(t *testing.T) {
	srv, _ := testServer(t)
	res := callTool(t, srv, "change_status", map[string]interface{}{
		"kind":   "bug",
		"slug":   "missing",
		"status": "open",
	})
	if !res.IsError {
		t.Fatal("expected error for unknown item")
	}
}

func TestAddComment(t *testing.T) {
	srv, svc := testServer(t)

	callTool(t, srv, "create_item", map[string]interface{}{"kind": "task", "title": "Rotate keys"})
	res := callTool(t, srv, "add_comment", map[string]interface{}{
		"kind":    "task",
		"slug":    "rotate-keys",
		"content": "done in staging",
	})
	if res.IsError {
		t.Fatalf("add_comment failed: %s", resultText(res))
	}

	item, err := svc.GetItem(context.Background(), models.KindTask, "rotate-keys")
	if err != nil {
		t.Fatal(err)
	}
	if len(item.Activities) != 1 || item.Activities[0].Content != "done in staging" {
		t.Fatalf("activities = %+v", item.Activities)
	}
}

func TestStatusCatalogueResource(t *testing.T) {
	srv, _ := testServer(t)

	contents, err := srv.readStatusCatalogue(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	text := contents[0].(mcp.TextResourceContents).Text
	for _, want := range []string{`"bug"`, `"task"`, `"open"`, `"in-progress"`} {
		if !strings.Contains(text, want) {
			t.Errorf("catalogue missing %s:\n%s", want, text)
		}
	}
}
