package textfilter

import (
	"strings"
	"testing"
)

func TestMarkdown_Basic(t *testing.T) {
	out := string(Markdown("# Title\n\nSome **bold** text."))
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<strong>bold</strong>") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestMarkdown_Empty(t *testing.T) {
	if out := Markdown(""); out != "" {
		t.Errorf("empty input must render empty, got %q", out)
	}
}

func TestMarkdown_FencedCodeAndTables(t *testing.T) {
	out := string(Markdown("```\ncode\n```\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"))
	if !strings.Contains(out, "<pre><code>") {
		t.Errorf("fenced code not rendered: %s", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("table not rendered: %s", out)
	}
}

func TestHighlight_WordsCaseInsensitive(t *testing.T) {
	out := string(Highlight("Login crashes on Timeout", "timeout login"))
	if !strings.Contains(out, markOpen+"Login</mark>") {
		t.Errorf("first word not wrapped: %s", out)
	}
	if !strings.Contains(out, markOpen+"Timeout</mark>") {
		t.Errorf("second word not wrapped: %s", out)
	}
}

func TestHighlight_EscapesMetacharacters(t *testing.T) {
	out := string(Highlight("what? yes", "what?"))
	if !strings.Contains(out, markOpen+"what?</mark>") {
		t.Errorf("literal query not matched: %s", out)
	}
}

func TestHighlight_EscapesHTML(t *testing.T) {
	out := string(Highlight("<script>alert('x')</script> crash", "crash"))
	if strings.Contains(out, "<script>") {
		t.Errorf("text not escaped: %s", out)
	}
	if !strings.Contains(out, markOpen+"crash</mark>") {
		t.Errorf("match lost during escaping: %s", out)
	}
}

func TestHighlight_NoQuery(t *testing.T) {
	if out := string(Highlight("plain text", "")); out != "plain text" {
		t.Errorf("no-query output = %q", out)
	}
}
