package page

import (
	"strings"
	"testing"
)

const sampleDoc = `<html class="h-full"><body>
<ul id="links"><li class="row">one</li></ul>
<span class="stamp" data-utc="x">a</span>
<span class="stamp">b</span>
</body></html>`

func TestSelect_DocumentOrder(t *testing.T) {
	s, err := ParseString(sampleDoc)
	if err != nil {
		t.Fatal(err)
	}
	nodes := s.Select(".stamp")
	if len(nodes) != 2 {
		t.Fatalf("len = %d, want 2", len(nodes))
	}
	if nodes[0].Text() != "a" || nodes[1].Text() != "b" {
		t.Errorf("order = [%q %q], want [a b]", nodes[0].Text(), nodes[1].Text())
	}
	if _, ok := nodes[0].Attr("data-utc"); !ok {
		t.Error("expected data-utc on first node")
	}
	if _, ok := nodes[1].Attr("data-utc"); ok {
		t.Error("unexpected data-utc on second node")
	}
}

func TestNodeMutations(t *testing.T) {
	s, err := ParseString(sampleDoc)
	if err != nil {
		t.Fatal(err)
	}
	n := s.Select(".stamp")[0]
	n.SetText("converted")
	n.SetAttr("data-done", "true")
	n.RemoveClass("stamp")

	out, err := s.HTML()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ">converted</span>") {
		t.Errorf("text mutation missing from output: %s", out)
	}
	if !strings.Contains(out, `data-done="true"`) {
		t.Errorf("attr mutation missing from output: %s", out)
	}
}

func TestRootClassToggle(t *testing.T) {
	s, err := ParseString(sampleDoc)
	if err != nil {
		t.Fatal(err)
	}
	root := s.Root()
	if !root.HasClass("h-full") {
		t.Fatal("expected parsed root class")
	}
	root.AddClass("dark")
	out, _ := s.HTML()
	if !strings.Contains(out, `class="h-full dark"`) {
		t.Errorf("root class not serialized: %s", out)
	}
}

func TestByIDAndAppendHTML(t *testing.T) {
	s, err := ParseString(sampleDoc)
	if err != nil {
		t.Fatal(err)
	}
	container, ok := s.ByID("links")
	if !ok {
		t.Fatal("container not found")
	}
	container.AppendHTML(`<li class="row">two</li>`)
	if got := len(s.Select("#links .row")); got != 2 {
		t.Errorf("rows = %d, want 2", got)
	}

	if _, ok := s.ByID("nope"); ok {
		t.Error("ByID on absent id must report false")
	}
}
