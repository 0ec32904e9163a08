package linkrow

import (
	"net/url"
	"strings"
	"testing"

	"github.com/halldor/dagaz/internal/page"
)

func TestRowHTML_FieldNames(t *testing.T) {
	b := NewBuilder()
	out, err := b.RowHTML("links", 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`name="links_name_2"`, `name="links_url_2"`, `class="remove-row"`} {
		if !strings.Contains(out, want) {
			t.Errorf("fragment missing %s:\n%s", want, out)
		}
	}
}

func TestAddRow_AppendsWithNextIndex(t *testing.T) {
	s, err := page.ParseString(`<html><body><form><div id="links-box"></div></form></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	b := NewBuilder()

	if err := b.AddRow(s, "links-box", "links"); err != nil {
		t.Fatal(err)
	}
	if err := b.AddRow(s, "links-box", "links"); err != nil {
		t.Fatal(err)
	}

	rows := s.Select("#links-box ." + RowClass)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	out, _ := s.HTML()
	if !strings.Contains(out, `name="links_name_0"`) || !strings.Contains(out, `name="links_name_1"`) {
		t.Errorf("row indices not distinct:\n%s", out)
	}
}

func TestAddRow_MissingContainer(t *testing.T) {
	s, err := page.ParseString(`<html><body></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewBuilder().AddRow(s, "nope", "links"); err == nil {
		t.Error("expected error for absent container")
	}
}

func TestPairs(t *testing.T) {
	form := url.Values{}
	form.Set("links_name_0", " Docs ")
	form.Set("links_url_0", "https://example.com/docs")
	form.Set("links_name_1", "")
	form.Set("links_url_1", "")
	form.Set("links_name_2", "Repo")
	form.Set("links_url_2", "https://example.com/repo")

	got := Pairs(form, "links")
	if len(got) != 2 {
		t.Fatalf("pairs = %d, want 2", len(got))
	}
	if got[0].Name != "Docs" || got[0].URL != "https://example.com/docs" {
		t.Errorf("pair 0 = %+v", got[0])
	}
	if got[1].Name != "Repo" {
		t.Errorf("pair 1 = %+v", got[1])
	}
}

func TestPairs_SurvivesRemovedMiddleRow(t *testing.T) {
	// Removing a middle row client-side submits a gap in the indexes;
	// rows after the gap must still come through, in index order.
	form := url.Values{}
	form.Set("links_name_0", "A")
	form.Set("links_url_0", "https://a.example")
	form.Set("links_name_2", "C")
	form.Set("links_url_2", "https://c.example")
	form.Set("links_name_10", "K")
	form.Set("links_url_10", "https://k.example")

	got := Pairs(form, "links")
	if len(got) != 3 {
		t.Fatalf("pairs = %d, want 3: %+v", len(got), got)
	}
	for i, want := range []string{"A", "C", "K"} {
		if got[i].Name != want {
			t.Errorf("pair %d = %+v, want name %s", i, got[i], want)
		}
	}
}

func TestPairs_KeepsCollidingIndexes(t *testing.T) {
	form := url.Values{}
	form.Add("links_name_1", "First")
	form.Add("links_url_1", "https://first.example")
	form.Add("links_name_1", "Second")
	form.Add("links_url_1", "https://second.example")

	got := Pairs(form, "links")
	if len(got) != 2 {
		t.Fatalf("pairs = %d, want 2: %+v", len(got), got)
	}
	if got[0].Name != "First" || got[0].URL != "https://first.example" {
		t.Errorf("pair 0 = %+v", got[0])
	}
	if got[1].Name != "Second" || got[1].URL != "https://second.example" {
		t.Errorf("pair 1 = %+v", got[1])
	}
}
