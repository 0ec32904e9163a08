// Package page wraps a parsed HTML document in a small mutable-surface API
// so enhancement passes can be tested without a browser.
package page

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Surface is a mutable handle on one parsed HTML document.
type Surface struct {
	doc *goquery.Document
}

// Parse reads and parses an HTML document from r.
func Parse(r io.Reader) (*Surface, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("page: parse: %w", err)
	}
	return &Surface{doc: doc}, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Surface, error) {
	return Parse(strings.NewReader(s))
}

// Select returns node handles for every element matching the CSS selector,
// in document order.
func (s *Surface) Select(selector string) []*Node {
	var nodes []*Node
	s.doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		nodes = append(nodes, &Node{sel: sel})
	})
	return nodes
}

// Root returns the document's root <html> element.
func (s *Surface) Root() *Node {
	return &Node{sel: s.doc.Find("html").First()}
}

// ByID returns the element with the given id, if present.
func (s *Surface) ByID(id string) (*Node, bool) {
	sel := s.doc.Find("#" + id).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return &Node{sel: sel}, true
}

// Render serializes the full document to w.
func (s *Surface) Render(w io.Writer) error {
	if err := goquery.Render(w, s.doc.Selection); err != nil {
		return fmt.Errorf("page: render: %w", err)
	}
	return nil
}

// HTML returns the serialized document as a string.
func (s *Surface) HTML() (string, error) {
	var b strings.Builder
	if err := s.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Node is a mutable handle on one element of the surface.
type Node struct {
	sel *goquery.Selection
}

// Attr returns the named attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	return n.sel.Attr(name)
}

// SetAttr sets the named attribute.
func (n *Node) SetAttr(name, value string) {
	n.sel.SetAttr(name, value)
}

// Text returns the node's text content.
func (n *Node) Text() string {
	return n.sel.Text()
}

// SetText replaces the node's content with a text node.
func (n *Node) SetText(text string) {
	n.sel.SetText(text)
}

// HasClass reports whether the node carries the class.
func (n *Node) HasClass(class string) bool {
	return n.sel.HasClass(class)
}

// AddClass adds the class to the node.
func (n *Node) AddClass(class string) {
	n.sel.AddClass(class)
}

// RemoveClass removes the class from the node.
func (n *Node) RemoveClass(class string) {
	n.sel.RemoveClass(class)
}

// AppendHTML parses fragment and appends the result to the node's children.
func (n *Node) AppendHTML(fragment string) {
	n.sel.AppendHtml(fragment)
}
