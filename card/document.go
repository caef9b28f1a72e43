package card

import (
	"bytes"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultContainerID is the id of the element receiving the card.
const DefaultContainerID = "card"

// Page is a host document with a card attached to its container.
type Page struct {
	doc  *goquery.Document
	card *Card
}

// FindContainer returns the first element whose id is exactly containerID.
func FindContainer(doc *goquery.Document, containerID string) (*html.Node, bool) {
	if doc == nil {
		return nil, false
	}
	container := doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return id == containerID
	}).First()
	if container.Length() == 0 {
		return nil, false
	}
	return container.Nodes[0], true
}

// Attach appends the card to the element whose id is containerID. It
// returns false, leaving the document untouched, when no such element
// exists.
func Attach(doc *goquery.Document, containerID string, c *Card) (*Page, bool) {
	if c == nil {
		return nil, false
	}
	container, ok := FindContainer(doc, containerID)
	if !ok {
		return nil, false
	}

	c.mu.Lock()
	if c.root.Parent != nil {
		c.root.Parent.RemoveChild(c.root)
	}
	container.AppendChild(c.root)
	c.mu.Unlock()
	return &Page{doc: doc, card: c}, true
}

// Render writes the whole document, card included.
func (p *Page) Render(w io.Writer) error {
	p.card.mu.Lock()
	defer p.card.mu.Unlock()
	for _, n := range p.doc.Nodes {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// HTML returns the whole document as a string.
func (p *Page) HTML() (string, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering document: %w", err)
	}
	return buf.String(), nil
}
