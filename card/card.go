// Package card builds the summary card for an ArticleView as an HTML node
// tree and patches the author avatar in place when it resolves later.
package card

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aktagon/ldcard/identity"
	"github.com/aktagon/ldcard/jsonld"
)

// CSS classes of the card elements.
const (
	ClassCard            = "card"
	ClassAtprotoModifier = "card--atproto"
	ClassImage           = "card__image"
	ClassBody            = "card__body"
	ClassTitle           = "card__title"
	ClassDescription     = "card__description"
	ClassAuthor          = "card__author"
	ClassAuthorAvatar    = "card__author-avatar"
	ClassAuthorName      = "card__author-name"
	ClassAtprotoMeta     = "card__atproto-meta"
	ClassAtprotoBadge    = "card__atproto-badge"
	ClassAtprotoHandle   = "card__atproto-handle"
	ClassAtprotoDID      = "card__atproto-did"
	ClassAtprotoFeed     = "card__atproto-feed"
)

const feedLinkText = "View series →"

// Card is a rendered article card. The node tree is guarded by a mutex so
// an avatar patch can land while the card is being rendered elsewhere.
type Card struct {
	mu sync.Mutex

	root       *html.Node
	author     *html.Node
	authorName *html.Node
	avatar     *html.Node
	name       string
}

// Build creates the card for view.
func Build(view jsonld.ArticleView) *Card {
	class := ClassCard
	if view.AtprotoPresent {
		class += " " + ClassAtprotoModifier
	}
	c := &Card{
		root: element(atom.Article, class),
		name: view.AuthorName,
	}

	if len(view.Images) > 0 {
		img := element(atom.Img, ClassImage)
		setAttr(img, "src", view.Images[0])
		setAttr(img, "alt", view.Headline)
		c.root.AppendChild(img)
	}

	body := element(atom.Div, ClassBody)
	body.AppendChild(textElement(atom.Div, ClassTitle, view.Headline))
	if view.Description != "" {
		body.AppendChild(textElement(atom.P, ClassDescription, view.Description))
	}

	if view.AuthorName != "" {
		c.author = element(atom.Div, ClassAuthor)
		if view.HasAuthorImage() {
			c.avatar = avatarImage(view.AuthorImage, view.AuthorName)
			c.author.AppendChild(c.avatar)
		}
		c.authorName = textElement(atom.Span, ClassAuthorName, "By "+view.AuthorName)
		c.author.AppendChild(c.authorName)
		body.AppendChild(c.author)
	}

	if view.AtprotoPresent {
		body.AppendChild(atprotoMeta(view))
	}

	c.root.AppendChild(body)
	return c
}

func atprotoMeta(view jsonld.ArticleView) *html.Node {
	meta := element(atom.Div, ClassAtprotoMeta)
	meta.AppendChild(textElement(atom.Span, ClassAtprotoBadge, "atproto"))

	if view.Handle != "" {
		meta.AppendChild(textElement(atom.Span, ClassAtprotoHandle, "@"+view.Handle))
	}
	if view.DID != "" {
		meta.AppendChild(textElement(atom.Span, ClassAtprotoDID, identity.TruncateDID(view.DID)))
	}
	if href := identity.ResolveFeedHref(view.Feed); href != "" {
		link := textElement(atom.A, ClassAtprotoFeed, feedLinkText)
		setAttr(link, "href", href)
		setAttr(link, "target", "_blank")
		setAttr(link, "rel", "noopener noreferrer")
		setAttr(link, "title", view.Feed)
		meta.AppendChild(link)
	}
	return meta
}

// NeedsAvatar reports whether the card has an author block without an
// avatar image.
func (c *Card) NeedsAvatar() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.author != nil && c.avatar == nil
}

// PatchAvatar inserts an avatar image before the author name, leaving the
// other nodes untouched. It does nothing for an empty url, a card without
// author block, or a card that already shows an avatar.
func (c *Card) PatchAvatar(url string) bool {
	if url == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.author == nil || c.avatar != nil {
		return false
	}
	c.avatar = avatarImage(url, c.name)
	c.author.InsertBefore(c.avatar, c.authorName)
	return true
}

// Render writes the card as HTML.
func (c *Card) Render(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return html.Render(w, c.root)
}

// HTML returns the card as an HTML string.
func (c *Card) HTML() (string, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering card: %w", err)
	}
	return buf.String(), nil
}

// Markdown returns the card converted to Markdown.
func (c *Card) Markdown() (string, error) {
	raw, err := c.HTML()
	if err != nil {
		return "", err
	}
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(raw)
	if err != nil {
		return "", fmt.Errorf("converting card to markdown: %w", err)
	}
	return markdown, nil
}

func avatarImage(src, alt string) *html.Node {
	img := element(atom.Img, ClassAuthorAvatar)
	setAttr(img, "src", src)
	setAttr(img, "alt", alt)
	return img
}

func element(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		setAttr(n, "class", class)
	}
	return n
}

func textElement(a atom.Atom, class, text string) *html.Node {
	n := element(a, class)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
