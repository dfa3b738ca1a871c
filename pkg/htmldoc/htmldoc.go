// Package htmldoc parses email HTML into a goquery document that can be mutated
// and rendered back without turning fragments into full documents.
package htmldoc

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrInvalidUTF8 is returned for input that is not valid UTF-8 text.
var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

var (
	documentPattern = regexp.MustCompile(`(?i)<\s*(!doctype|html[\s>]|head[\s>]|body[\s>])`)
	tagPattern      = regexp.MustCompile(`<(/?[a-zA-Z][a-zA-Z0-9:-]*[\s/>]|!--|!\[)`)
)

// Document is a parsed email body. Root is the element whose children are the
// visible content: <body> for full documents, a detached container for fragments.
type Document struct {
	*goquery.Document
	root     *html.Node
	fragment bool
}

// IsDocument reports whether src carries document-level markup (doctype, html, head or body).
func IsDocument(src string) bool {
	return documentPattern.MatchString(src)
}

// LooksLikeHTML reports whether src contains at least one tag or comment.
func LooksLikeHTML(src string) bool {
	return tagPattern.MatchString(src)
}

// Parse parses src as a full document or, when it carries no document-level
// markup, as a body fragment.
func Parse(src string) (*Document, error) {
	if !utf8.ValidString(src) {
		return nil, ErrInvalidUTF8
	}

	if IsDocument(src) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("failed to parse html document: %w", err)
		}
		root := doc.Find("body").First()
		if root.Length() == 0 {
			return nil, fmt.Errorf("failed to parse html document: no body element")
		}
		return &Document{Document: doc, root: root.Nodes[0]}, nil
	}

	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html fragment: %w", err)
	}

	container := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	top := &html.Node{Type: html.DocumentNode}
	top.AppendChild(container)

	return &Document{
		Document: goquery.NewDocumentFromNode(top),
		root:     container,
		fragment: true,
	}, nil
}

// Root returns the content container.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the content container as a selection.
func (d *Document) Body() *goquery.Selection {
	return d.Document.FindNodes(d.root)
}

// IsFragment reports whether the source had no document-level markup.
func (d *Document) IsFragment() bool {
	return d.fragment
}

// Render serializes the document in the same shape it was parsed from.
func (d *Document) Render() (string, error) {
	if d.fragment {
		return dom.InnerHTML(d.root), nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, d.Document.Nodes[0]); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return buf.String(), nil
}

// Text returns the plain-text projection of the content container.
func (d *Document) Text() string {
	return Text(d.root)
}

// RenderNodes serializes nodes back to back.
func RenderNodes(nodes []*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		sb.WriteString(dom.OuterHTML(n))
	}
	return sb.String()
}
