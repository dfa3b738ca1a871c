package postprocess

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

var trimmable = map[string]bool{
	"div": true, "p": true, "br": true, "hr": true, "span": true, "font": true,
}

// Trimmer drops empty blocks left at the end of a reply once the quote is gone.
type Trimmer struct{}

// Trim removes trailing empty div, p, br, hr, span and font elements, descending
// into the last non-empty container. Unchanged input is returned as is.
func (Trimmer) Trim(src string) string {
	if src == "" {
		return src
	}
	doc, err := htmldoc.Parse(src)
	if err != nil {
		return src
	}
	if !trimNode(doc.Root()) {
		return src
	}
	out, err := doc.Render()
	if err != nil {
		return src
	}
	return out
}

func trimNode(n *html.Node) bool {
	changed := false
	for {
		last := lastVisibleChild(n)
		if last == nil {
			return changed
		}
		if last.Type == html.ElementNode && trimmable[strings.ToLower(last.Data)] && htmldoc.IsBlank(last) {
			htmldoc.Remove(last)
			changed = true
			continue
		}
		if last.Type == html.ElementNode && trimNode(last) {
			changed = true
		}
		return changed
	}
}

// lastVisibleChild skips trailing whitespace text and comments.
func lastVisibleChild(n *html.Node) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		switch c.Type {
		case html.CommentNode:
			continue
		case html.TextNode:
			if strings.TrimSpace(strings.ReplaceAll(c.Data, "\u00a0", " ")) == "" {
				continue
			}
		}
		return c
	}
	return nil
}
