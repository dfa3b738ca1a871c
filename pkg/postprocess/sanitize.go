// Package postprocess cleans and annotates the output of quotation extraction:
// sanitizing, trimming trailing empty blocks, separating signatures and
// computing the reply ratio.
package postprocess

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

var removedElements = map[string]bool{
	"script": true,
	"iframe": true,
	"object": true,
	"embed":  true,
}

var (
	pixelDimension = regexp.MustCompile(`^\s*[01](\.0+)?\s*(px)?\s*$`)
	styleWidth     = regexp.MustCompile(`(?i)(^|;)\s*width\s*:\s*[01](\.0+)?\s*(px)?\s*(!important)?\s*(;|$)`)
	styleHeight    = regexp.MustCompile(`(?i)(^|;)\s*height\s*:\s*[01](\.0+)?\s*(px)?\s*(!important)?\s*(;|$)`)
)

// Sanitizer removes active content and tracking pixels. Everything else,
// inline styles included, is kept as is.
type Sanitizer struct{}

// Sanitize returns src without <script>, <iframe>, <object> and <embed>
// elements, inline on* event handlers and 1x1 images. Input with nothing to
// remove, or that cannot be parsed, is returned unchanged.
func (Sanitizer) Sanitize(src string) string {
	if src == "" {
		return src
	}
	doc, err := htmldoc.Parse(src)
	if err != nil {
		return src
	}

	var remove []*html.Node
	changed := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			tag := strings.ToLower(n.Data)
			if removedElements[tag] || (tag == "img" && isTrackingPixel(n)) {
				remove = append(remove, n)
				return
			}
			if stripEventHandlers(n) {
				changed = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc.Document.Nodes[0])

	for _, n := range remove {
		htmldoc.Remove(n)
	}
	if !changed && len(remove) == 0 {
		return src
	}

	out, err := doc.Render()
	if err != nil {
		return src
	}
	return out
}

func stripEventHandlers(n *html.Node) bool {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if strings.HasPrefix(strings.ToLower(a.Key), "on") {
			continue
		}
		kept = append(kept, a)
	}
	stripped := len(kept) != len(n.Attr)
	n.Attr = kept
	return stripped
}

func isTrackingPixel(n *html.Node) bool {
	var width, height string
	var hasWidth, hasHeight bool
	style := ""
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "width":
			width, hasWidth = a.Val, true
		case "height":
			height, hasHeight = a.Val, true
		case "style":
			style = a.Val
		}
	}

	tinyWidth := (hasWidth && pixelDimension.MatchString(width)) || styleWidth.MatchString(style)
	tinyHeight := (hasHeight && pixelDimension.MatchString(height)) || styleHeight.MatchString(style)
	return tinyWidth && tinyHeight
}
