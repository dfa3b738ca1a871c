package htmldoc

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "body": true,
	"center": true, "dd": true, "details": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hr": true, "html": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "table": true, "tbody": true,
	"tfoot": true, "thead": true, "tr": true, "ul": true,
}

// paragraph elements are followed by a blank line.
var paragraphElements = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "table": true, "ul": true, "ol": true, "pre": true,
}

var invisibleElements = map[string]bool{
	"script": true, "style": true, "head": true, "title": true, "template": true,
	"noscript": true, "xml": true, "meta": true, "link": true,
}

type textWriter struct {
	sb  strings.Builder
	pre int
}

func (w *textWriter) endsWith(s string) bool {
	return strings.HasSuffix(w.sb.String(), s)
}

func (w *textWriter) newline() {
	if w.sb.Len() > 0 && !w.endsWith("\n") {
		w.sb.WriteByte('\n')
	}
}

func (w *textWriter) blankLine() {
	if w.sb.Len() == 0 {
		return
	}
	w.newline()
	if !w.endsWith("\n\n") {
		w.sb.WriteByte('\n')
	}
}

func (w *textWriter) text(data string) {
	data = strings.ReplaceAll(data, "\u00a0", " ")
	if w.pre > 0 {
		w.sb.WriteString(data)
		return
	}
	collapsed := collapseSpaces(data)
	if collapsed == "" {
		return
	}
	if (w.sb.Len() == 0 || w.endsWith("\n") || w.endsWith(" ")) && collapsed[0] == ' ' {
		collapsed = collapsed[1:]
	}
	w.sb.WriteString(collapsed)
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		return
	case html.ElementNode:
	default:
		return
	}

	tag := strings.ToLower(n.Data)
	if invisibleElements[tag] {
		return
	}

	switch tag {
	case "br":
		w.sb.WriteByte('\n')
		return
	case "td", "th":
		if w.sb.Len() > 0 && !w.endsWith("\n") && !w.endsWith(" ") {
			w.sb.WriteByte(' ')
		}
	case "pre":
		w.pre++
		defer func() { w.pre-- }()
	}

	block := blockElements[tag]
	if block {
		w.newline()
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if paragraphElements[tag] {
		w.blankLine()
	} else if block {
		w.newline()
	}
}

// Text projects nodes to plain text: block boundaries and <br> become line breaks,
// paragraphs are separated by one blank line, and runs of spaces collapse.
func Text(nodes ...*html.Node) string {
	w := &textWriter{}
	for _, n := range nodes {
		if n != nil {
			w.walk(n)
		}
	}
	return tidyLines(w.sb.String())
}

// tidyLines trims every line, keeps at most one blank line in a row and drops
// leading and trailing blank lines.
func tidyLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(out) > 0 {
				blank = true
			}
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// NormalizeWhitespace collapses every whitespace run to one space and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TextLength is the length in runes of the whitespace-normalized projection of s.
func TextLength(s string) int {
	return utf8.RuneCountInString(NormalizeWhitespace(s))
}

// PlainText is Text applied to an HTML string. Unparseable input is returned
// with its whitespace tidied.
func PlainText(src string) string {
	doc, err := Parse(src)
	if err != nil {
		return tidyLines(strings.ToValidUTF8(src, "�"))
	}
	return doc.Text()
}
