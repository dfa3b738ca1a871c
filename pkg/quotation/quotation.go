// Package quotation splits normalized email HTML into the newest reply and the
// quoted history. The engine expects the splitter and the quoted content to
// share one container; preprocess establishes that for clients that don't.
package quotation

import (
	"context"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/dtnitsch/email-reply-parser/pkg/headers"
	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

// Extraction is the reply/quote split of one body.
type Extraction struct {
	ReplyHTML  string
	ReplyText  string
	QuotedHTML string

	// Splitter names the rule that found the quote, empty when none did.
	Splitter string
}

// Extractor is the quotation extraction boundary used by the pipeline.
type Extractor interface {
	Extract(ctx context.Context, src string) (*Extraction, error)
}

type splitter struct {
	name     string
	selector cascadia.Selector
	// toEnd also removes everything after the container. Apple Mail may
	// split one quote over several sibling cite blocks.
	toEnd bool
}

// Client quote containers. The outermost container in document order wins,
// so a quote that holds an older client's quote is cut as one.
var splitters = []splitter{
	{"gmail_quote", cascadia.MustCompile(`.gmail_quote_container, .gmail_quote`), false},
	{"yahoo_quoted", cascadia.MustCompile(`div.yahoo_quoted, [id*="yahoo_quoted"]`), false},
	{"normalized_quote", cascadia.MustCompile(`blockquote[data-quote-source]`), false},
	{"reply_marker", cascadia.MustCompile(`[id$="divRplyFwdMsg" i], div[class*="RplyEdtPrsngMsg" i]`), false},
	{"cite", cascadia.MustCompile(`blockquote[type="cite" i]`), true},
}

// Bare blockquotes are only used when no client container matched.
var fallbackSplitters = []splitter{
	{"blockquote", cascadia.MustCompile(`blockquote`), false},
}

var textBlock = cascadia.MustCompile(`div, p, span, font, td`)

// Engine is the default structural Extractor.
type Engine struct{}

// NewEngine returns the default engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Extract removes the first quote container, together with an attribution line
// directly in front of it, and returns what is left as the reply.
func (e *Engine) Extract(ctx context.Context, src string) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extraction cancelled: %w", err)
	}

	doc, err := htmldoc.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse normalized html: %w", err)
	}
	root := doc.Root()

	var removed []*html.Node
	name := ""
	for _, rules := range [][]splitter{splitters, fallbackSplitters} {
		if n, s, ok := firstQuote(root, rules); ok {
			removed = removeQuote(n, root, s.toEnd)
			name = s.name
			break
		}
	}

	if name == "" {
		if n := findTextSplitter(root); n != nil {
			removed = htmldoc.TruncateFrom(n, root)
			name = "header_text"
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extraction cancelled: %w", err)
	}

	if name == "" {
		return &Extraction{ReplyHTML: src, ReplyText: doc.Text()}, nil
	}

	reply, err := doc.Render()
	if err != nil {
		return nil, err
	}
	return &Extraction{
		ReplyHTML:  reply,
		ReplyText:  doc.Text(),
		QuotedHTML: htmldoc.RenderNodes(removed),
		Splitter:   name,
	}, nil
}

// firstQuote walks root in document order and returns the first element any
// rule matches. Ancestors are visited before their descendants.
func firstQuote(root *html.Node, rules []splitter) (*html.Node, splitter, bool) {
	var walk func(n *html.Node) (*html.Node, splitter, bool)
	walk = func(n *html.Node) (*html.Node, splitter, bool) {
		if n.Type == html.ElementNode && n != root {
			for _, s := range rules {
				if s.selector.Match(n) {
					return n, s, true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found, s, ok := walk(c); ok {
				return found, s, true
			}
		}
		return nil, splitter{}, false
	}
	return walk(root)
}

// removeQuote detaches the quote container and an attribution element directly
// before it. Nodes are returned in document order.
func removeQuote(n, root *html.Node, toEnd bool) []*html.Node {
	var removed []*html.Node
	if prev := htmldoc.PreviousElement(n); prev != nil && isAttribution(prev) {
		htmldoc.Remove(prev)
		removed = append(removed, prev)
	}
	if toEnd {
		return append(removed, htmldoc.TruncateFrom(n, root)...)
	}
	htmldoc.Remove(n)
	return append(removed, n)
}

func isAttribution(n *html.Node) bool {
	text := strings.TrimSpace(htmldoc.Text(n))
	if text == "" || strings.Count(text, "\n") > 2 {
		return false
	}
	lines := strings.Split(text, "\n")
	_, ok := headers.AttributionAt(lines, 0)
	return ok || headers.IsSeparator(lines[len(lines)-1])
}

// findTextSplitter finds the innermost block whose text starts with a header
// cluster, for clients that mark quotes with text only.
func findTextSplitter(root *html.Node) *html.Node {
	var found *html.Node
	for _, n := range textBlock.MatchAll(root) {
		if n == root {
			continue
		}
		if found != nil && !htmldoc.Contains(found, n) {
			break
		}
		if headers.StartsWithCluster(htmldoc.Text(n)) && startsBlock(n) {
			found = n
		}
	}
	return found
}

// startsBlock reports whether n begins a line: no visible text precedes it
// within its parent, or it follows a line break.
func startsBlock(n *html.Node) bool {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode && s.Data == "br" {
			return true
		}
		if !htmldoc.IsBlank(s) {
			return s.Type == html.ElementNode && isBlockTag(s.Data)
		}
	}
	return true
}

func isBlockTag(tag string) bool {
	switch tag {
	case "div", "p", "table", "blockquote", "ul", "ol", "hr", "h1", "h2", "h3", "h4", "h5", "h6", "pre":
		return true
	}
	return false
}
