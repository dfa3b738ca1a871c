package preprocess

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/dtnitsch/email-reply-parser/pkg/detector"
	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

// QuoteSourceAttr marks blockquotes introduced by normalization.
const QuoteSourceAttr = "data-quote-source"

var (
	styledBlock   = cascadia.MustCompile(`[style]`)
	insertedQuote = cascadia.MustCompile(`blockquote[data-quote-source]`)
)

// OutlookDivider removes the top-bordered divider Outlook desktop draws above
// the quoted header block, and wraps the header block plus everything after it
// in a blockquote. Content before the divider is untouched.
type OutlookDivider struct{}

func (OutlookDivider) Name() string { return "outlook_divider" }

func (OutlookDivider) Normalize(doc *htmldoc.Document) bool {
	root := doc.Root()
	quoted := insertedQuote.MatchAll(root)

	var divider *html.Node
	for _, n := range styledBlock.MatchAll(root) {
		if n == root || insideAny(n, quoted) {
			continue
		}
		if detector.IsOutlookDivider(n) {
			divider = n
			break
		}
	}
	if divider == nil {
		return false
	}

	wrapper := htmldoc.CreateElement("blockquote", QuoteSourceAttr, "outlook_desktop")
	divider.Parent.InsertBefore(wrapper, divider)
	for c := divider.FirstChild; c != nil; {
		next := c.NextSibling
		divider.RemoveChild(c)
		wrapper.AppendChild(c)
		c = next
	}
	htmldoc.Remove(divider)
	htmldoc.AbsorbFollowing(wrapper, wrapper, root)
	return true
}

func insideAny(n *html.Node, containers []*html.Node) bool {
	for _, c := range containers {
		if htmldoc.Contains(c, n) {
			return true
		}
	}
	return false
}
