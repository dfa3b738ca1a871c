package preprocess

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

// WordCleanup drops Word conditional comments and <xml> islands, unwraps <o:p>,
// and strips Mso class tokens and mso- style declarations. Visible text and
// quote structure are unchanged.
type WordCleanup struct{}

func (WordCleanup) Name() string { return "word_cleanup" }

func (WordCleanup) Normalize(doc *htmldoc.Document) bool {
	var remove, unwrap []*html.Node
	changed := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.CommentNode:
			if isConditionalComment(n.Data) {
				remove = append(remove, n)
			}
			return
		case html.ElementNode:
			switch strings.ToLower(n.Data) {
			case "xml":
				remove = append(remove, n)
				return
			case "o:p":
				unwrap = append(unwrap, n)
			}
			if stripMsoClasses(n) {
				changed = true
			}
			if stripMsoStyles(n) {
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
	// innermost first, so nested o:p unwrap cleanly
	for i := len(unwrap) - 1; i >= 0; i-- {
		htmldoc.Unwrap(unwrap[i])
	}

	return changed || len(remove) > 0 || len(unwrap) > 0
}

func isConditionalComment(data string) bool {
	data = strings.ToLower(strings.TrimSpace(data))
	return strings.HasPrefix(data, "[if") || strings.HasPrefix(data, "[endif")
}

func stripMsoClasses(n *html.Node) bool {
	if !dom.HasAttribute(n, "class") {
		return false
	}
	classes := strings.Fields(dom.GetAttribute(n, "class"))
	var kept []string
	for _, c := range classes {
		if !strings.HasPrefix(strings.ToLower(c), "mso") {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(classes) {
		return false
	}
	if len(kept) == 0 {
		dom.RemoveAttribute(n, "class")
	} else {
		dom.SetAttribute(n, "class", strings.Join(kept, " "))
	}
	return true
}

func stripMsoStyles(n *html.Node) bool {
	style := dom.GetAttribute(n, "style")
	if !strings.Contains(strings.ToLower(style), "mso-") {
		return false
	}

	var kept []string
	dropped := false
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		prop := strings.ToLower(strings.TrimSpace(strings.SplitN(decl, ":", 2)[0]))
		if strings.HasPrefix(prop, "mso-") {
			dropped = true
			continue
		}
		kept = append(kept, decl)
	}
	if !dropped {
		return false
	}

	if len(kept) == 0 {
		dom.RemoveAttribute(n, "style")
	} else {
		dom.SetAttribute(n, "style", strings.Join(kept, ";"))
	}
	return true
}
