package detector

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/headers"
	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

// Detection is the outcome of the fingerprint checklist
type Detection struct {
	Format models.DetectedFormat

	// Matched lists every fingerprint that matched, in priority order.
	// Format is always Matched[0] when anything matched.
	Matched []models.DetectedFormat
}

var (
	o365Marker    = cascadia.MustCompile(`[id$="divRplyFwdMsg" i], div[class*="RplyEdtPrsngMsg" i]`)
	gmailQuote    = cascadia.MustCompile(`.gmail_quote, .gmail_quote_container`)
	appleQuote    = cascadia.MustCompile(`blockquote[type="cite" i]`)
	yahooQuote    = cascadia.MustCompile(`blockquote, div.yahoo_quoted, [id*="yahoo_quoted"]`)
	styledElement = cascadia.MustCompile(`[style]`)
)

var (
	borderTopPattern = regexp.MustCompile(`border-top\s*:\s*[^;"]*\b(solid|double)\b`)
	msoClassPattern  = regexp.MustCompile(`(^|\s)Mso[A-Za-z]`)
)

// Detect classifies html into a known client format. It never fails:
// unparseable input is unknown.
func Detect(src string) models.DetectedFormat {
	doc, err := htmldoc.Parse(src)
	if err != nil {
		return models.FormatUnknown
	}
	return Analyze(doc).Format
}

// Analyze runs every fingerprint against doc. The earliest listed format wins.
func Analyze(doc *htmldoc.Document) *Detection {
	d := &Detection{Format: models.FormatUnknown}
	root := doc.Root()
	art := scanArtifacts(doc.Document.Nodes[0])

	// Checked in priority order
	checks := []struct {
		format models.DetectedFormat
		match  func() bool
	}{
		{models.FormatO365, func() bool { return hasO365Marker(doc) }},
		{models.FormatOutlookDesktop, func() bool { return hasOutlookDivider(root) }},
		{models.FormatGmail, func() bool { return doc.FindMatcher(gmailQuote).Length() > 0 }},
		{models.FormatAppleMail, func() bool { return doc.FindMatcher(appleQuote).Length() > 0 }},
		{models.FormatYahoo, func() bool { return art.yahoo && doc.FindMatcher(yahooQuote).Length() > 0 }},
		{models.FormatWordGenerated, func() bool { return art.word }},
	}

	for _, c := range checks {
		if c.match() {
			d.Matched = append(d.Matched, c.format)
		}
	}
	if len(d.Matched) > 0 {
		d.Format = d.Matched[0]
	}
	return d
}

// hasO365Marker finds a reply/forward marker that either holds text itself or is
// followed by non-empty content.
func hasO365Marker(doc *htmldoc.Document) bool {
	found := false
	doc.FindMatcher(o365Marker).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		marker := s.Nodes[0]
		if !htmldoc.IsBlank(marker) || hasFollowingContent(marker, doc.Root()) {
			found = true
		}
		return !found
	})
	return found
}

func hasFollowingContent(n, stop *html.Node) bool {
	for cur := n; cur != nil && cur != stop; cur = cur.Parent {
		for s := cur.NextSibling; s != nil; s = s.NextSibling {
			if !htmldoc.IsBlank(s) {
				return true
			}
		}
	}
	return false
}

// hasOutlookDivider finds a block with a solid or double top border that holds,
// or is directly followed by, a From/Sent/To/Subject header block.
func hasOutlookDivider(root *html.Node) bool {
	for _, n := range styledElement.MatchAll(root) {
		if IsOutlookDivider(n) {
			return true
		}
	}
	return false
}

// IsOutlookDivider reports whether n is a top-bordered divider introducing a header block.
func IsOutlookDivider(n *html.Node) bool {
	style := strings.ToLower(dom.GetAttribute(n, "style"))
	if !borderTopPattern.MatchString(style) {
		return false
	}
	if headers.StartsWithCluster(htmldoc.Text(n)) {
		return true
	}
	if next := htmldoc.NextElement(n); next != nil {
		return headers.StartsWithCluster(htmldoc.Text(next))
	}
	return false
}

type artifacts struct {
	yahoo bool
	word  bool
}

// scanArtifacts walks the whole tree once looking for Yahoo and Word markers,
// including comments and the document head.
func scanArtifacts(top *html.Node) artifacts {
	var a artifacts
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.CommentNode:
			data := strings.ToLower(strings.TrimSpace(n.Data))
			if strings.Contains(data, "yahoo") {
				a.yahoo = true
			}
			if strings.HasPrefix(data, "[if") || strings.HasPrefix(data, "[endif") {
				a.word = true
			}
		case html.ElementNode:
			inspectElement(n, &a)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(top)
	return a
}

func inspectElement(n *html.Node, a *artifacts) {
	class := dom.GetAttribute(n, "class")
	id := dom.GetAttribute(n, "id")
	lowerClass := strings.ToLower(class)
	lowerID := strings.ToLower(id)

	if strings.Contains(lowerClass, "yahoo") || strings.Contains(lowerClass, "ydp") ||
		strings.Contains(lowerID, "yahoo") || strings.HasPrefix(lowerID, "yiv") {
		a.yahoo = true
	}

	switch {
	case strings.EqualFold(n.Data, "o:p"):
		a.word = true
	case msoClassPattern.MatchString(class):
		a.word = true
	case strings.Contains(strings.ToLower(dom.GetAttribute(n, "style")), "mso-"):
		a.word = true
	case n.Data == "meta" && strings.EqualFold(dom.GetAttribute(n, "name"), "generator") &&
		strings.Contains(strings.ToLower(dom.GetAttribute(n, "content")), "microsoft word"):
		a.word = true
	case n.Data == "html" && strings.Contains(dom.GetAttribute(n, "xmlns:o"), "microsoft-com:office"):
		a.word = true
	}
}
