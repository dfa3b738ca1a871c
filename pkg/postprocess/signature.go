package postprocess

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"

	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

// Signature detectors, in the order they are tried.
const (
	DetectorDashLine      = "dash_line"
	DetectorSignatureNode = "signature_element"
	DetectorContactBlock  = "contact_block"
)

const (
	maxSignatureLines   = 6
	maxSignatureLineLen = 60
)

var (
	emailPattern = regexp.MustCompile(`[\w.+-]+@[\w-]+(\.[\w-]+)+`)
	phonePattern = regexp.MustCompile(`\+?\(?\d[\d\s().-]{5,}\d`)
)

// Signature is a detected signature block.
type Signature struct {
	Text     string
	Detector string
}

// Found reports whether a detector matched.
func (s Signature) Found() bool {
	return s.Detector != ""
}

// SignatureExtractor separates a trailing signature from a reply.
type SignatureExtractor struct{}

// Split returns the reply with the signature removed and the signature itself.
// When no detector matches, body is replyHTML unchanged. When a signature is
// found in the text but cannot be located in the markup, it is reported and
// body is unchanged.
func (SignatureExtractor) Split(replyHTML string) (body string, sig Signature) {
	if strings.TrimSpace(replyHTML) == "" {
		return replyHTML, Signature{}
	}
	doc, err := htmldoc.Parse(replyHTML)
	if err != nil {
		return replyHTML, Signature{}
	}
	root := doc.Root()
	lines := strings.Split(doc.Text(), "\n")

	// 1. a line holding only "--"
	if text, from, ok := dashLineSignature(lines); ok {
		sig = Signature{Text: text, Detector: DetectorDashLine}
		return cutText(doc, strings.Join(lines[from:], "\n"), replyHTML), sig
	}

	// 2. an element classed or id'd as a signature
	if n := signatureElement(root); n != nil {
		sig = Signature{Text: htmldoc.Text(n), Detector: DetectorSignatureNode}
		htmldoc.Remove(n)
		return Trimmer{}.Trim(render(doc, replyHTML)), sig
	}

	// 3. a short trailing block with contact details
	if text, from, ok := contactBlockSignature(lines); ok {
		sig = Signature{Text: text, Detector: DetectorContactBlock}
		return cutText(doc, strings.Join(lines[from:], "\n"), replyHTML), sig
	}

	return replyHTML, Signature{}
}

// SplitText applies the line based detectors to plain text.
func (SignatureExtractor) SplitText(text string) (body string, sig Signature) {
	lines := strings.Split(text, "\n")
	if s, from, ok := dashLineSignature(lines); ok {
		return strings.TrimSpace(strings.Join(lines[:from], "\n")), Signature{Text: s, Detector: DetectorDashLine}
	}
	if s, from, ok := contactBlockSignature(lines); ok {
		return strings.TrimSpace(strings.Join(lines[:from], "\n")), Signature{Text: s, Detector: DetectorContactBlock}
	}
	return text, Signature{}
}

// dashLineSignature finds the last "--" line with text after it. from is the
// index of the "--" line.
func dashLineSignature(lines []string) (text string, from int, ok bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "--" {
			continue
		}
		text = joinNonBlank(lines[i+1:])
		if text == "" {
			return "", 0, false
		}
		return text, i, true
	}
	return "", 0, false
}

// contactBlockSignature finds a run of short lines after the last blank line,
// following a non-empty paragraph, that holds an email address or phone number.
func contactBlockSignature(lines []string) (text string, from int, ok bool) {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	blank := -1
	for i := end - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			blank = i
			break
		}
	}
	if blank <= 0 || strings.TrimSpace(strings.Join(lines[:blank], "")) == "" {
		return "", 0, false
	}

	run := lines[blank+1 : end]
	if len(run) == 0 || len(run) > maxSignatureLines {
		return "", 0, false
	}

	contact := false
	for _, line := range run {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) > maxSignatureLineLen {
			return "", 0, false
		}
		if emailPattern.MatchString(line) || isPhone(line) {
			contact = true
		}
	}
	if !contact {
		return "", 0, false
	}
	return joinNonBlank(run), blank + 1, true
}

func isPhone(line string) bool {
	for _, m := range phonePattern.FindAllString(line, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 7 {
			return true
		}
	}
	return false
}

func joinNonBlank(lines []string) string {
	var out []string
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// signatureElement returns the outermost element whose class or id mentions
// "signature" and that holds text.
func signatureElement(root *html.Node) *html.Node {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n != root {
			id := strings.ToLower(dom.GetAttribute(n, "id"))
			if (htmldoc.HasClassContaining(n, "signature") || strings.Contains(id, "signature")) &&
				strings.TrimSpace(htmldoc.Text(n)) != "" {
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// cutText removes the trailing content of doc whose text is want. The cut
// point is the last text node from which the remaining text matches want,
// ignoring whitespace. A text node that holds both body and signature is split
// where the signature begins. If no cut point exists fallback is returned.
func cutText(doc *htmldoc.Document, want, fallback string) string {
	root := doc.Root()
	start := findCut(root, squash(want))
	if start == nil {
		return fallback
	}

	// climb while start is the first visible content of its parent
	for start.Parent != nil && start.Parent != root && firstVisible(start.Parent) == start {
		start = start.Parent
	}
	htmldoc.TruncateFrom(start, root)
	return Trimmer{}.Trim(render(doc, fallback))
}

func findCut(root *html.Node, want string) *html.Node {
	var texts []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "script", "style", "head", "title", "template", "noscript", "xml":
				return
			}
		}
		if n.Type == html.TextNode {
			texts = append(texts, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	suffix := ""
	for i := len(texts) - 1; i >= 0; i-- {
		later := suffix
		suffix = squash(texts[i].Data) + suffix
		if suffix == want {
			return texts[i]
		}
		if len(suffix) > len(want) {
			if !strings.HasSuffix(suffix, want) {
				return nil
			}
			// the signature starts inside this node
			return splitTextNode(texts[i], want[:len(want)-len(later)])
		}
	}
	return nil
}

// splitTextNode splits n so that a new text node following it holds the
// trailing content whose squashed text is tail. It returns the new node, or
// nil when no such split exists.
func splitTextNode(n *html.Node, tail string) *html.Node {
	need := utf8.RuneCountInString(tail)
	if need == 0 {
		return nil
	}
	data := n.Data
	off := -1
	for end := len(data); end > 0 && need > 0; {
		r, size := utf8.DecodeLastRuneInString(data[:end])
		end -= size
		if !unicode.IsSpace(r) {
			need--
			off = end
		}
	}
	if need > 0 || off <= 0 || squash(data[off:]) != tail {
		return nil
	}

	rest := &html.Node{Type: html.TextNode, Data: data[off:]}
	n.Data = strings.TrimRightFunc(data[:off], unicode.IsSpace)
	n.Parent.InsertBefore(rest, n.NextSibling)
	return rest
}

// firstVisible returns the first child of n that is not blank text or a comment.
func firstVisible(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.CommentNode {
			continue
		}
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
			continue
		}
		return c
	}
	return nil
}

// squash drops all whitespace, including non-breaking spaces.
func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func render(doc *htmldoc.Document, fallback string) string {
	out, err := doc.Render()
	if err != nil {
		return fallback
	}
	return out
}
