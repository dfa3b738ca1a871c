package htmldoc

import (
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// Classes returns the class tokens of n.
func Classes(n *html.Node) []string {
	return strings.Fields(dom.GetAttribute(n, "class"))
}

// HasClassContaining reports whether any class token of n contains sub, case-insensitively.
func HasClassContaining(n *html.Node, sub string) bool {
	sub = strings.ToLower(sub)
	for _, c := range Classes(n) {
		if strings.Contains(strings.ToLower(c), sub) {
			return true
		}
	}
	return false
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Unwrap replaces n with its children.
func Unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// NextElement returns the next sibling element of n, skipping text and comments.
func NextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// PreviousElement returns the previous sibling element of n, skipping text and comments.
func PreviousElement(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}

// Contains reports whether n is ancestor or equal to m.
func Contains(n, m *html.Node) bool {
	for p := m; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// AbsorbFollowing moves every node that follows from in document order, up to
// the end of stop, into target. Nodes are appended to target in their original
// order. target must not be one of the moved nodes.
func AbsorbFollowing(target, from, stop *html.Node) int {
	moved := 0
	for n := from; n != nil && n != stop; n = n.Parent {
		for s := n.NextSibling; s != nil; {
			next := s.NextSibling
			if Contains(s, target) {
				break
			}
			s.Parent.RemoveChild(s)
			target.AppendChild(s)
			moved++
			s = next
		}
		if n.Parent == stop {
			break
		}
	}
	return moved
}

// TruncateFrom removes n and everything after it in document order, up to the
// end of stop. It returns the removed top-level nodes in document order.
func TruncateFrom(n, stop *html.Node) []*html.Node {
	var removed []*html.Node
	if n == nil || n == stop || !Contains(stop, n) {
		return nil
	}

	var levels [][]*html.Node
	for cur := n; cur != nil && cur != stop; cur = cur.Parent {
		var level []*html.Node
		start := cur.NextSibling
		if cur == n {
			start = cur
		}
		for s := start; s != nil; {
			next := s.NextSibling
			s.Parent.RemoveChild(s)
			level = append(level, s)
			s = next
		}
		levels = append(levels, level)
	}

	// innermost content comes first in document order
	for _, level := range levels {
		removed = append(removed, level...)
	}
	return removed
}

// IsBlank reports whether n holds no visible text and no images.
func IsBlank(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return strings.TrimSpace(strings.ReplaceAll(n.Data, "\u00a0", " ")) == ""
	case html.CommentNode:
		return true
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "img", "video", "audio", "iframe", "object", "embed", "input", "svg", "canvas":
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !IsBlank(c) {
				return false
			}
		}
		return true
	}
	return true
}

// CreateElement returns a detached element with the given attributes as name/value pairs.
func CreateElement(tag string, attrs ...string) *html.Node {
	n := dom.CreateElement(tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		dom.SetAttribute(n, attrs[i], attrs[i+1])
	}
	return n
}
