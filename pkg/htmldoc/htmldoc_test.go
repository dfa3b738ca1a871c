package htmldoc

import (
	"strings"
	"testing"
)

func TestParseFragmentRoundTrip(t *testing.T) {
	src := `<div>Hello <b>world</b></div><p>Second</p>`

	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !doc.IsFragment() {
		t.Fatal("expected fragment")
	}

	got, err := doc.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got != src {
		t.Errorf("Render() = %q, want %q", got, src)
	}
}

func TestParseDocumentKeepsShape(t *testing.T) {
	src := `<html><head><title>x</title></head><body><p>Hi</p></body></html>`

	doc, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.IsFragment() {
		t.Fatal("expected full document")
	}
	if doc.Root().Data != "body" {
		t.Errorf("Root() = %q, want body", doc.Root().Data)
	}

	got, err := doc.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, "<html>") || !strings.Contains(got, "<p>Hi</p>") {
		t.Errorf("Render() = %q, want full document", got)
	}
}

func TestParseRejectsInvalidUTF8(t *testing.T) {
	if _, err := Parse("<p>\xff\xfe</p>"); err != ErrInvalidUTF8 {
		t.Errorf("Parse() error = %v, want ErrInvalidUTF8", err)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"<p>hi</p>", true},
		{"<!-- note -->", true},
		{"plain text only", false},
		{"a < b and c > d", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := LooksLikeHTML(tt.in); got != tt.want {
			t.Errorf("LooksLikeHTML(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "divs become lines",
			html: `<div>Thanks</div><div><br></div><div>--</div><div>Jane</div>`,
			want: "Thanks\n\n--\nJane",
		},
		{
			name: "paragraphs separated by blank line",
			html: `<p>One</p><p>Two</p>`,
			want: "One\n\nTwo",
		},
		{
			name: "inline whitespace collapses",
			html: "<p>a   lot\n of   space</p>",
			want: "a lot of space",
		},
		{
			name: "script and style are skipped",
			html: `<style>p{}</style><p>Shown</p><script>alert(1)</script>`,
			want: "Shown",
		},
		{
			name: "br splits lines",
			html: `Line one<br>Line two`,
			want: "Line one\nLine two",
		},
		{
			name: "non-breaking space",
			html: `<div>a&nbsp;b</div>`,
			want: "a b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.html); got != tt.want {
				t.Errorf("PlainText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextLength(t *testing.T) {
	if got := TextLength("  héllo \n\n world "); got != 11 {
		t.Errorf("TextLength() = %d, want 11", got)
	}
	if got := TextLength(""); got != 0 {
		t.Errorf("TextLength(\"\") = %d, want 0", got)
	}
}

func TestAbsorbFollowing(t *testing.T) {
	doc, err := Parse(`<div><div id="m">Header</div></div><div>Quoted one</div><p>Quoted two</p>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	marker := doc.Find("#m").Nodes[0]

	moved := AbsorbFollowing(marker, marker, doc.Root())
	if moved != 2 {
		t.Errorf("AbsorbFollowing() moved = %d, want 2", moved)
	}

	got, _ := doc.Render()
	want := `<div><div id="m">Header<div>Quoted one</div><p>Quoted two</p></div></div>`
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestTruncateFrom(t *testing.T) {
	doc, err := Parse(`<div><p>Keep</p><p id="cut">Drop</p><p>Drop too</p></div><div>Drop three</div>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cut := doc.Find("#cut").Nodes[0]

	removed := TruncateFrom(cut, doc.Root())
	if len(removed) != 3 {
		t.Fatalf("TruncateFrom() removed %d nodes, want 3", len(removed))
	}

	got, _ := doc.Render()
	if got != `<div><p>Keep</p></div>` {
		t.Errorf("Render() = %q", got)
	}
	if rendered := RenderNodes(removed); rendered != `<p id="cut">Drop</p><p>Drop too</p><div>Drop three</div>` {
		t.Errorf("RenderNodes() = %q", rendered)
	}
}

func TestUnwrapAndIsBlank(t *testing.T) {
	doc, err := Parse(`<div id="w"><span>a</span>b</div><div id="e"> <br> </div>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !IsBlank(doc.Find("#e").Nodes[0]) {
		t.Error("IsBlank(#e) = false, want true")
	}
	if IsBlank(doc.Find("#w").Nodes[0]) {
		t.Error("IsBlank(#w) = true, want false")
	}

	Unwrap(doc.Find("#w").Nodes[0])
	got, _ := doc.Render()
	if !strings.HasPrefix(got, `<span>a</span>b<div id="e">`) {
		t.Errorf("Render() after Unwrap = %q", got)
	}
}
