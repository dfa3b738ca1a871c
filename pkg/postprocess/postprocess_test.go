package postprocess

import (
	"math"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "script removed",
			html: `<p>Hi</p><script>alert(1)</script>`,
			want: `<p>Hi</p>`,
		},
		{
			name: "event handlers removed, style kept",
			html: `<p style="color:red" onclick="x()" onMouseOver="y()">Hi</p>`,
			want: `<p style="color:red">Hi</p>`,
		},
		{
			name: "tracking pixel removed",
			html: `<p>Hi</p><img src="https://t.example.com/o.gif" width="1" height="1">`,
			want: `<p>Hi</p>`,
		},
		{
			name: "pixel by style removed",
			html: `<p>Hi<img src="t.gif" style="width:1px;height:1px;border:0"></p>`,
			want: `<p>Hi</p>`,
		},
		{
			name: "real image kept",
			html: `<p>Hi<img src="logo.png" width="120" height="1"></p>`,
			want: `<p>Hi<img src="logo.png" width="120" height="1"></p>`,
		},
		{
			name: "embedded content removed",
			html: `<div>A<iframe src="x"></iframe><object data="y"></object><embed src="z"></div>`,
			want: `<div>A</div>`,
		},
		{
			name: "clean input is returned verbatim",
			html: `<DIV Style="font-family: Calibri">Hi &amp; bye</DIV>`,
			want: `<DIV Style="font-family: Calibri">Hi &amp; bye</DIV>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Sanitizer{}).Sanitize(tt.html); got != tt.want {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		`<p onclick="x()">Hi<script>1</script><img width="1" height="1" src="p"></p>`,
		`<html><head><script>1</script></head><body onload="go()"><p>Hi</p></body></html>`,
		`<div><iframe></iframe><blockquote type="cite">Quoted</blockquote></div>`,
		`plain text`,
		"",
	}

	s := Sanitizer{}
	for _, in := range inputs {
		once := s.Sanitize(in)
		if twice := s.Sanitize(once); twice != once {
			t.Errorf("Sanitize() not idempotent for %q\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}

func TestTrim(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "trailing empty blocks",
			html: `<div>Hello</div><div><br></div><p> </p><hr>`,
			want: `<div>Hello</div>`,
		},
		{
			name: "nested trailing blanks",
			html: `<div><p>Hello</p><div><br></div></div>`,
			want: `<div><p>Hello</p></div>`,
		},
		{
			name: "inner empty blocks kept",
			html: `<div>A</div><div><br></div><div>B</div>`,
			want: `<div>A</div><div><br></div><div>B</div>`,
		},
		{
			name: "trailing image kept",
			html: `<div>A</div><div><img src="x.png"></div>`,
			want: `<div>A</div><div><img src="x.png"></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Trimmer{}).Trim(tt.html); got != tt.want {
				t.Errorf("Trim() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSignatureDashLine(t *testing.T) {
	src := `<div>Thanks for the update.</div><div><br></div><div>--</div><div>Jane Doe</div><div>CEO</div><div>jane@example.com</div>`

	body, sig := SignatureExtractor{}.Split(src)
	if sig.Text != "Jane Doe\nCEO\njane@example.com" {
		t.Errorf("signature = %q", sig.Text)
	}
	if sig.Detector != DetectorDashLine {
		t.Errorf("detector = %q, want %q", sig.Detector, DetectorDashLine)
	}
	if body != `<div>Thanks for the update.</div>` {
		t.Errorf("body = %q", body)
	}
}

func TestSignatureDashLineWithBreaks(t *testing.T) {
	src := `<p>See you Monday.<br><br>-- <br>Jane Doe<br>+1 (555) 010-2030</p>`

	body, sig := SignatureExtractor{}.Split(src)
	if sig.Text != "Jane Doe\n+1 (555) 010-2030" {
		t.Errorf("signature = %q", sig.Text)
	}
	if strings.Contains(body, "Jane") || !strings.Contains(body, "See you Monday.") {
		t.Errorf("body = %q", body)
	}
}

func TestSignatureSharingTextNode(t *testing.T) {
	src := "<pre>Thanks for the update.\n\n--\nJane Doe\nCEO\njane@example.com</pre>"

	body, sig := SignatureExtractor{}.Split(src)
	if sig.Text != "Jane Doe\nCEO\njane@example.com" {
		t.Errorf("signature = %q", sig.Text)
	}
	if body != "<pre>Thanks for the update.</pre>" {
		t.Errorf("body = %q", body)
	}
}

func TestSignatureElement(t *testing.T) {
	src := `<div>Sounds good.</div><div class="gmail_signature"><div>Bob Smith</div><div>Acme</div></div>`

	body, sig := SignatureExtractor{}.Split(src)
	if sig.Detector != DetectorSignatureNode {
		t.Fatalf("detector = %q, want %q", sig.Detector, DetectorSignatureNode)
	}
	if sig.Text != "Bob Smith\nAcme" {
		t.Errorf("signature = %q", sig.Text)
	}
	if body != `<div>Sounds good.</div>` {
		t.Errorf("body = %q", body)
	}
}

func TestSignatureContactBlock(t *testing.T) {
	src := `<p>Please send the invoice by Friday.</p><p>Bob Smith<br>Accounts<br>bob@example.com</p>`

	body, sig := SignatureExtractor{}.Split(src)
	if sig.Detector != DetectorContactBlock {
		t.Fatalf("detector = %q, want %q", sig.Detector, DetectorContactBlock)
	}
	if sig.Text != "Bob Smith\nAccounts\nbob@example.com" {
		t.Errorf("signature = %q", sig.Text)
	}
	if body != `<p>Please send the invoice by Friday.</p>` {
		t.Errorf("body = %q", body)
	}
}

func TestNoSignature(t *testing.T) {
	tests := []string{
		`<p>Short answer: yes.</p>`,
		`<p>Intro</p><p>This closing paragraph is long enough that it cannot be a signature line at all, even with a@b.co inside.</p>`,
		`<p>Only one paragraph with mail a@b.co</p>`,
		"",
	}

	for _, src := range tests {
		body, sig := SignatureExtractor{}.Split(src)
		if sig.Found() {
			t.Errorf("Split(%q) found signature %q", src, sig.Text)
		}
		if body != src {
			t.Errorf("Split(%q) body = %q, want unchanged", src, body)
		}
	}
}

func TestSplitText(t *testing.T) {
	body, sig := SignatureExtractor{}.SplitText("Thanks!\n\n--\nJane Doe\njane@example.com")
	if body != "Thanks!" {
		t.Errorf("body = %q, want %q", body, "Thanks!")
	}
	if sig.Text != "Jane Doe\njane@example.com" {
		t.Errorf("signature = %q", sig.Text)
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name     string
		original string
		reply    string
		want     float64
	}{
		{"empty original", "", "", 0},
		{"empty original with reply", "   ", "abc", 0},
		{"full reply", "abc def", "abc   def", 1},
		{"half", "abcd", "ab", 0.5},
		{"reply longer than original", "ab", "abcdef", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.original, tt.reply)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Ratio() = %v out of bounds", got)
			}
		})
	}
}

func TestHasReply(t *testing.T) {
	if !HasReply("Thanks", 0.2) {
		t.Error("HasReply() = false for short reply")
	}
	if HasReply("Thanks", 0.99) {
		t.Error("HasReply() = true when nothing was stripped")
	}
	if HasReply("", 0) {
		t.Error("HasReply() = true for empty reply")
	}
}
