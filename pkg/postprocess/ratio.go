package postprocess

import "github.com/dtnitsch/email-reply-parser/pkg/htmldoc"

// Ratio is the share of the original text kept in the reply, measured on the
// whitespace-normalized plain text of both. It is 0 for an empty original and
// never leaves [0, 1].
func Ratio(originalText, replyText string) float64 {
	original := htmldoc.TextLength(originalText)
	if original == 0 {
		return 0
	}
	r := float64(htmldoc.TextLength(replyText)) / float64(original)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// HasReply reports whether extraction kept a reply that is materially shorter
// than the original.
func HasReply(replyText string, ratio float64) bool {
	return htmldoc.TextLength(replyText) > 0 && ratio < 0.95
}
