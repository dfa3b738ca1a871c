package pipeline

import (
	"html"
	"strings"

	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/headers"
	"github.com/dtnitsch/email-reply-parser/pkg/postprocess"
)

// processText is the best-effort path for bodies without markup.
func (p *Pipeline) processText(email models.RawEmail, opts models.ExtractOptions) models.Response {
	text := strings.TrimSpace(strings.ReplaceAll(email.HTML, "\r\n", "\n"))
	reply, quoted := splitPlainText(text)

	body, sig := p.signatures.SplitText(reply)
	if sig.Found() && !opts.IncludeSignature {
		reply = body
	}
	ratio := postprocess.Ratio(text, reply)

	return models.Response{
		Success:  true,
		Degraded: models.KindNoHTMLBody,
		ExtractionResult: models.ExtractionResult{
			ReplyHTML:      textToHTML(reply),
			ReplyText:      reply,
			QuotedHTML:     textToHTML(quoted),
			SignatureText:  sig.Text,
			OriginalHTML:   email.HTML,
			Ratio:          ratio,
			FormatDetected: models.FormatUnknown,
			Metadata:       p.metadata(email, text, reply, ratio, opts),
		},
	}
}

// splitPlainText cuts text at the first header cluster or ">" quoted line.
func splitPlainText(text string) (reply, quoted string) {
	lines := strings.Split(text, "\n")
	cut := len(lines)

	if clusters := headers.Clusters(text); len(clusters) > 0 {
		cut = clusters[0].Start
	}
	for i := 0; i < cut; i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), ">") {
			cut = i
			break
		}
	}

	reply = strings.TrimSpace(strings.Join(lines[:cut], "\n"))
	quoted = strings.TrimSpace(strings.Join(lines[cut:], "\n"))
	return reply, quoted
}

func textToHTML(s string) string {
	if s == "" {
		return ""
	}
	return "<div>" + strings.ReplaceAll(html.EscapeString(s), "\n", "<br>") + "</div>"
}
