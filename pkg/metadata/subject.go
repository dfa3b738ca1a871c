package metadata

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/htmldoc"
)

// subjectPrefix matches one reply or forward prefix, with an optional counter
// such as RE[3]: or RE(2):.
var subjectPrefix = regexp.MustCompile(`(?i)^\s*(re|fwd?|aw|wg|tr|rv|r|i|sv|vs|vb|vl|antw|doorst|odp|pd|ynt|rif|enc|res|回复|转发|答复|回覆|轉寄)\s*(\[\d+\]|\(\d+\))?\s*[:：]\s*`)

var forwardPrefixes = map[string]bool{
	"FW": true, "FWD": true, "WG": true, "TR": true, "RV": true, "I": true,
	"VB": true, "VL": true, "DOORST": true, "PD": true, "ENC": true,
	"转发": true, "轉寄": true,
}

// CleanSubject strips reply and forward prefixes until none is left. Prefix is
// the last prefix stripped, upper-cased.
func CleanSubject(subject string) models.Subject {
	s := models.Subject{Original: subject}
	rest := subject
	for {
		m := subjectPrefix.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		token := strings.ToUpper(rest[m[2]:m[3]])
		s.Prefix = token
		s.IsReply = true
		if forwardPrefixes[token] {
			s.IsForward = true
		}
		rest = rest[m[1]:]
	}
	s.Clean = strings.TrimSpace(rest)
	return s
}

var fold = cases.Fold()

func normalizeSubject(s string) string {
	return htmldoc.NormalizeWhitespace(fold.String(s))
}

// DetectSubjectChange compares two cleaned subjects. A change where one
// subject contains the other continues the thread; any other change breaks it.
// Both flags are false without a prior subject.
func DetectSubjectChange(current, prior string) models.SubjectChange {
	p := normalizeSubject(prior)
	if p == "" {
		return models.SubjectChange{}
	}
	c := normalizeSubject(current)
	if c == p {
		return models.SubjectChange{}
	}
	return models.SubjectChange{
		SubjectChanged: true,
		ThreadBreak:    !strings.Contains(c, p) && !strings.Contains(p, c),
	}
}
