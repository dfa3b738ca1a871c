// Package headers recognizes the textual header clusters mail clients insert
// above quoted messages: From/Sent/To/Subject blocks, "On ... wrote:" lines
// and original-message separators, in several languages.
package headers

import (
	"regexp"
	"strings"
)

// Field is a normalized header key.
type Field string

const (
	FieldFrom    Field = "from"
	FieldSent    Field = "sent"
	FieldTo      Field = "to"
	FieldCc      Field = "cc"
	FieldSubject Field = "subject"
)

// Kind tells how a cluster was recognized.
type Kind string

const (
	KindHeaderBlock Kind = "header_block"
	KindAttribution Kind = "attribution"
	KindSeparator   Kind = "separator"
)

// maxBlockLines bounds how far below a From line the other keys may appear.
const maxBlockLines = 6

var fieldPatterns = []struct {
	field   Field
	pattern *regexp.Regexp
}{
	{FieldFrom, regexp.MustCompile(`(?i)^[*_]{0,2}(from|van|von|de|da|fra|från|od|от|发件人)[*_]{0,2}\s*[:：][*_]{0,2}\s*(.*)$`)},
	{FieldSent, regexp.MustCompile(`(?i)^[*_]{0,2}(sent|date|verzonden|gesendet|datum|envoyé|enviado|inviato|data|fecha|skickat|sendt|发送时间|日期)[*_]{0,2}\s*[:：][*_]{0,2}\s*(.*)$`)},
	{FieldTo, regexp.MustCompile(`(?i)^[*_]{0,2}(to|aan|an|à|a|para|till|til|do|收件人)[*_]{0,2}\s*[:：][*_]{0,2}\s*(.*)$`)},
	{FieldCc, regexp.MustCompile(`(?i)^[*_]{0,2}(cc|kopie|copie|cc/bcc)[*_]{0,2}\s*[:：][*_]{0,2}\s*(.*)$`)},
	{FieldSubject, regexp.MustCompile(`(?i)^[*_]{0,2}(subject|onderwerp|betreff|objet|asunto|oggetto|assunto|ämne|emne|temat|主题)[*_]{0,2}\s*[:：][*_]{0,2}\s*(.*)$`)},
}

var attributionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^on\s.{1,250}\swrote\s*:$`),
	regexp.MustCompile(`(?i)^am\s.{1,250}\sschrieb.{0,120}:$`),
	regexp.MustCompile(`(?i)^le\s.{1,250}\sa\sécrit\s*:$`),
	regexp.MustCompile(`(?i)^op\s.{1,250}\sschreef.{0,120}:$`),
	regexp.MustCompile(`(?i)^el\s.{1,250}\sescribió\s*:$`),
	regexp.MustCompile(`(?i)^il\s.{1,250}\sha\sscritto\s*:$`),
	regexp.MustCompile(`(?i)^em\s.{1,250}\sescreveu\s*:$`),
}

// A "<name> wrote:" line without a leading "On" only counts when it also
// carries an address or a timestamp.
var (
	looseAttribution  = regexp.MustCompile(`(?i)^.{1,120}\s(wrote|schrieb|schreef|a écrit|escribió)\s*:$`)
	attributionDetail = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+|\b\d{1,2}:\d{2}\b|\b\d{1,4}[/.-]\d{1,2}[/.-]\d{1,4}\b`)
)

var separatorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^-{2,}\s*original\s+message\s*-{2,}$`),
	regexp.MustCompile(`(?i)^-{2,}\s*(ursprüngliche nachricht|oorspronkelijk bericht|message d'origine|mensaje original|messaggio originale)\s*-{2,}$`),
	regexp.MustCompile(`(?i)^-{2,}\s*forwarded\s+message\s*-{2,}$`),
	regexp.MustCompile(`(?i)^begin\s+forwarded\s+message\s*:$`),
	regexp.MustCompile(`^_{10,}$`),
}

// ParseField recognizes a "Key: value" header line.
func ParseField(line string) (Field, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 400 {
		return "", "", false
	}
	for _, fp := range fieldPatterns {
		if m := fp.pattern.FindStringSubmatch(line); m != nil {
			return fp.field, strings.TrimSpace(m[2]), true
		}
	}
	return "", "", false
}

// IsAttribution reports whether line is an "On <date>, <name> wrote:" style line.
func IsAttribution(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 400 {
		return false
	}
	for _, p := range attributionPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return looseAttribution.MatchString(line) && attributionDetail.MatchString(line)
}

// IsSeparator reports whether line is an original or forwarded message separator.
func IsSeparator(line string) bool {
	line = strings.TrimSpace(line)
	for _, p := range separatorPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// Cluster is one recognized header cluster within a list of lines.
// Start and End are inclusive line indexes.
type Cluster struct {
	Kind   Kind
	Start  int
	End    int
	Fields map[Field]string
	Line   string
}

// BlockAt recognizes a header block starting at lines[i]: a From line followed
// within a few lines by at least one other header key.
func BlockAt(lines []string, i int) (Cluster, bool) {
	field, value, ok := ParseField(lines[i])
	if !ok || field != FieldFrom {
		return Cluster{}, false
	}

	c := Cluster{
		Kind:   KindHeaderBlock,
		Start:  i,
		End:    i,
		Fields: map[Field]string{FieldFrom: value},
	}
	for j := i + 1; j < len(lines) && j <= i+maxBlockLines; j++ {
		if strings.TrimSpace(lines[j]) == "" {
			continue
		}
		f, v, ok := ParseField(lines[j])
		if !ok || f == FieldFrom {
			break
		}
		if _, seen := c.Fields[f]; !seen {
			c.Fields[f] = v
		}
		c.End = j
	}
	if c.End == i {
		return Cluster{}, false
	}
	return c, true
}

// AttributionAt recognizes an attribution line at lines[i]. Attribution lines
// wrapped over two lines are joined.
func AttributionAt(lines []string, i int) (Cluster, bool) {
	line := strings.TrimSpace(lines[i])
	if IsAttribution(line) {
		return Cluster{Kind: KindAttribution, Start: i, End: i, Line: line}, true
	}
	if i+1 < len(lines) {
		joined := line + " " + strings.TrimSpace(lines[i+1])
		if line != "" && IsAttribution(joined) && !IsAttribution(lines[i+1]) {
			return Cluster{Kind: KindAttribution, Start: i, End: i + 1, Line: joined}, true
		}
	}
	return Cluster{}, false
}

// Clusters scans text for header clusters in order. A separator directly
// followed by a header block is reported once, as the header block.
func Clusters(text string) []Cluster {
	lines := strings.Split(text, "\n")
	var out []Cluster

	for i := 0; i < len(lines); i++ {
		if c, ok := BlockAt(lines, i); ok {
			out = append(out, c)
			i = c.End
			continue
		}
		if c, ok := AttributionAt(lines, i); ok {
			out = append(out, c)
			i = c.End
			continue
		}
		if IsSeparator(lines[i]) {
			j := i + 1
			for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
				j++
			}
			if j < len(lines) {
				if c, ok := BlockAt(lines, j); ok {
					c.Start = i
					out = append(out, c)
					i = c.End
					continue
				}
			}
			out = append(out, Cluster{Kind: KindSeparator, Start: i, End: i, Line: strings.TrimSpace(lines[i])})
		}
	}
	return out
}

// HasHeaderBlock reports whether text contains a From-led header block.
func HasHeaderBlock(text string) bool {
	lines := strings.Split(text, "\n")
	for i := range lines {
		if _, ok := BlockAt(lines, i); ok {
			return true
		}
	}
	return false
}

// StartsWithCluster reports whether the first non-blank lines of text form a cluster.
func StartsWithCluster(text string) bool {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return false
	}
	if _, ok := BlockAt(lines, 0); ok {
		return true
	}
	if _, ok := AttributionAt(lines, 0); ok {
		return true
	}
	return IsSeparator(lines[0])
}
