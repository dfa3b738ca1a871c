package metadata

import (
	"regexp"
	"strings"

	"github.com/dtnitsch/email-reply-parser/models"
	"github.com/dtnitsch/email-reply-parser/pkg/headers"
)

// DetectThread counts the messages in a body from its header clusters: the
// newest message plus one per cluster. With full set, every message is split
// out with the header fields that introduce it.
func DetectThread(text string, full bool) models.Thread {
	clusters := headers.Clusters(text)
	t := models.Thread{
		MessageCount: 1 + len(clusters),
		IsThread:     len(clusters) > 0,
	}
	if !full {
		return t
	}

	lines := strings.Split(text, "\n")
	end := len(lines)
	if len(clusters) > 0 {
		end = clusters[0].Start
	}
	t.Messages = append(t.Messages, models.ThreadMessage{
		Index: 0,
		Text:  joinLines(lines[:end]),
	})

	for i, c := range clusters {
		end := len(lines)
		if i+1 < len(clusters) {
			end = clusters[i+1].Start
		}
		msg := models.ThreadMessage{
			Index: i + 1,
			Text:  joinLines(lines[c.End+1 : end]),
		}
		if c.Kind == headers.KindHeaderBlock {
			msg.From = c.Fields[headers.FieldFrom]
			msg.Sent = c.Fields[headers.FieldSent]
			msg.To = c.Fields[headers.FieldTo]
			msg.Subject = c.Fields[headers.FieldSubject]
		} else if c.Kind == headers.KindAttribution {
			msg.From = attributionSender(c.Line)
		}
		msg.Sender = ParseSender(msg.From)
		msg.Date = ParseDate(msg.Sent)
		t.Messages = append(t.Messages, msg)
	}
	return t
}

var attributionAddress = regexp.MustCompile(`(?:\d{1,2}:\d{2}(?:\s*[AaPp]\.?[Mm]\.?)?|,)?\s*([^,<>:]*?)\s*<([^<>\s]+@[^<>\s]+)>`)

// attributionSender pulls "Name <address>" out of an "On ..., Name <address> wrote:" line.
func attributionSender(line string) string {
	if m := attributionAddress.FindStringSubmatch(line); m != nil {
		if m[1] == "" {
			return m[2]
		}
		return m[1] + " <" + m[2] + ">"
	}
	return addressPattern.FindString(line)
}

// SenderFromBody reads sender and date from the first header block in text.
func SenderFromBody(text string) (models.Sender, models.DateInfo, bool) {
	for _, c := range headers.Clusters(text) {
		if c.Kind != headers.KindHeaderBlock {
			continue
		}
		sender := ParseSender(c.Fields[headers.FieldFrom])
		sender.Source = SourceBody
		return sender, ParseDate(c.Fields[headers.FieldSent]), true
	}
	return models.Sender{}, models.DateInfo{}, false
}

func joinLines(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
