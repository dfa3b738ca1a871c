// Package metadata derives sender, date, subject, thread and language
// information from an email, independently of the reply/quote split.
package metadata

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/dtnitsch/email-reply-parser/models"
)

const (
	SourceHeader = "header"
	SourceBody   = "body"
)

var (
	addressPattern = regexp.MustCompile(`[\w.+'-]+@[\w-]+(\.[\w-]+)+`)
	mailtoPattern  = regexp.MustCompile(`(?i)\[mailto:[^\]]*\]`)
	nameTrim       = " \t\"'<>()[],;:"
)

// ParseSender splits a From value into name and address. It never fails:
// whatever cannot be parsed stays in Raw.
func ParseSender(raw string) models.Sender {
	raw = strings.TrimSpace(raw)
	s := models.Sender{Raw: raw}
	if raw == "" {
		return s
	}

	if addr, err := mail.ParseAddress(raw); err == nil {
		s.Name = addr.Name
		s.Email = strings.ToLower(addr.Address)
		return s
	}

	email := addressPattern.FindString(raw)
	cleaned := mailtoPattern.ReplaceAllString(raw, "")
	if email != "" {
		s.Email = strings.ToLower(email)
		cleaned = strings.Replace(cleaned, email, "", 1)
	}
	s.Name = strings.Trim(strings.Join(strings.Fields(cleaned), " "), nameTrim)
	return s
}

// ParseDate parses a date header or a quoted Sent/Date value. Unparseable
// input keeps Raw and leaves Parsed and Timestamp empty.
func ParseDate(raw string) models.DateInfo {
	raw = strings.TrimSpace(raw)
	info := models.DateInfo{Raw: raw}
	if raw == "" {
		return info
	}

	t, ok := parseTime(raw)
	if !ok {
		return info
	}
	ts := t.Unix()
	info.Parsed = t.Format(time.RFC3339)
	info.Timestamp = &ts
	return info
}

var dateLayouts = []string{
	"January 2 2006 3:04 PM",
	"January 2 2006 3:04:05 PM",
	"January 2 2006 15:04",
	"January 2 2006 15:04:05",
	"January 2 2006",
	"Jan 2 2006 3:04 PM",
	"Jan 2 2006 3:04:05 PM",
	"Jan 2 2006 15:04",
	"Jan 2 2006",
	"2 January 2006 15:04",
	"2 January 2006 15:04:05",
	"2 January 2006 3:04 PM",
	"2 January 2006",
	"2 Jan 2006 15:04",
	"2 Jan 2006 15:04:05",
	"2 Jan 2006 3:04 PM",
	"2 Jan 2006",
	"2.1.2006 15:04",
	"2.1.2006 15:04:05",
	"2.1.2006",
	"2-1-2006 15:04",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

func parseTime(raw string) (time.Time, bool) {
	if t, err := mail.ParseDate(raw); err == nil {
		return t, true
	}

	translated := translateDate(raw)
	flat := strings.Join(strings.Fields(strings.ReplaceAll(translated, ",", " ")), " ")
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, flat); err == nil {
			return t, true
		}
	}

	if t, err := dateparse.ParseIn(translated, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}
