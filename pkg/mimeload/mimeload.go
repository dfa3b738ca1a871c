// Package mimeload reads RFC 5322 messages (.eml files) into pipeline input.
package mimeload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/dtnitsch/email-reply-parser/models"
)

// ErrNoBody is returned when a message has neither an html nor a text part.
var ErrNoBody = errors.New("message has no readable body")

// LoadFile opens path and loads it with Load.
func LoadFile(path string) (models.RawEmail, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.RawEmail{}, fmt.Errorf("failed to open message: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a MIME message. The first text/html part becomes the body; a
// text/plain part is used only when there is no html. Attachment content is
// read to count its size and then discarded. Parts in an unknown charset are
// kept undecoded.
func Load(r io.Reader) (models.RawEmail, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return models.RawEmail{}, fmt.Errorf("failed to read message header: %w", err)
	}
	defer mr.Close()

	var email models.RawEmail
	email.Subject, _ = mr.Header.Subject()
	if email.Subject == "" {
		email.Subject = mr.Header.Get("Subject")
	}
	email.SenderHeader = mr.Header.Get("From")
	email.DateHeader = mr.Header.Get("Date")

	var htmlBody, textBody string
	var haveHTML, haveText bool
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			return models.RawEmail{}, fmt.Errorf("failed to read message part: %w", err)
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, ctErr := h.ContentType()
			if ctErr != nil || contentType == "" {
				contentType = "text/plain"
			}
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				return models.RawEmail{}, fmt.Errorf("failed to read %s part: %w", contentType, readErr)
			}
			switch {
			case strings.HasPrefix(contentType, "text/html") && !haveHTML:
				htmlBody, haveHTML = string(body), true
			case strings.HasPrefix(contentType, "text/plain") && !haveText:
				textBody, haveText = string(body), true
			}

		case *mail.AttachmentHeader:
			email.Attachments = append(email.Attachments, attachment(part.Body, h))
		}
	}

	switch {
	case haveHTML:
		email.HTML = htmlBody
	case haveText:
		email.HTML = textBody
	default:
		return email, ErrNoBody
	}
	return email, nil
}

func attachment(body io.Reader, h *mail.AttachmentHeader) models.Attachment {
	name, _ := h.Filename()
	if name == "" {
		name = "attachment"
	}
	contentType, _, err := h.ContentType()
	if err != nil || contentType == "" {
		contentType = "application/octet-stream"
	}
	size, _ := io.Copy(io.Discard, body)
	return models.Attachment{Name: name, Size: size, ContentType: contentType}
}
