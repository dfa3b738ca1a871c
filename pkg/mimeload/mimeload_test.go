package mimeload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const multipartMessage = "From: Jane Doe <jane@example.com>\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: =?utf-8?q?RE=3A_Quarterly_report?=\r\n" +
	"Date: Mon, 9 Feb 2026 07:48:00 +0100\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=outer\r\n" +
	"\r\n" +
	"--outer\r\n" +
	"Content-Type: multipart/alternative; boundary=inner\r\n" +
	"\r\n" +
	"--inner\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Thanks, looks good.\r\n" +
	"--inner\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<div>Thanks, looks good.</div>\r\n" +
	"--inner--\r\n" +
	"--outer\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=\"report.pdf\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"aGVsbG8gd29ybGQ=\r\n" +
	"--outer--\r\n"

func TestLoadMultipart(t *testing.T) {
	email, err := Load(strings.NewReader(multipartMessage))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if email.Subject != "RE: Quarterly report" {
		t.Errorf("Subject = %q, want %q", email.Subject, "RE: Quarterly report")
	}
	if email.SenderHeader != "Jane Doe <jane@example.com>" {
		t.Errorf("SenderHeader = %q", email.SenderHeader)
	}
	if email.DateHeader != "Mon, 9 Feb 2026 07:48:00 +0100" {
		t.Errorf("DateHeader = %q", email.DateHeader)
	}
	if !strings.Contains(email.HTML, "<div>Thanks, looks good.</div>") {
		t.Errorf("HTML = %q, want the html alternative", email.HTML)
	}

	if len(email.Attachments) != 1 {
		t.Fatalf("got %d attachments, want 1", len(email.Attachments))
	}
	att := email.Attachments[0]
	if att.Name != "report.pdf" {
		t.Errorf("attachment name = %q, want report.pdf", att.Name)
	}
	if att.ContentType != "application/pdf" {
		t.Errorf("attachment content type = %q", att.ContentType)
	}
	if att.Size != int64(len("hello world")) {
		t.Errorf("attachment size = %d, want %d", att.Size, len("hello world"))
	}
}

func TestLoadPlainTextOnly(t *testing.T) {
	raw := "From: bob@example.com\r\n" +
		"Subject: hello\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"Just text.\r\n"

	email, err := Load(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if strings.TrimSpace(email.HTML) != "Just text." {
		t.Errorf("HTML = %q, want the text body", email.HTML)
	}
	if len(email.Attachments) != 0 {
		t.Errorf("got %d attachments, want 0", len(email.Attachments))
	}
}

func TestLoadNoBody(t *testing.T) {
	raw := "From: bob@example.com\r\n" +
		"Subject: files\r\n" +
		"Content-Type: multipart/mixed; boundary=b\r\n" +
		"\r\n" +
		"--b\r\n" +
		"Content-Type: image/png\r\n" +
		"Content-Disposition: attachment; filename=\"a.png\"\r\n" +
		"\r\n" +
		"png\r\n" +
		"--b--\r\n"

	email, err := Load(strings.NewReader(raw))
	if !errors.Is(err, ErrNoBody) {
		t.Fatalf("err = %v, want ErrNoBody", err)
	}
	if len(email.Attachments) != 1 {
		t.Errorf("got %d attachments, want 1", len(email.Attachments))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "message.eml")
	if err := os.WriteFile(path, []byte(multipartMessage), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	email, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if email.Subject != "RE: Quarterly report" {
		t.Errorf("Subject = %q", email.Subject)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.eml")); err == nil {
		t.Error("expected error for missing file")
	}
}
