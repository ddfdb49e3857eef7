package email

import (
	"context"
	"strings"
	"testing"

	"evalportal/internal/platform/config"
)

func TestNewDisabledIsNoop(t *testing.T) {
	mailer := New(config.Config{EmailEnabled: false, SMTPHost: "smtp.local"})
	if _, ok := mailer.(noopMailer); !ok {
		t.Fatalf("expected noop mailer, got %T", mailer)
	}
	if err := mailer.Send(context.Background(), "a@x.com", "b@x.com", "s", "b"); err != nil {
		t.Fatalf("noop send failed: %v", err)
	}
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("a@x.com", "b@x.com", "New\r\nBcc: evil@x.com", "line one\nline two"))
	if !strings.Contains(msg, "Subject: New  Bcc: evil@x.com\r\n") {
		t.Fatalf("subject header not sanitized: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nline one\r\nline two") {
		t.Fatalf("unexpected body encoding: %q", msg)
	}
}
