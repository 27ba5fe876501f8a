package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"

	"github.com/riskibarqy/fantasy-trade-market/internal/platform/logging"
	"github.com/riskibarqy/fantasy-trade-market/internal/usecase"
)

type capturedMail struct {
	addr string
	to   []string
	body string
}

func TestSMTPMailerSendsOneMessagePerRecipient(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		sent []capturedMail
	)
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.local", Port: "2525", From: "market@app"}, logging.NewNop())
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		mu.Lock()
		defer mu.Unlock()
		if from != "market@app" {
			t.Errorf("unexpected sender: %s", from)
		}
		sent = append(sent, capturedMail{addr: addr, to: to, body: string(msg)})
		return errors.New("second message still attempted")
	}

	err := m.Send(context.Background(), usecase.MailMessage{
		To:      []string{"a@x", " ", "b@x"},
		Subject: "New trade listing: Sample Guard",
		Body:    "line one\nline two",
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	m.Close()

	if len(sent) != 2 {
		t.Fatalf("expected 2 deliveries, got=%d", len(sent))
	}
	if sent[0].addr != "smtp.local:2525" || sent[0].to[0] != "a@x" || sent[1].to[0] != "b@x" {
		t.Fatalf("unexpected deliveries: %+v", sent)
	}
	if !strings.Contains(sent[0].body, "Subject: New trade listing: Sample Guard\r\n") {
		t.Fatalf("missing subject header: %q", sent[0].body)
	}
	if !strings.HasSuffix(sent[0].body, "line one\r\nline two") {
		t.Fatalf("expected CRLF body, got=%q", sent[0].body)
	}
}

func TestSMTPMailerRejectsHeaderInjection(t *testing.T) {
	t.Parallel()

	m := NewSMTPMailer(SMTPConfig{Host: "h", Port: "25", From: "f"}, logging.NewNop())
	err := m.Send(context.Background(), usecase.MailMessage{To: []string{"a@x"}, Subject: "hi\r\nBcc: evil@x"})
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}

func TestSMTPConfigEnabled(t *testing.T) {
	t.Parallel()

	if (SMTPConfig{Host: "h", Port: "25"}).Enabled() {
		t.Fatalf("expected disabled without sender")
	}
	if !(SMTPConfig{Host: "h", Port: "25", From: "f"}).Enabled() {
		t.Fatalf("expected enabled")
	}
}
