package notification

import (
	"bytes"
	"errors"
	"log"
	"net/smtp"
	"strings"
	"testing"

	"NetSimDash/internal/config"
)

func TestEmailNotifierBuildsMessage(t *testing.T) {
	cfg := config.SMTPConfig{Host: "mail.local", Port: 2525, From: "sim@local", To: "a@local, b@local"}
	n := NewEmailNotifier(cfg).(*EmailNotifier)

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	if err := n.Send("Queue alert", "<p>db is full</p>"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotAddr != "mail.local:2525" {
		t.Errorf("unexpected addr %s", gotAddr)
	}
	if len(gotTo) != 2 || gotTo[1] != "b@local" {
		t.Errorf("unexpected recipients %v", gotTo)
	}
	if !strings.Contains(string(gotMsg), "Subject: Queue alert\r\n") || !strings.HasSuffix(string(gotMsg), "<p>db is full</p>") {
		t.Errorf("unexpected message %q", gotMsg)
	}

	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	if err := n.Send("x", "y"); err == nil {
		t.Error("expected send error to propagate")
	}
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig(config.SMTPConfig{}).(*LogNotifier); !ok {
		t.Error("expected log notifier without SMTP host")
	}
	if _, ok := FromConfig(config.SMTPConfig{Host: "mail.local"}).(*EmailNotifier); !ok {
		t.Error("expected email notifier with SMTP host")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(log.New(&buf, "", 0))
	n.Send("subject", "body")
	if !strings.Contains(buf.String(), "ALERT: subject") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}
