package notification

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"NetSimDash/internal/config"
	"NetSimDash/internal/model"
)

// EmailNotifier implements the Notifier interface for sending emails.
type EmailNotifier struct {
	cfg  config.SMTPConfig
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(cfg config.SMTPConfig) model.Notifier {
	// PlainAuth will not send credentials until the server identifies itself as a trusted one.
	auth := smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	return &EmailNotifier{cfg: cfg, auth: auth, send: smtp.SendMail}
}

// Send sends an email to the configured recipients.
func (n *EmailNotifier) Send(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	recipients := strings.Split(n.cfg.To, ",")
	for i := range recipients {
		recipients[i] = strings.TrimSpace(recipients[i])
	}

	msg := []byte("To: " + n.cfg.To + "\r\n" +
		"From: " + n.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		body)

	if err := n.send(addr, n.auth, n.cfg.From, recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogNotifier writes notifications to the process log.
type LogNotifier struct {
	logger *log.Logger
}

// NewLogNotifier returns a notifier printing through logger, or the
// standard logger when nil.
func NewLogNotifier(logger *log.Logger) model.Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(subject, body string) error {
	n.logger.Printf("ALERT: %s\n%s", subject, body)
	return nil
}

// FromConfig picks email when SMTP is configured and the log otherwise.
func FromConfig(cfg config.SMTPConfig) model.Notifier {
	if cfg.Host != "" {
		return NewEmailNotifier(cfg)
	}
	return NewLogNotifier(nil)
}
