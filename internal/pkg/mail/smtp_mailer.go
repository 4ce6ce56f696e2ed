package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/lumeboard/lumeboard/internal/pkg/env"
)

// Transport delivers one message. The notification dispatcher only depends
// on this interface so tests can substitute a fake.
type Transport interface {
	Send(to string, subject string, body string) error
}

// SMTPTransport sends mail through the configured SMTP relay
type SMTPTransport struct{}

// NewSMTPTransport returns the production transport
func NewSMTPTransport() *SMTPTransport {
	return &SMTPTransport{}
}

// IsConfigured reports whether an SMTP host is set. Without one the
// dispatcher skips delivery entirely and writes to the backlog.
func IsConfigured() bool {
	return env.GetEnv("SMTP_HOST", "") != ""
}

// Send delivers the message via SMTP
func (t *SMTPTransport) Send(to string, subject string, body string) error {
	return SendMail(to, subject, body)
}

// SendMail sends an email via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}
