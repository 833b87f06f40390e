package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/avast/retry-go/v4"
)

// Config holds SMTP settings. An empty Host leaves the mailer in log-only
// mode, which keeps local development working without a relay.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends account notifications. Every send is fire-and-forget: delivery
// runs in the background with a few retries and failures are logged, never
// surfaced to the operation that triggered the mail.
type Mailer struct {
	cfg        Config
	send       func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	retryDelay time.Duration
}

// New creates a mailer with the given configuration.
func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail, retryDelay: 2 * time.Second}
}

// SendVerification dispatches the signup verification code.
func (m *Mailer) SendVerification(email, username, code string) {
	subject := "Verify your account"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour verification code is: %s\r\n", username, code)
	go m.deliver(email, subject, body)
}

func (m *Mailer) deliver(to, subject, body string) {
	if m.cfg.Host == "" {
		log.Printf("[mailer] smtp not configured, skipping mail to %s (%s)", to, subject)
		return
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.cfg.From, to, subject, body))

	err := retry.Do(
		func() error {
			return m.send(addr, auth, m.cfg.From, []string{to}, msg)
		},
		retry.Attempts(3),
		retry.Delay(m.retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Printf("[mailer] failed to send %q to %s: %v", subject, to, err)
		return
	}
	log.Printf("[mailer] sent %q to %s", subject, to)
}
