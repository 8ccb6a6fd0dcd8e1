package notify

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"uat-portal-api/internal/service"
)

// EmailConfig holds the SMTP delivery settings.
type EmailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	UseTLS    bool
	FromEmail string
	FromName  string
	To        string // distribution address for portal notifications
}

// EmailSink delivers events as plain-text emails to a distribution address.
type EmailSink struct {
	cfg EmailConfig
}

// NewEmailSink builds an EmailSink; returns nil when no SMTP host or
// recipient is configured so the dispatcher can skip it.
func NewEmailSink(cfg EmailConfig) *EmailSink {
	if cfg.Host == "" || cfg.To == "" {
		return nil
	}
	return &EmailSink{cfg: cfg}
}

// Deliver implements Sink.
func (s *EmailSink) Deliver(evt service.Event) error {
	subject := fmt.Sprintf("[UAT] %s: task %s", evt.Type, evt.TaskID)
	body := evt.Message

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromEmail))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", s.cfg.To))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	if !s.cfg.UseTLS {
		return smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{s.cfg.To}, []byte(msg.String()))
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err = client.Mail(s.cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(s.cfg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err = w.Write([]byte(msg.String())); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to finish message body: %w", err)
	}
	return client.Quit()
}
