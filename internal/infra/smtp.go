package infra

import (
	"fmt"
	"net/smtp"

	"casitas/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending notification emails.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Send delivers one email, attaching the file at adjuntoPath when set.
func (m *Mailer) Send(to []string, subject, body, adjuntoPath string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)

	if adjuntoPath != "" {
		if _, err := e.AttachFile(adjuntoPath); err != nil {
			return fmt.Errorf("mailer: attach file: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
