package utils

import (
	"log/slog"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP. A Mailer with no host
// configured (or a nil Mailer) is disabled and sends nothing.
type Mailer struct {
	host     string
	port     int
	username string
	password string
}

func NewMailer(host string, port int, username, password string) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.host != ""
}

// Send delivers a single HTML email.
func (m *Mailer) Send(to string, subject string, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.username)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := dialer.DialAndSend(msg); err != nil {
		return err
	}

	slog.Info("email sent", "to", to, "subject", subject)
	return nil
}
