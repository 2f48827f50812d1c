// Package mail delivers account emails over SMTP. Sends are blocking calls
// on the request path; callers treat a failed send as an error, never as a
// silent drop.
package mail

import (
	"context"
	"fmt"

	"expense-tracker-go/internal/config"
	gomail "github.com/wneessen/go-mail"
)

type SMTPMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendActivation(ctx context.Context, to, username, link string) error {
	subject := "Activate your account"
	body := fmt.Sprintf(
		"Hi %s,\n\nPlease use this link to verify your account:\n%s\n",
		username, link,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, username, link string) error {
	subject := "Password reset instructions"
	body := fmt.Sprintf(
		"Hi %s,\n\nPlease click the link below to reset your password:\n%s\n",
		username, link,
	)
	return m.send(ctx, to, subject, body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	// SMTP disabled is a development convenience; delivery is skipped, not
	// failed, so flows that email can be exercised without a mail server.
	if !m.cfg.Enabled {
		return nil
	}

	message := gomail.NewMsg()
	if err := message.From(m.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := message.To(to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	message.Subject(subject)
	message.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(m.cfg.Host,
		gomail.WithPort(m.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(m.cfg.Username),
		gomail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
