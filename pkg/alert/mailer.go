package alert

import (
	"context"

	"github.com/pkg/errors"
	"gopkg.in/gomail.v2"

	"crowd-dashboard/pkg/config"
)

type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// SMTPMailer sends plain text mail through a single SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	to     []string
}

func NewSMTPMailer(cfg config.AlertConfig) *SMTPMailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	d.SSL = cfg.UseSSL // true = 465 SSL, false = 587 STARTTLS
	return &SMTPMailer{
		dialer: d,
		from:   cfg.From,
		to:     cfg.To,
	}
}

// Send returns as soon as ctx is done. gomail only bounds the dial, so a
// relay that stops answering keeps the dialing goroutine until the relay
// drops the connection.
func (m *SMTPMailer) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(m.to) == 0 {
		return errors.New("no recipients provided for email")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()
	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "failed to send email")
		}
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "failed to send email")
	}
}
