// Package mail is the outbound-mail boundary. Delivery guarantees are out
// of scope; the SMTP implementation hands the message to a relay and the
// log implementation stands in when none is configured.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/bookmarkd/bookmarkd/pkg/config"
	"github.com/bookmarkd/bookmarkd/pkg/logging"
)

// Message is one outbound email
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Mailer sends messages
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// New returns an SMTP mailer when a host is configured, otherwise a mailer
// that only logs.
func New(cfg *config.MailConfig) Mailer {
	if !cfg.Enabled {
		logging.GetLogger().Info("SMTP not configured, using log mailer")
		return &logMailer{logger: logging.WithComponent("mail")}
	}
	return &smtpMailer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from: cfg.From,
	}
}

type smtpMailer struct {
	addr string
	from string
}

func (m *smtpMailer) Send(_ context.Context, msg *Message) error {
	data := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, strings.Join(msg.To, ", "), msg.Subject, msg.Body)
	if err := smtp.SendMail(m.addr, nil, m.from, msg.To, []byte(data)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) Send(_ context.Context, msg *Message) error {
	m.logger.Info("mail (not sent)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
