// Package mail dispatches one-time codes to account email addresses.
// Delivery is a collaborator of the credential lifecycle, not part of it;
// implementations are swappable behind the Mailer interface.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/dkurosov/authguard/internal/logging"
	"github.com/dkurosov/authguard/internal/server/models"
)

// Mailer delivers a one-time code for the given purpose to a recipient.
type Mailer interface {
	SendCode(ctx context.Context, to string, purpose models.OTPPurpose, code string) error
}

func subjectFor(purpose models.OTPPurpose) string {
	switch purpose {
	case models.PurposeAccountVerification:
		return "Verify your account"
	case models.PurposePasswordReset:
		return "Reset your password"
	case models.PurposePasswordUpdate:
		return "Confirm your password change"
	default:
		return "Your verification code"
	}
}

// SMTPMailer sends plain-text code messages over SMTP.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	m := &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
	}
	if username != "" {
		m.auth = smtp.PlainAuth("", username, password, host)
	}
	return m
}

func (m *SMTPMailer) SendCode(ctx context.Context, to string, purpose models.OTPPurpose, code string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subjectFor(purpose))
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Your code is %s. It is valid for a few minutes and can be used once.\r\n", code)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer is the development delivery channel: it writes the code to the
// log instead of sending mail. Not for production use.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mail")}
}

func (m *LogMailer) SendCode(ctx context.Context, to string, purpose models.OTPPurpose, code string) error {
	m.logger.Info(ctx, "one-time code issued", "to", to, "purpose", purpose, "code", code)
	return nil
}
