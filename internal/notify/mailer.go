package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Message is the input to the mail-delivery collaborator.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Receipt is the mail-delivery collaborator's answer.
type Receipt struct {
	Delivered         bool
	ProviderMessageID string
}

// Mailer delivers a single message. Implementations wrap the external mail
// provider; errors are recovered per dispatch attempt and retried with a
// small backoff before the attempt is declared failed.
type Mailer interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// LogMailer is the null-object fallback wired in when no mail provider is
// configured (MAIL_FROM unset). It logs the message instead of delivering it
// and reports success so development flows complete end to end.
type LogMailer struct {
	Log *slog.Logger
}

// Send logs the message and reports it as delivered.
func (m LogMailer) Send(ctx context.Context, msg Message) (Receipt, error) {
	m.Log.InfoContext(ctx, "mail not configured, logging instead",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return Receipt{Delivered: true, ProviderMessageID: "log-mailer"}, nil
}

// SMTPMailer delivers through a plain SMTP relay. Addr is host:port; From is
// the sender address. Only the text body is sent — the relay is assumed to be
// an internal gateway that handles multipart upgrades if it wants them.
type SMTPMailer struct {
	Addr string
	From string
}

// Send submits the message to the relay.
func (m SMTPMailer) Send(_ context.Context, msg Message) (Receipt, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.TextBody)

	if err := smtp.SendMail(m.Addr, nil, m.From, []string{msg.To}, []byte(b.String())); err != nil {
		return Receipt{}, fmt.Errorf("smtp send: %w", err)
	}
	return Receipt{Delivered: true}, nil
}
