package notify

import (
	"context"
	"github.com/mailersend/mailersend-go"
	"github.com/pkg/errors"
	"strings"
)

// MailerSendSender delivers through the MailerSend HTTP API.
type MailerSendSender struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSendSender(apiKey, fromName, fromEmail string) *MailerSendSender {
	return &MailerSendSender{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
}

func (m *MailerSendSender) Send(ctx context.Context, msg *Message) error {
	email := m.client.Email.NewMessage()
	email.SetFrom(m.from)
	email.SetRecipients([]mailersend.Recipient{{Name: msg.To.Name, Email: msg.To.Email}})
	email.SetSubject(msg.Subject)
	if strings.TrimSpace(msg.Text) != "" {
		email.SetText(msg.Text)
	}
	if strings.TrimSpace(msg.HTML) != "" {
		email.SetHTML(msg.HTML)
	}

	if _, err := m.client.Email.Send(ctx, email); err != nil {
		return errors.Wrap(err, "mailersend")
	}
	return nil
}
