package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sender is the part of *sendgrid.Client the notifier uses.
type sender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridNotifier delivers email through the SendGrid v3 API.
type SendGridNotifier struct {
	client  sender
	from    *mail.Email
	inbox   string
	sandbox bool
}

func NewSendGridNotifier(apiKey, fromName, fromAddress, inbox string, sandbox bool) *SendGridNotifier {
	return &SendGridNotifier{
		client:  sendgrid.NewSendClient(apiKey),
		from:    mail.NewEmail(fromName, fromAddress),
		inbox:   inbox,
		sandbox: sandbox,
	}
}

func (n *SendGridNotifier) SendVerificationCode(_ context.Context, email, code string, ttl time.Duration) error {
	msg, err := VerificationMessage(code, ttl)
	if err != nil {
		return err
	}
	return n.send(mail.NewEmail("", email), msg)
}

func (n *SendGridNotifier) SendContactNotification(_ context.Context, inq *models.Inquiry) error {
	msg, err := ContactMessage(inq)
	if err != nil {
		return err
	}

	m := n.build(mail.NewEmail("EastSecure Sales", n.inbox), msg)
	m.SetReplyTo(mail.NewEmail(inq.Name, inq.Email))
	return n.deliver(m)
}

func (n *SendGridNotifier) send(to *mail.Email, msg Message) error {
	return n.deliver(n.build(to, msg))
}

func (n *SendGridNotifier) build(to *mail.Email, msg Message) *mail.SGMailV3 {
	m := mail.NewSingleEmail(n.from, msg.Subject, to, msg.Plain, msg.HTML)
	if n.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		m.MailSettings = ms
	}
	return m
}

func (n *SendGridNotifier) deliver(m *mail.SGMailV3) error {
	resp, err := n.client.Send(m)
	if err != nil {
		return fmt.Errorf("%w: sendgrid: %v", common.ErrUpstreamFailure, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid returned status %d", common.ErrUpstreamFailure, resp.StatusCode)
	}
	return nil
}
