// Package notify delivers outbound email: verification codes to people
// signing in and contact-form notifications to the sales inbox.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/logging"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
)

// Notifier sends the messages the portal needs. Implementations return an
// error when the provider did not accept the message.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error
	SendContactNotification(ctx context.Context, inquiry *models.Inquiry) error
}

// Message is a rendered email.
type Message struct {
	Subject string
	Plain   string
	HTML    string
}

var verificationHTML = template.Must(template.New("verification").Parse(
	`<h2>Your EastSecure sign-in code</h2>` +
		`<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>` +
		`<p>The code expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>`))

var contactHTML = template.Must(template.New("contact").Parse(
	`<h2>New contact form submission</h2>` +
		`<p><strong>Name:</strong> {{.Name}}</p>` +
		`<p><strong>Email:</strong> {{.Email}}</p>` +
		`<p><strong>Company:</strong> {{.Company}}</p>` +
		`<p><strong>Phone:</strong> {{.Phone}}</p>` +
		`<p><strong>Service:</strong> {{.Service}}</p>` +
		`<p><strong>Message:</strong></p><p>{{.Message}}</p>`))

// VerificationMessage renders the sign-in code email.
func VerificationMessage(code string, ttl time.Duration) (Message, error) {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	var buf bytes.Buffer
	if err := verificationHTML.Execute(&buf, struct {
		Code    string
		Minutes int
	}{code, minutes}); err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}

	return Message{
		Subject: "Your EastSecure sign-in code",
		Plain:   fmt.Sprintf("Your EastSecure sign-in code is %s. It expires in %d minutes.", code, minutes),
		HTML:    buf.String(),
	}, nil
}

// ContactMessage renders the sales notification for an inquiry. User input
// is HTML-escaped.
func ContactMessage(inq *models.Inquiry) (Message, error) {
	var buf bytes.Buffer
	if err := contactHTML.Execute(&buf, inq); err != nil {
		return Message{}, fmt.Errorf("render contact email: %w", err)
	}

	var plain strings.Builder
	fmt.Fprintf(&plain, "Name: %s\nEmail: %s\n", inq.Name, inq.Email)
	fmt.Fprintf(&plain, "Company: %s\nPhone: %s\n", inq.Company, inq.Phone)
	fmt.Fprintf(&plain, "Service: %s\n\n%s\n", inq.Service, inq.Message)

	return Message{
		Subject: fmt.Sprintf("New inquiry: %s from %s", inq.Service, inq.Name),
		Plain:   plain.String(),
		HTML:    buf.String(),
	}, nil
}

// LogNotifier only logs what it would send. It is used when no SendGrid key
// is configured, so local sign-in codes can be read from the server log.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) SendVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error {
	n.logger.Info(ctx, "verification code issued", "email", email, "code", code, "ttl", ttl.String())
	return nil
}

func (n *LogNotifier) SendContactNotification(ctx context.Context, inq *models.Inquiry) error {
	n.logger.Info(ctx, "contact inquiry received", "inquiry_id", inq.ID, "email", inq.Email, "service", inq.Service)
	return nil
}
