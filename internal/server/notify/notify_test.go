package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/eastsecure/internal/common"
	"github.com/dmitrijs2005/eastsecure/internal/logging"
	"github.com/dmitrijs2005/eastsecure/internal/server/models"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	got  []*mail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeSender) Send(m *mail.SGMailV3) (*rest.Response, error) {
	f.got = append(f.got, m)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestNotifier(s *fakeSender, sandbox bool) *SendGridNotifier {
	n := NewSendGridNotifier("key", "EastSecure", "no-reply@eastsecure.test", "sales@eastsecure.test", sandbox)
	n.client = s
	return n
}

func TestVerificationMessage(t *testing.T) {
	msg, err := VerificationMessage("123456", 10*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, msg.Plain, "123456")
	assert.Contains(t, msg.Plain, "10 minutes")
	assert.Contains(t, msg.HTML, "<strong>123456</strong>")

	short, err := VerificationMessage("1", 10*time.Second)
	require.NoError(t, err)
	assert.Contains(t, short.Plain, "1 minutes")
}

func TestContactMessage_EscapesHTML(t *testing.T) {
	inq := &models.Inquiry{Name: "Eve", Email: "eve@x.test", Service: "Pentest", Message: "<script>alert(1)</script>"}

	msg, err := ContactMessage(inq)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
	assert.Equal(t, "New inquiry: Pentest from Eve", msg.Subject)
	assert.Contains(t, msg.Plain, "<script>alert(1)</script>")
}

func TestSendGridNotifier_SendVerificationCode(t *testing.T) {
	s := &fakeSender{resp: &rest.Response{StatusCode: 202}}
	n := newTestNotifier(s, true)

	require.NoError(t, n.SendVerificationCode(context.Background(), "alice@acme.test", "654321", 10*time.Minute))
	require.Len(t, s.got, 1)

	m := s.got[0]
	assert.Equal(t, "no-reply@eastsecure.test", m.From.Address)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "alice@acme.test", m.Personalizations[0].To[0].Address)
	require.NotNil(t, m.MailSettings)
	require.NotNil(t, m.MailSettings.SandboxMode)
	assert.True(t, *m.MailSettings.SandboxMode.Enable)
}

func TestSendGridNotifier_NoSandbox(t *testing.T) {
	s := &fakeSender{resp: &rest.Response{StatusCode: 202}}
	n := newTestNotifier(s, false)

	require.NoError(t, n.SendVerificationCode(context.Background(), "a@b.test", "1", time.Minute))
	assert.Nil(t, s.got[0].MailSettings)
}

func TestSendGridNotifier_ContactSetsReplyTo(t *testing.T) {
	s := &fakeSender{resp: &rest.Response{StatusCode: 202}}
	n := newTestNotifier(s, false)

	inq := &models.Inquiry{Name: "Bob", Email: "bob@corp.test", Service: "Audit", Message: "hi"}
	require.NoError(t, n.SendContactNotification(context.Background(), inq))

	m := s.got[0]
	assert.Equal(t, "sales@eastsecure.test", m.Personalizations[0].To[0].Address)
	require.NotNil(t, m.ReplyTo)
	assert.Equal(t, "bob@corp.test", m.ReplyTo.Address)
}

func TestSendGridNotifier_Failures(t *testing.T) {
	tests := []struct {
		name string
		s    *fakeSender
	}{
		{name: "transport error", s: &fakeSender{err: errors.New("dial tcp: refused")}},
		{name: "rejected", s: &fakeSender{resp: &rest.Response{StatusCode: 401, Body: "unauthorized"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newTestNotifier(tt.s, false)
			err := n.SendVerificationCode(context.Background(), "a@b.test", "1", time.Minute)
			assert.ErrorIs(t, err, common.ErrUpstreamFailure)
		})
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	n := NewLogNotifier(l)

	require.NoError(t, n.SendVerificationCode(context.Background(), "a@b.test", "246810", time.Minute))
	require.NoError(t, n.SendContactNotification(context.Background(), &models.Inquiry{ID: "i-1", Email: "c@d.test"}))

	out := buf.String()
	assert.True(t, strings.Contains(out, `"code":"246810"`), out)
	assert.Contains(t, out, `"inquiry_id":"i-1"`)
}
