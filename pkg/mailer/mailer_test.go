package mailer

import (
	"context"
	"errors"
	"net"
	"net/textproto"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/angelmondragon/rxcart-backend/pkg/config"
)

type fakeTransport struct {
	err  error
	sent []*mail.Msg
}

func (f *fakeTransport) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil))
	assert.ErrorIs(t, Classify(&textproto.Error{Code: 535, Msg: "bad credentials"}), ErrAuth)
	assert.ErrorIs(t, Classify(&textproto.Error{Code: 534, Msg: "auth mechanism too weak"}), ErrAuth)
	assert.ErrorIs(t, Classify(&textproto.Error{Code: 421, Msg: "try later"}), ErrTransient)
	assert.ErrorIs(t, Classify(timeoutErr{}), ErrTransient)
	assert.ErrorIs(t, Classify(gobreaker.ErrOpenState), ErrTransient)
	assert.ErrorIs(t, Classify(context.DeadlineExceeded), ErrTransient)

	other := errors.New("mailbox unavailable")
	classified := Classify(other)
	assert.Equal(t, other, classified)
	assert.NotErrorIs(t, classified, ErrAuth)
	assert.NotErrorIs(t, classified, ErrTransient)
}

func TestSendBuildsMultipartMessage(t *testing.T) {
	transport := &fakeTransport{}
	m := newMailer("pharmacy@rxcart.local", transport, breakerSettings(config.NotificationsConfig{}, nil))

	err := m.Send(context.Background(), Message{
		To:      "customer@example.com",
		Subject: "Order placed",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, []string{"Order placed"}, transport.sent[0].GetGenHeader(mail.HeaderSubject))
}

func TestSendRejectsBadRecipient(t *testing.T) {
	transport := &fakeTransport{}
	m := newMailer("pharmacy@rxcart.local", transport, breakerSettings(config.NotificationsConfig{}, nil))
	assert.Error(t, m.Send(context.Background(), Message{To: "not an address", Subject: "x", Text: "y"}))
	assert.Empty(t, transport.sent)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	transport := &fakeTransport{err: timeoutErr{}}
	m := newMailer("pharmacy@rxcart.local", transport, breakerSettings(config.NotificationsConfig{
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}, nil))
	msg := Message{To: "customer@example.com", Subject: "s", Text: "t"}

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, m.Send(context.Background(), msg), ErrTransient)
	}
	transport.err = nil
	err := m.Send(context.Background(), msg)
	assert.ErrorIs(t, err, ErrTransient)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Empty(t, transport.sent)
}

func TestTLSPolicy(t *testing.T) {
	assert.Equal(t, mail.TLSMandatory, tlsPolicy("Mandatory"))
	assert.Equal(t, mail.NoTLS, tlsPolicy("none"))
	assert.Equal(t, mail.TLSOpportunistic, tlsPolicy(""))
}

func TestLogSenderNeverFails(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), Message{To: "a@b.c"}))
}
