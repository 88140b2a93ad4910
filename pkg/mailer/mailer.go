// Package mailer sends multipart emails over SMTP behind a circuit breaker.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/wneessen/go-mail"

	"github.com/angelmondragon/rxcart-backend/pkg/config"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
)

var (
	// ErrAuth marks credential failures. Retrying cannot help.
	ErrAuth = errors.New("smtp authentication failed")
	// ErrTransient marks network, timeout and open-circuit failures.
	ErrTransient = errors.New("smtp transient failure")
)

// Message is one email to one recipient.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer is the SMTP Sender.
type Mailer struct {
	from      string
	transport transport
	breaker   *gobreaker.CircuitBreaker[struct{}]
}

// New builds an SMTP mailer from config.
func New(cfg config.SMTPConfig, notifications config.NotificationsConfig, logg *logger.Logger) (*Mailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
		mail.WithTLSPolicy(tlsPolicy(cfg.TLSPolicy)),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return newMailer(cfg.From, client, breakerSettings(notifications, logg)), nil
}

func newMailer(from string, t transport, settings gobreaker.Settings) *Mailer {
	return &Mailer{
		from:      from,
		transport: t,
		breaker:   gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func breakerSettings(cfg config.NotificationsConfig, logg *logger.Logger) gobreaker.Settings {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	return gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logg == nil {
				return
			}
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "mailer circuit breaker state change")
		},
	}
}

// Send delivers msg as a text/plain body with a text/html alternative.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	built, err := m.build(msg)
	if err != nil {
		return err
	}
	_, err = m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.transport.DialAndSendWithContext(ctx, built)
	})
	return Classify(err)
}

func (m *Mailer) build(msg Message) (*mail.Msg, error) {
	built := mail.NewMsg()
	if err := built.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := built.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	built.Subject(msg.Subject)
	built.SetDate()
	built.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		built.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	return built, nil
}

// Classify wraps a transport error with ErrAuth or ErrTransient when it can
// tell which one applies. Other errors are returned unchanged.
func Classify(err error) error {
	if err == nil || errors.Is(err, ErrAuth) || errors.Is(err, ErrTransient) {
		return err
	}
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 530, 534, 535:
			return fmt.Errorf("%w: %w", ErrAuth, err)
		}
		if protoErr.Code >= 400 && protoErr.Code < 500 {
			return fmt.Errorf("%w: %w", ErrTransient, err)
		}
		return err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) && sendErr.IsTemp() {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}

func tlsPolicy(value string) mail.TLSPolicy {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "mandatory":
		return mail.TLSMandatory
	case "none", "notls":
		return mail.NoTLS
	default:
		return mail.TLSOpportunistic
	}
}

// LogSender writes messages to the log instead of sending them. Used when no
// SMTP host is configured.
type LogSender struct {
	Logger *logger.Logger
}

func (l LogSender) Send(ctx context.Context, msg Message) error {
	if l.Logger == nil {
		return nil
	}
	ctx = l.Logger.WithFields(ctx, map[string]any{
		"to":      msg.To,
		"subject": msg.Subject,
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	})
	l.Logger.Info(ctx, "mailer.log_only")
	return nil
}
