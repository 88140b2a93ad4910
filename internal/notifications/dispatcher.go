package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/rxcart-backend/internal/users"
	"github.com/angelmondragon/rxcart-backend/pkg/config"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
	"github.com/angelmondragon/rxcart-backend/pkg/mailer"
	"github.com/angelmondragon/rxcart-backend/pkg/metrics"
)

const (
	audienceCustomer = "customer"
	audiencePharmacy = "pharmacy"
)

type directory interface {
	Customer(ctx context.Context, userID uuid.UUID) (users.Contact, error)
	PharmacyTeam(ctx context.Context, pharmacyID uuid.UUID) (string, []users.Contact, error)
}

// Dispatcher renders and sends notification emails. Every public method
// reports whether at least one recipient got the message and never fails the
// caller.
type Dispatcher struct {
	sender      mailer.Sender
	repo        Repository
	dir         directory
	metrics     *metrics.NotificationMetrics
	logg        *logger.Logger
	maxAttempts int
	baseBackoff time.Duration
	concurrency int
	sleep       func(ctx context.Context, d time.Duration) error
	now         func() time.Time
}

// NewDispatcher wires the dispatcher. A nil metrics value disables metrics.
func NewDispatcher(
	sender mailer.Sender,
	repo Repository,
	dir directory,
	m *metrics.NotificationMetrics,
	logg *logger.Logger,
	cfg config.NotificationsConfig,
) (*Dispatcher, error) {
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if dir == nil {
		return nil, fmt.Errorf("recipient directory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.FanOutConcurrency <= 0 {
		cfg.FanOutConcurrency = 1
	}
	return &Dispatcher{
		sender:      sender,
		repo:        repo,
		dir:         dir,
		metrics:     m,
		logg:        logg,
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
		concurrency: cfg.FanOutConcurrency,
		sleep:       sleepContext,
		now:         time.Now,
	}, nil
}

// OrderPlaced confirms a new order to the customer.
func (d *Dispatcher) OrderPlaced(ctx context.Context, s Subject) bool {
	return d.toCustomer(ctx, enums.NotificationEventOrderPlaced, s)
}

// OrderReceived tells every pharmacy recipient about a new order.
func (d *Dispatcher) OrderReceived(ctx context.Context, s Subject) bool {
	return d.toPharmacy(ctx, enums.NotificationEventOrderReceived, s)
}

// VerificationCodeIssued sends the order pickup code to both sides.
// It succeeds when either side got it.
func (d *Dispatcher) VerificationCodeIssued(ctx context.Context, s Subject) bool {
	pharmacy := d.toPharmacy(ctx, enums.NotificationEventOrderVerificationCode, s)
	customer := d.toCustomer(ctx, enums.NotificationEventOrderVerificationCode, s)
	return pharmacy || customer
}

// AdvanceOrderPlaced confirms an advance order to the customer and the pharmacy.
func (d *Dispatcher) AdvanceOrderPlaced(ctx context.Context, s Subject) bool {
	customer := d.toCustomer(ctx, enums.NotificationEventAdvanceOrderPlaced, s)
	pharmacy := d.toPharmacy(ctx, enums.NotificationEventAdvanceOrderPlaced, s)
	return customer || pharmacy
}

// StatusUpdatedForCustomer reports a status change of a regular or advance order.
func (d *Dispatcher) StatusUpdatedForCustomer(ctx context.Context, s Subject) bool {
	return d.toCustomer(ctx, s.statusEvent(), s)
}

// StatusUpdatedForPharmacy copies a status change to the pharmacy team.
func (d *Dispatcher) StatusUpdatedForPharmacy(ctx context.Context, s Subject) bool {
	return d.toPharmacy(ctx, s.statusEvent(), s)
}

// PrescriptionVerificationCode sends a prescription code to its owner.
func (d *Dispatcher) PrescriptionVerificationCode(ctx context.Context, p models.Prescription, code string) bool {
	event := enums.NotificationEventPrescriptionVerificationCode
	contact, err := d.dir.Customer(ctx, p.CustomerID)
	if err != nil {
		d.logg.Error(ctx, "notification.recipient_lookup_failed", err)
		return false
	}
	id := p.ID
	return d.deliver(ctx, envelope{
		event: event,
		data:  view{Audience: audienceCustomer, Code: code},
		link:  func(n *models.Notification) { n.PrescriptionID = &id },
	}, []users.Contact{contact})
}

// MedicineReminder nudges a customer to take a medicine.
func (d *Dispatcher) MedicineReminder(ctx context.Context, r models.MedicineReminder) bool {
	contact, err := d.dir.Customer(ctx, r.UserID)
	if err != nil {
		d.logg.Error(ctx, "notification.recipient_lookup_failed", err)
		return false
	}
	orderID := r.OrderID
	return d.deliver(ctx, envelope{
		event: enums.NotificationEventMedicineReminder,
		data: view{
			Audience: audienceCustomer,
			Reminder: &ReminderNote{
				MedicineName: r.MedicineName,
				Dosage:       r.Dosage,
				Frequency:    r.Frequency.Label(),
			},
		},
		link: func(n *models.Notification) { n.OrderID = &orderID },
	}, []users.Contact{contact})
}

type envelope struct {
	event enums.NotificationEvent
	data  view
	link  func(n *models.Notification)
}

func (d *Dispatcher) toCustomer(ctx context.Context, event enums.NotificationEvent, s Subject) bool {
	contact, err := d.dir.Customer(ctx, s.CustomerID)
	if err != nil {
		d.logg.Error(ctx, "notification.recipient_lookup_failed", err)
		return false
	}
	// An order placed with a contact address is answered there.
	if email := strings.TrimSpace(s.ContactEmail); email != "" {
		contact.Email = email
	}
	subject := s
	return d.deliver(ctx, envelope{
		event: event,
		data:  view{Audience: audienceCustomer, Order: &subject},
		link:  subject.link,
	}, []users.Contact{contact})
}

func (d *Dispatcher) toPharmacy(ctx context.Context, event enums.NotificationEvent, s Subject) bool {
	name, contacts, err := d.dir.PharmacyTeam(ctx, s.PharmacyID)
	if err != nil {
		d.logg.Error(ctx, "notification.recipient_lookup_failed", err)
		return false
	}
	subject := s
	return d.deliver(ctx, envelope{
		event: event,
		data:  view{Audience: audiencePharmacy, PharmacyName: name, Order: &subject},
		link:  subject.link,
	}, contacts)
}

// deliver sends one message per distinct recipient in parallel and records an
// audit row for each. It succeeds when any recipient succeeded.
func (d *Dispatcher) deliver(ctx context.Context, env envelope, contacts []users.Contact) bool {
	ctx = d.logg.WithField(ctx, "event", string(env.event))
	recipients := dedupe(contacts)
	if len(recipients) == 0 {
		d.logg.Warn(ctx, "notification.no_recipients")
		return false
	}

	var (
		sent atomic.Int32
		mu   sync.Mutex
		errs error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, rcpt := range recipients {
		g.Go(func() error {
			if err := d.deliverOne(gctx, env, rcpt); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", rcpt.Email, err))
				mu.Unlock()
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	if errs != nil {
		d.logg.Warn(d.logg.WithFields(ctx, map[string]any{
			"failed":    len(multierr.Errors(errs)),
			"delivered": sent.Load(),
			"error":     errs.Error(),
		}), "notification.partial_failure")
	}
	return sent.Load() > 0
}

func (d *Dispatcher) deliverOne(ctx context.Context, env envelope, rcpt users.Contact) error {
	data := env.data
	data.RecipientName = rcpt.Name
	msg, err := render(env.event, data)
	if err != nil {
		return err
	}
	msg.To = rcpt.Email

	attempts, sendErr := d.sendWithRetry(ctx, msg)
	d.metrics.ObserveSend(string(env.event), sendErr == nil, attempts)

	row := &models.Notification{
		UserID:    rcpt.UserID,
		Channel:   enums.NotificationChannelEmail,
		Event:     env.event,
		Recipient: rcpt.Email,
		Subject:   msg.Subject,
		Body:      msg.Text,
		Status:    enums.NotificationStatusSent,
		Attempts:  attempts,
	}
	if env.link != nil {
		env.link(row)
	}
	if sendErr != nil {
		reason := sendErr.Error()
		row.Status = enums.NotificationStatusFailed
		row.ErrorMessage = &reason
	} else {
		at := d.now().UTC()
		row.SentAt = &at
	}
	// The audit row is written even when the caller's context is gone.
	if err := d.repo.Create(context.WithoutCancel(ctx), row); err != nil {
		d.logg.Error(ctx, "notification.audit_write_failed", err)
	}
	return sendErr
}

// sendWithRetry makes up to maxAttempts attempts, waiting base*2^n between
// them. Authentication failures stop immediately.
func (d *Dispatcher) sendWithRetry(ctx context.Context, msg mailer.Message) (int, error) {
	var err error
	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		err = d.sender.Send(ctx, msg)
		if err == nil {
			return attempt + 1, nil
		}
		if errors.Is(err, mailer.ErrAuth) {
			return attempt + 1, err
		}
		if attempt == d.maxAttempts-1 {
			break
		}
		if sleepErr := d.sleep(ctx, d.backoff(attempt)); sleepErr != nil {
			return attempt + 1, multierr.Append(err, sleepErr)
		}
	}
	return d.maxAttempts, err
}

func (d *Dispatcher) backoff(attempt int) time.Duration {
	return d.baseBackoff << attempt
}

func dedupe(contacts []users.Contact) []users.Contact {
	seen := make(map[string]struct{}, len(contacts))
	out := make([]users.Contact, 0, len(contacts))
	for _, c := range contacts {
		email := strings.TrimSpace(c.Email)
		key := strings.ToLower(email)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		c.Email = email
		out = append(out, c)
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
