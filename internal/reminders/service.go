package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
)

// reminderDays is how long a reminder keeps firing after checkout.
const reminderDays = 30

const defaultBatchSize = 200

type prescriptionMedicineLoader interface {
	FindMedicinesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.PrescriptionMedicine, error)
}

type reminderNotifier interface {
	MedicineReminder(ctx context.Context, r models.MedicineReminder) bool
}

// Service schedules reminders at checkout and sends the due ones.
type Service struct {
	repo      Repository
	medicines prescriptionMedicineLoader
	notifier  reminderNotifier
	logg      *logger.Logger
	batchSize int
	now       func() time.Time
}

func NewService(repo Repository, medicines prescriptionMedicineLoader, notifier reminderNotifier, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reminder repository required")
	}
	if medicines == nil {
		return nil, fmt.Errorf("prescription medicine loader required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		repo:      repo,
		medicines: medicines,
		notifier:  notifier,
		logg:      logg,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}, nil
}

// CreateForOrder adds one reminder per order line that came from a prescription.
func (s *Service) CreateForOrder(ctx context.Context, order models.Order) error {
	var ids []uuid.UUID
	for _, item := range order.Items {
		if item.PrescriptionMedicineID != nil {
			ids = append(ids, *item.PrescriptionMedicineID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	prescribed, err := s.medicines.FindMedicinesByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load prescription medicines: %w", err)
	}
	byID := make(map[uuid.UUID]models.PrescriptionMedicine, len(prescribed))
	for _, pm := range prescribed {
		byID[pm.ID] = pm
	}

	start := s.now().UTC()
	end := start.AddDate(0, 0, reminderDays)
	rows := make([]models.MedicineReminder, 0, len(ids))
	for _, item := range order.Items {
		if item.PrescriptionMedicineID == nil {
			continue
		}
		pm, ok := byID[*item.PrescriptionMedicineID]
		if !ok {
			continue
		}
		rows = append(rows, models.MedicineReminder{
			UserID:       order.CustomerID,
			OrderID:      order.ID,
			OrderItemID:  item.ID,
			MedicineID:   item.MedicineID,
			MedicineName: item.MedicineName,
			Dosage:       pm.Dosage,
			Frequency:    FrequencyFromText(pm.Frequency),
			StartDate:    start,
			EndDate:      end,
			IsActive:     true,
		})
	}
	if err := s.repo.CreateMany(ctx, rows); err != nil {
		return fmt.Errorf("create reminders: %w", err)
	}
	return nil
}

// SendResult summarises one SendDue pass.
type SendResult struct {
	Sent        int
	Failed      int
	Deactivated int64
}

// SendDue delivers every reminder whose interval has elapsed and stamps
// last_sent_at on success. Failures are retried on the next pass.
func (s *Service) SendDue(ctx context.Context) (SendResult, error) {
	now := s.now().UTC()
	var result SendResult

	deactivated, err := s.repo.DeactivateExpired(ctx, now)
	if err != nil {
		return result, fmt.Errorf("deactivate expired reminders: %w", err)
	}
	result.Deactivated = deactivated

	candidates, err := s.repo.ListCandidates(ctx, now, s.batchSize)
	if err != nil {
		return result, fmt.Errorf("list due reminders: %w", err)
	}
	var errs error
	for _, r := range candidates {
		if r.LastSentAt != nil && now.Sub(*r.LastSentAt) < Interval(r.Frequency) {
			continue
		}
		if !s.notifier.MedicineReminder(ctx, r) {
			result.Failed++
			continue
		}
		if err := s.repo.MarkSent(ctx, r.ID, now); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mark reminder %s sent: %w", r.ID, err))
			continue
		}
		result.Sent++
	}
	return result, errs
}

// ListForUser returns every reminder scheduled for the customer.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]ReminderDTO, error) {
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reminders")
	}
	out := make([]ReminderDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out, nil
}
