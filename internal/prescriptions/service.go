package prescriptions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/auth"
	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rxcart-backend/pkg/errors"
	"github.com/angelmondragon/rxcart-backend/pkg/logger"
	"github.com/angelmondragon/rxcart-backend/pkg/ocr"
	"github.com/angelmondragon/rxcart-backend/pkg/pagination"
	"github.com/angelmondragon/rxcart-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type objectStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

type codeNotifier interface {
	PrescriptionVerificationCode(ctx context.Context, p models.Prescription, code string) bool
}

// ImageUpload is the multipart file handed over by the controller.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service covers prescription intake, OCR processing and pharmacist verification.
type Service interface {
	Upload(ctx context.Context, customerID uuid.UUID, file ImageUpload) (*PrescriptionDTO, error)
	IssueVerificationCode(ctx context.Context, actor auth.Actor, id uuid.UUID) (*PrescriptionDTO, error)
	Verify(ctx context.Context, actor auth.Actor, id uuid.UUID, code string) (*PrescriptionDTO, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*PrescriptionDTO, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, limit int, cursor string) (pagination.Page[PrescriptionDTO], error)
}

type service struct {
	tx       txRunner
	repo     Repository
	matcher  *Matcher
	store    objectStore
	ocr      ocr.Extractor
	notifier codeNotifier
	logg     *logger.Logger
	maxBytes int64
	now      func() time.Time
	dispatch func(func())
}

// NewService wires the prescription pipeline.
func NewService(
	tx txRunner,
	repo Repository,
	finder medicineFinder,
	store objectStore,
	extractor ocr.Extractor,
	notifier codeNotifier,
	logg *logger.Logger,
	maxBytes int64,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("prescription repository required")
	}
	if finder == nil {
		return nil, fmt.Errorf("medicine finder required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("ocr extractor required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("upload size limit must be positive")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		matcher:  NewMatcher(finder),
		store:    store,
		ocr:      extractor,
		notifier: notifier,
		logg:     logg,
		maxBytes: maxBytes,
		now:      time.Now,
		dispatch: func(fn func()) { go fn() },
	}, nil
}

func (s *service) Upload(ctx context.Context, customerID uuid.UUID, file ImageUpload) (*PrescriptionDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if file.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image required")
	}
	if file.Size > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image must be at most %d bytes", s.maxBytes))
	}
	contentType, err := normalizeContentType(file.ContentType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	data, err := io.ReadAll(io.LimitReader(file.Body, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image must be at most %d bytes", s.maxBytes))
	}
	if err := checkMagicBytes(contentType, data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	id := uuid.New()
	key := fmt.Sprintf("prescriptions/%s/%s%s", customerID, id, allowedImageTypes[contentType])
	path, err := s.store.Put(ctx, key, bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store prescription image")
	}

	p := &models.Prescription{
		ID:               id,
		CustomerID:       customerID,
		ImagePath:        path,
		ImageContentType: contentType,
		Status:           enums.PrescriptionStatusUploaded,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logg.Error(ctx, "prescription.image_cleanup_failed", delErr)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create prescription")
	}

	if err := s.process(ctx, p); err != nil {
		return nil, err
	}
	return s.reload(ctx, p.ID)
}

// process runs OCR and matching for a freshly uploaded prescription. Problems
// with the image itself end in the failed state rather than an error.
func (s *service) process(ctx context.Context, p *models.Prescription) error {
	ctx = s.logg.WithField(ctx, "prescription_id", p.ID.String())

	if err := s.transition(ctx, p, enums.PrescriptionStatusProcessing); err != nil {
		return err
	}

	text := strings.TrimSpace(s.ocr.ExtractText(ctx, p.ImagePath))
	if text == "" {
		return s.fail(ctx, p, "no text could be read from the image")
	}

	rows, err := s.matcher.Match(ctx, p.ID, ExtractCandidates(text))
	if err != nil {
		s.logg.Error(ctx, "prescription.match_failed", err)
		return s.fail(ctx, p, "medicine matching failed")
	}

	now := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateMedicines(ctx, rows); err != nil {
			return err
		}
		p.Status = enums.PrescriptionStatusProcessed
		p.ExtractedText = text
		p.ProcessedAt = &now
		return repo.Save(ctx, p)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save prescription medicines")
	}
	s.logg.Info(s.logg.WithField(ctx, "medicine_count", len(rows)), "prescription.processed")
	return nil
}

func (s *service) fail(ctx context.Context, p *models.Prescription, reason string) error {
	p.FailureReason = &reason
	if err := s.transition(ctx, p, enums.PrescriptionStatusFailed); err != nil {
		return err
	}
	s.logg.Warn(s.logg.WithField(ctx, "reason", reason), "prescription.failed")
	return nil
}

func (s *service) transition(ctx context.Context, p *models.Prescription, next enums.PrescriptionStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("prescription cannot move from %s to %s", p.Status, next))
	}
	p.Status = next
	if err := s.repo.Save(ctx, p); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update prescription status")
	}
	return nil
}

// IssueVerificationCode stores a fresh six digit code and sends it to the
// customer in the background.
func (s *service) IssueVerificationCode(ctx context.Context, actor auth.Actor, id uuid.UUID) (*PrescriptionDTO, error) {
	if !actor.IsPharmacyMember() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "pharmacy access required")
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanTransitionTo(enums.PrescriptionStatusVerified) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "prescription is not awaiting verification")
	}
	code, err := security.GenerateVerificationCode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
	}
	p.VerificationCode = &code
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save verification code")
	}

	snapshot := *p
	bg := context.WithoutCancel(ctx)
	s.dispatch(func() {
		if !s.notifier.PrescriptionVerificationCode(bg, snapshot, code) {
			s.logg.Warn(bg, "prescription.verification_code_not_delivered")
		}
	})

	dto := FromModel(*p)
	return &dto, nil
}

// Verify accepts the code the customer presents at the counter.
func (s *service) Verify(ctx context.Context, actor auth.Actor, id uuid.UUID, code string) (*PrescriptionDTO, error) {
	if !actor.IsPharmacyMember() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "pharmacy access required")
	}
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanTransitionTo(enums.PrescriptionStatusVerified) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "prescription is not awaiting verification")
	}
	if p.VerificationCode == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no verification code has been issued")
	}
	if !security.CodesEqual(*p.VerificationCode, code) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "verification code does not match")
	}

	now := s.now().UTC()
	verifier := actor.UserID
	p.Status = enums.PrescriptionStatusVerified
	p.IsVerified = true
	p.VerifiedBy = &verifier
	p.VerifiedAt = &now
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify prescription")
	}
	dto := FromModel(*p)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*PrescriptionDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CustomerID != actor.UserID && !actor.IsPharmacyMember() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "prescription not found")
	}
	dto := FromModel(*p)
	return &dto, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, limit int, cursor string) (pagination.Page[PrescriptionDTO], error) {
	rows, err := s.repo.ListByCustomer(ctx, customerID, limit, cursor)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return pagination.Page[PrescriptionDTO]{}, err
		}
		return pagination.Page[PrescriptionDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list prescriptions")
	}
	page := pagination.BuildPage(rows, limit, func(p models.Prescription) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	items := make([]PrescriptionDTO, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, FromModel(p))
	}
	return pagination.Page[PrescriptionDTO]{Items: items, NextCursor: page.NextCursor}, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*PrescriptionDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(*p)
	return &dto, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Prescription, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "prescription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load prescription")
	}
	return p, nil
}
