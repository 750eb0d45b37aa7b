package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/okian/convention/internal/adapters/repository"
	"github.com/okian/convention/internal/adapters/storage"
	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/internal/domain/validation"
	"github.com/okian/convention/pkg/logger"
	"github.com/okian/convention/pkg/metrics"
)

// Register validates form, uploads the receipt and stores a pending
// registration. The remote calls run in order and stop at the first failure.
func (s *Service) Register(ctx context.Context, form model.RegistrationForm, receipt *model.Upload) (model.Registration, error) {
	form = validation.TrimForm(form)
	if err := validation.Registration(form, receipt, s.maxReceipt); err != nil {
		metrics.RecordRegistration(metrics.OutcomeInvalid)
		return model.Registration{}, err
	}

	key := validation.DuplicateKey(form.FullName, form.Institution)
	if s.claims.SeenAndRecord(ctx, "registration:"+key) {
		metrics.RecordRegistration(metrics.OutcomeDuplicate)
		return model.Registration{}, ErrDuplicateRegistration
	}
	defer s.claims.Unrecord(ctx, "registration:"+key)

	_, err := s.store.RegistrationByDuplicateKey(ctx, key)
	switch {
	case err == nil:
		metrics.RecordRegistration(metrics.OutcomeDuplicate)
		return model.Registration{}, ErrDuplicateRegistration
	case !errors.Is(err, repository.ErrNotFound):
		// The insert still hits the unique constraint.
		s.logger.Warn(ctx, "duplicate lookup failed", logger.Error(err))
	}

	id := uuid.NewString()
	obj, err := s.blobs.Put(ctx, storage.BucketReceipts, id+"."+validation.Extension(receipt.Filename), body(receipt),
		storage.PutOptions{ContentType: receipt.ContentType})
	if err != nil {
		metrics.RecordRegistration(metrics.OutcomeFailed)
		return model.Registration{}, stepErr(stepReceiptUpload, ErrUpload, err)
	}

	reg := model.Registration{
		ID:             id,
		CreatedAt:      s.now().UTC(),
		FullName:       form.FullName,
		Gender:         model.Gender(form.Gender),
		Email:          form.Email,
		Phone:          form.Phone,
		Department:     form.Department,
		Institution:    form.Institution,
		Zone:           model.Zone(form.Zone),
		SkillChoice:    model.Skill(form.Skill),
		TShirtSize:     model.TShirtSize(form.TShirtSize),
		HealthConcerns: form.HealthConcerns,
		TotalAmount:    s.fee,
		PaymentStatus:  model.PaymentPending,
		ReceiptURL:     s.fileURL(obj),
		TransactionID:  model.ManualUploadTransaction,
		DuplicateKey:   key,
	}
	if err := s.store.InsertRegistration(ctx, reg); err != nil {
		s.discard(ctx, obj)
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.RecordRegistration(metrics.OutcomeDuplicate)
			return model.Registration{}, ErrDuplicateRegistration
		}
		metrics.RecordRegistration(metrics.OutcomeFailed)
		return model.Registration{}, stepErr(stepRegistrationSave, ErrSave, err)
	}

	metrics.RecordRegistration(metrics.OutcomeAccepted)
	s.logger.Info(ctx, "registration submitted",
		logger.String("id", reg.ID),
		logger.String("zone", string(reg.Zone)),
	)
	s.notify(ctx, model.NotifyRegistrationSubmitted, reg.ID, reg.Email, map[string]string{
		"name":        reg.FullName,
		"institution": reg.Institution,
		"receipt":     reg.ReceiptURL,
	})
	return reg, nil
}

// discard removes a receipt whose registration was not stored.
func (s *Service) discard(ctx context.Context, obj storage.Object) {
	if err := s.blobs.Delete(ctx, obj.Bucket, obj.Key); err != nil {
		s.logger.Warn(ctx, "orphan upload not removed",
			logger.String("object", obj.Path()),
			logger.Error(err),
		)
	}
}

// ConfirmPayment marks a registration verified and issues its delegate UID.
// A registration that already has a UID is returned unchanged.
func (s *Service) ConfirmPayment(ctx context.Context, id string) (model.Registration, error) {
	reg, err := s.registration(ctx, id)
	if err != nil {
		return model.Registration{}, err
	}
	if reg.PaymentStatus == model.PaymentVerified && reg.HasUID() {
		return reg, nil
	}

	for attempt := 0; attempt < maxUIDAttempts; attempt++ {
		uid, err := s.nextUID()
		if err != nil {
			return model.Registration{}, err
		}
		if _, err := s.store.RegistrationByUID(ctx, uid); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return model.Registration{}, stepErr("", ErrLookup, err)
		}

		updated, issued, err := s.store.IssueUID(ctx, id, uid)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if errors.Is(err, repository.ErrNotFound) {
			return model.Registration{}, ErrRegistrationNotFound
		}
		if err != nil {
			return model.Registration{}, stepErr(stepPaymentSave, ErrSave, err)
		}
		if !issued {
			// A concurrent confirm won; its UID stands.
			return updated, nil
		}

		metrics.RecordPaymentDecision("confirmed")
		s.logger.Info(ctx, "payment confirmed", logger.String("id", id), logger.Int("attempts", attempt+1))
		s.notify(ctx, model.NotifyRegistrationVerified, updated.ID, updated.Email, map[string]string{
			"name": updated.FullName,
			"uid":  uid,
		})
		return updated, nil
	}
	return model.Registration{}, ErrUIDExhausted
}

// RejectPayment marks a registration rejected and withdraws any UID.
func (s *Service) RejectPayment(ctx context.Context, id string) (model.Registration, error) {
	if _, err := s.registration(ctx, id); err != nil {
		return model.Registration{}, err
	}
	updated, err := s.store.SetPayment(ctx, id, model.PaymentRejected, model.ManualUploadTransaction)
	if err != nil {
		return model.Registration{}, stepErr(stepPaymentSave, ErrSave, err)
	}
	metrics.RecordPaymentDecision("rejected")
	s.notify(ctx, model.NotifyRegistrationRejected, updated.ID, updated.Email, map[string]string{
		"name": updated.FullName,
	})
	return updated, nil
}

// ListRegistrations returns registrations newest first. An empty status
// lists all of them.
func (s *Service) ListRegistrations(ctx context.Context, status string) ([]model.Registration, error) {
	ps := model.PaymentStatus(status)
	switch ps {
	case "", model.PaymentPending, model.PaymentVerified, model.PaymentRejected:
	default:
		return nil, ErrInvalidStatus
	}
	regs, err := s.store.ListRegistrations(ctx, ps)
	if err != nil {
		return nil, stepErr("", ErrLookup, err)
	}
	return regs, nil
}

func (s *Service) registration(ctx context.Context, id string) (model.Registration, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Registration{}, ErrRegistrationNotFound
	}
	reg, err := s.store.RegistrationByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Registration{}, ErrRegistrationNotFound
	}
	if err != nil {
		return model.Registration{}, stepErr("", ErrLookup, err)
	}
	return reg, nil
}
