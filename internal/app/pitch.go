package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/okian/convention/internal/adapters/repository"
	"github.com/okian/convention/internal/adapters/storage"
	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/internal/domain/validation"
	"github.com/okian/convention/pkg/logger"
	"github.com/okian/convention/pkg/metrics"
)

// VerifyDelegate resolves a UID to a verified delegate who has not pitched
// yet. Input is masked to its first six digits first.
func (s *Service) VerifyDelegate(ctx context.Context, rawUID string) (model.Delegate, error) {
	d, err := s.verify(ctx, rawUID)
	result := "verified"
	switch {
	case err == nil:
	case errors.Is(err, validation.ErrInvalid):
		result = "invalid"
	case errors.Is(err, ErrUnknownUID):
		result = "unknown"
	case errors.Is(err, ErrPitchExists):
		result = "already_submitted"
	default:
		result = "error"
	}
	metrics.RecordDelegateCheck(result)
	return d, err
}

func (s *Service) verify(ctx context.Context, rawUID string) (model.Delegate, error) {
	uid, err := validation.UID(rawUID)
	if err != nil {
		return model.Delegate{}, err
	}

	reg, err := s.store.RegistrationByUID(ctx, uid)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Delegate{}, ErrUnknownUID
	}
	if err != nil {
		return model.Delegate{}, stepErr("", ErrLookup, err)
	}
	if reg.PaymentStatus != model.PaymentVerified {
		return model.Delegate{}, ErrUnknownUID
	}

	_, err = s.store.PitchByUID(ctx, uid)
	switch {
	case err == nil:
		return model.Delegate{}, ErrPitchExists
	case !errors.Is(err, repository.ErrNotFound):
		return model.Delegate{}, stepErr("", ErrLookup, err)
	}
	return model.DelegateFrom(reg), nil
}

// SubmitPitch stores a delegate's video and document and records the pitch.
// The document is uploaded only after the video succeeded.
func (s *Service) SubmitPitch(ctx context.Context, sub model.PitchSubmission) (model.Pitch, error) {
	if err := validation.Agreement(sub.Agreed); err != nil {
		metrics.RecordPitch(metrics.OutcomeInvalid)
		return model.Pitch{}, err
	}
	if err := validation.PitchFiles(sub.Video, sub.Document, s.maxVideo); err != nil {
		metrics.RecordPitch(metrics.OutcomeInvalid)
		return model.Pitch{}, err
	}

	delegate, err := s.VerifyDelegate(ctx, sub.UID)
	if err != nil {
		return model.Pitch{}, err
	}
	uid := delegate.UID

	if s.claims.SeenAndRecord(ctx, "pitch:"+uid) {
		metrics.RecordPitch(metrics.OutcomeDuplicate)
		return model.Pitch{}, ErrPitchExists
	}
	defer s.claims.Unrecord(ctx, "pitch:"+uid)

	video, err := s.blobs.Put(ctx, storage.BucketPitches, uid+"/video."+validation.VideoExtension(sub.Video), body(sub.Video),
		storage.PutOptions{ContentType: sub.Video.ContentType, Upsert: true})
	if err != nil {
		metrics.RecordPitch(metrics.OutcomeFailed)
		return model.Pitch{}, stepErr(stepVideoUpload, ErrUpload, err)
	}
	doc, err := s.blobs.Put(ctx, storage.BucketPitches, uid+"/document."+validation.DocumentExtension(sub.Document), body(sub.Document),
		storage.PutOptions{ContentType: sub.Document.ContentType, Upsert: true})
	if err != nil {
		metrics.RecordPitch(metrics.OutcomeFailed)
		return model.Pitch{}, stepErr(stepDocumentUpload, ErrUpload, err)
	}

	p := model.Pitch{
		ID:          uuid.NewString(),
		CreatedAt:   s.now().UTC(),
		UID:         uid,
		VideoURL:    s.fileURL(video),
		DocumentURL: s.fileURL(doc),
	}
	if err := s.store.InsertPitch(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			metrics.RecordPitch(metrics.OutcomeDuplicate)
			return model.Pitch{}, ErrPitchExists
		}
		metrics.RecordPitch(metrics.OutcomeFailed)
		return model.Pitch{}, stepErr(stepPitchSave, ErrSave, err)
	}

	metrics.RecordPitch(metrics.OutcomeAccepted)
	s.logger.Info(ctx, "pitch submitted", logger.String("id", p.ID), logger.String("uid", uid))
	s.notify(ctx, model.NotifyPitchSubmitted, p.ID, delegate.Email, map[string]string{
		"name":     delegate.FullName,
		"uid":      uid,
		"video":    p.VideoURL,
		"document": p.DocumentURL,
	})
	return p, nil
}

// ListPitches returns pitches newest first.
func (s *Service) ListPitches(ctx context.Context) ([]model.Pitch, error) {
	pitches, err := s.store.ListPitches(ctx)
	if err != nil {
		return nil, stepErr("", ErrLookup, err)
	}
	return pitches, nil
}

// OpenFile opens a stored upload for download.
func (s *Service) OpenFile(ctx context.Context, bucket, key string) (io.ReadCloser, storage.Object, error) {
	switch bucket {
	case storage.BucketReceipts, storage.BucketPitches:
	default:
		return nil, storage.Object{}, storage.ErrNotFound
	}
	return s.blobs.Open(ctx, bucket, key)
}
