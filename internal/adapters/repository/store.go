// Package repository defines the persistence interfaces for registrations,
// pitches and the visitor counter, plus an in-memory implementation.
// SQL backends live in the postgres and sqlite subpackages.
package repository

import (
	"context"

	"github.com/okian/convention/internal/domain/model"
)

// PageViewsCounter names the visitor counter row.
const PageViewsCounter = "page_views"

// Registrations persists delegate registrations.
type Registrations interface {
	// InsertRegistration stores r. Returns ErrDuplicate when the duplicate
	// key or the transaction id is already taken.
	InsertRegistration(ctx context.Context, r model.Registration) error
	// RegistrationByID returns ErrNotFound when id is unknown.
	RegistrationByID(ctx context.Context, id string) (model.Registration, error)
	// RegistrationByDuplicateKey returns ErrNotFound when no row matches.
	RegistrationByDuplicateKey(ctx context.Context, key string) (model.Registration, error)
	// RegistrationByUID looks up a delegate by transaction id.
	RegistrationByUID(ctx context.Context, uid string) (model.Registration, error)
	// ListRegistrations returns rows newest first. An empty status lists all.
	ListRegistrations(ctx context.Context, status model.PaymentStatus) ([]model.Registration, error)
	// SetPayment updates status and transaction id. Returns ErrDuplicate
	// when transactionID already belongs to another registration.
	SetPayment(ctx context.Context, id string, status model.PaymentStatus, transactionID string) (model.Registration, error)
	// IssueUID verifies the payment and stores uid in one step, unless the
	// registration already holds a verified UID. In that case the stored row
	// is returned with issued false. Returns ErrDuplicate when uid belongs to
	// another registration.
	IssueUID(ctx context.Context, id, uid string) (reg model.Registration, issued bool, err error)
	CountRegistrations(ctx context.Context) (int64, error)
}

// Pitches persists business pitch submissions.
type Pitches interface {
	// InsertPitch returns ErrDuplicate when the UID already submitted.
	InsertPitch(ctx context.Context, p model.Pitch) error
	PitchByUID(ctx context.Context, uid string) (model.Pitch, error)
	ListPitches(ctx context.Context) ([]model.Pitch, error)
	CountPitches(ctx context.Context) (int64, error)
}

// Analytics holds named counters.
type Analytics interface {
	// IncrementCounter atomically adds one and returns the new value.
	IncrementCounter(ctx context.Context, name string) (int64, error)
	// Counter returns the value, zero when the counter does not exist.
	Counter(ctx context.Context, name string) (int64, error)
}

// Store is everything the service persists.
type Store interface {
	Registrations
	Pitches
	Analytics
	Close() error
}
