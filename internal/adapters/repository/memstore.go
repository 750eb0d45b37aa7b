package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/convention/internal/domain/model"
)

// MemStore keeps every record in process memory. Unique constraints match
// the SQL schema.
type MemStore struct {
	mu sync.RWMutex

	registrations map[string]model.Registration // by id
	byKey         map[string]string             // duplicate key -> id
	byUID         map[string]string             // issued uid -> id
	pitches       map[string]model.Pitch        // by uid
	counters      map[string]int64

	now func() time.Time
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		registrations: make(map[string]model.Registration),
		byKey:         make(map[string]string),
		byUID:         make(map[string]string),
		pitches:       make(map[string]model.Pitch),
		counters:      map[string]int64{PageViewsCounter: 0},
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemStore) InsertRegistration(_ context.Context, r model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registrations[r.ID]; ok {
		return ErrDuplicate
	}
	if _, ok := s.byKey[r.DuplicateKey]; ok {
		return ErrDuplicate
	}
	if r.HasUID() {
		if _, ok := s.byUID[r.TransactionID]; ok {
			return ErrDuplicate
		}
		s.byUID[r.TransactionID] = r.ID
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	s.registrations[r.ID] = r
	s.byKey[r.DuplicateKey] = r.ID
	return nil
}

func (s *MemStore) RegistrationByID(_ context.Context, id string) (model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.registrations[id]
	if !ok {
		return model.Registration{}, ErrNotFound
	}
	return r, nil
}

func (s *MemStore) RegistrationByDuplicateKey(_ context.Context, key string) (model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return model.Registration{}, ErrNotFound
	}
	return s.registrations[id], nil
}

func (s *MemStore) RegistrationByUID(_ context.Context, uid string) (model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUID[uid]
	if !ok {
		return model.Registration{}, ErrNotFound
	}
	return s.registrations[id], nil
}

func (s *MemStore) ListRegistrations(_ context.Context, status model.PaymentStatus) ([]model.Registration, error) {
	s.mu.RLock()
	out := make([]model.Registration, 0, len(s.registrations))
	for _, r := range s.registrations {
		if status == "" || r.PaymentStatus == status {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) SetPayment(_ context.Context, id string, status model.PaymentStatus, transactionID string) (model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registrations[id]
	if !ok {
		return model.Registration{}, ErrNotFound
	}
	if owner, taken := s.byUID[transactionID]; taken && owner != id {
		return model.Registration{}, ErrDuplicate
	}
	if r.HasUID() && r.TransactionID != transactionID {
		delete(s.byUID, r.TransactionID)
	}
	r.PaymentStatus = status
	r.TransactionID = transactionID
	if r.HasUID() {
		s.byUID[transactionID] = id
	}
	s.registrations[id] = r
	return r, nil
}

func (s *MemStore) IssueUID(_ context.Context, id, uid string) (model.Registration, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.registrations[id]
	if !ok {
		return model.Registration{}, false, ErrNotFound
	}
	if r.PaymentStatus == model.PaymentVerified && r.HasUID() {
		return r, false, nil
	}
	if owner, taken := s.byUID[uid]; taken && owner != id {
		return model.Registration{}, false, ErrDuplicate
	}
	if r.HasUID() {
		delete(s.byUID, r.TransactionID)
	}
	r.PaymentStatus = model.PaymentVerified
	r.TransactionID = uid
	s.byUID[uid] = id
	s.registrations[id] = r
	return r, true, nil
}

func (s *MemStore) CountRegistrations(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.registrations)), nil
}

func (s *MemStore) InsertPitch(_ context.Context, p model.Pitch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pitches[p.UID]; ok {
		return ErrDuplicate
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	s.pitches[p.UID] = p
	return nil
}

func (s *MemStore) PitchByUID(_ context.Context, uid string) (model.Pitch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pitches[uid]
	if !ok {
		return model.Pitch{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) ListPitches(_ context.Context) ([]model.Pitch, error) {
	s.mu.RLock()
	out := make([]model.Pitch, 0, len(s.pitches))
	for _, p := range s.pitches {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UID < out[j].UID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemStore) CountPitches(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.pitches)), nil
}

func (s *MemStore) IncrementCounter(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name]++
	return s.counters[name], nil
}

func (s *MemStore) Counter(_ context.Context, name string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[name], nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }
