// Package postgres implements repository.Store on PostgreSQL via pgxpool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/convention/internal/adapters/repository"
	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/pkg/metrics"
)

//go:embed schema.sql
var schema string

const (
	uniqueViolation      = "23505"
	invalidTextRepresent = "22P02"
)

const registrationColumns = `id, created_at, full_name, gender, email, phone, department, institution,
	zone, skill_choice, tshirt_size, health_concerns, total_amount, payment_status, receipt_url,
	transaction_id, duplicate_key`

// Store is a PostgreSQL-backed repository.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects to url and verifies the connection.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return New(pool), nil
}

// Migrate applies the embedded schema. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func observe(op string, start time.Time, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreCall(op, time.Since(start), err)
}

// mapErr converts driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, pgErr.ConstraintName)
		case invalidTextRepresent:
			return repository.ErrNotFound
		}
	}
	return err
}

// validID rejects ids the uuid column could never hold. pgx fails to encode
// them before the query reaches the server.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func scanRegistration(row pgx.Row) (model.Registration, error) {
	var r model.Registration
	err := row.Scan(&r.ID, &r.CreatedAt, &r.FullName, &r.Gender, &r.Email, &r.Phone, &r.Department,
		&r.Institution, &r.Zone, &r.SkillChoice, &r.TShirtSize, &r.HealthConcerns, &r.TotalAmount,
		&r.PaymentStatus, &r.ReceiptURL, &r.TransactionID, &r.DuplicateKey)
	return r, err
}

func (s *Store) InsertRegistration(ctx context.Context, r model.Registration) (err error) {
	defer func(start time.Time) { observe("insert_registration", start, err) }(time.Now())

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO registrations (` + registrationColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	_, err = s.pool.Exec(ctx, q,
		r.ID, r.CreatedAt, r.FullName, r.Gender, r.Email, r.Phone, r.Department, r.Institution,
		r.Zone, r.SkillChoice, r.TShirtSize, r.HealthConcerns, r.TotalAmount, r.PaymentStatus,
		r.ReceiptURL, r.TransactionID, r.DuplicateKey,
	)
	return mapErr(err)
}

func (s *Store) registrationWhere(ctx context.Context, op, where string, arg any) (r model.Registration, err error) {
	defer func(start time.Time) { observe(op, start, err) }(time.Now())
	r, err = scanRegistration(s.pool.QueryRow(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE `+where, arg))
	return r, mapErr(err)
}

func (s *Store) RegistrationByID(ctx context.Context, id string) (model.Registration, error) {
	if !validID(id) {
		return model.Registration{}, repository.ErrNotFound
	}
	return s.registrationWhere(ctx, "registration_by_id", "id = $1", id)
}

func (s *Store) RegistrationByDuplicateKey(ctx context.Context, key string) (model.Registration, error) {
	return s.registrationWhere(ctx, "registration_by_key", "duplicate_key = $1", key)
}

func (s *Store) RegistrationByUID(ctx context.Context, uid string) (model.Registration, error) {
	return s.registrationWhere(ctx, "registration_by_uid",
		"transaction_id = $1 AND transaction_id <> '"+model.ManualUploadTransaction+"'", uid)
}

func (s *Store) ListRegistrations(ctx context.Context, status model.PaymentStatus) (out []model.Registration, err error) {
	defer func(start time.Time) { observe("list_registrations", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `SELECT `+registrationColumns+` FROM registrations
		WHERE $1::text = '' OR payment_status = $1
		ORDER BY created_at DESC, id`, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = []model.Registration{}
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SetPayment(ctx context.Context, id string, status model.PaymentStatus, transactionID string) (r model.Registration, err error) {
	defer func(start time.Time) { observe("set_payment", start, err) }(time.Now())

	if !validID(id) {
		return r, repository.ErrNotFound
	}
	r, err = scanRegistration(s.pool.QueryRow(ctx, `UPDATE registrations
		SET payment_status = $2, transaction_id = $3
		WHERE id = $1
		RETURNING `+registrationColumns, id, status, transactionID))
	return r, mapErr(err)
}

func (s *Store) IssueUID(ctx context.Context, id, uid string) (r model.Registration, issued bool, err error) {
	defer func(start time.Time) { observe("issue_uid", start, err) }(time.Now())

	if !validID(id) {
		return r, false, repository.ErrNotFound
	}
	r, err = scanRegistration(s.pool.QueryRow(ctx, `UPDATE registrations
		SET payment_status = $2, transaction_id = $3
		WHERE id = $1 AND NOT (payment_status = $2 AND transaction_id <> $4)
		RETURNING `+registrationColumns, id, model.PaymentVerified, uid, model.ManualUploadTransaction))
	if err == nil {
		return r, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return r, false, mapErr(err)
	}
	// Either the id is unknown or another caller already issued a UID.
	r, err = scanRegistration(s.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE id = $1`, id))
	return r, false, mapErr(err)
}

func (s *Store) CountRegistrations(ctx context.Context) (n int64, err error) {
	defer func(start time.Time) { observe("count_registrations", start, err) }(time.Now())
	err = s.pool.QueryRow(ctx, `SELECT count(*) FROM registrations`).Scan(&n)
	return n, err
}

func (s *Store) InsertPitch(ctx context.Context, p model.Pitch) (err error) {
	defer func(start time.Time) { observe("insert_pitch", start, err) }(time.Now())

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err = s.pool.Exec(ctx, `INSERT INTO business_pitches (id, created_at, uid, video_url, document_url)
		VALUES ($1,$2,$3,$4,$5)`, p.ID, p.CreatedAt, p.UID, p.VideoURL, p.DocumentURL)
	return mapErr(err)
}

func (s *Store) PitchByUID(ctx context.Context, uid string) (p model.Pitch, err error) {
	defer func(start time.Time) { observe("pitch_by_uid", start, err) }(time.Now())
	err = s.pool.QueryRow(ctx, `SELECT id, created_at, uid, video_url, document_url
		FROM business_pitches WHERE uid = $1`, uid).
		Scan(&p.ID, &p.CreatedAt, &p.UID, &p.VideoURL, &p.DocumentURL)
	return p, mapErr(err)
}

func (s *Store) ListPitches(ctx context.Context) (out []model.Pitch, err error) {
	defer func(start time.Time) { observe("list_pitches", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `SELECT id, created_at, uid, video_url, document_url
		FROM business_pitches ORDER BY created_at DESC, uid`)
	if err != nil {
		return nil, err
	}
	out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Pitch, error) {
		var p model.Pitch
		err := row.Scan(&p.ID, &p.CreatedAt, &p.UID, &p.VideoURL, &p.DocumentURL)
		return p, err
	})
	return out, err
}

func (s *Store) CountPitches(ctx context.Context) (n int64, err error) {
	defer func(start time.Time) { observe("count_pitches", start, err) }(time.Now())
	err = s.pool.QueryRow(ctx, `SELECT count(*) FROM business_pitches`).Scan(&n)
	return n, err
}

func (s *Store) IncrementCounter(ctx context.Context, name string) (n int64, err error) {
	defer func(start time.Time) { observe("increment_counter", start, err) }(time.Now())
	err = s.pool.QueryRow(ctx, `INSERT INTO site_analytics (name, count) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET count = site_analytics.count + 1
		RETURNING count`, name).Scan(&n)
	return n, err
}

func (s *Store) Counter(ctx context.Context, name string) (n int64, err error) {
	defer func(start time.Time) { observe("counter", start, err) }(time.Now())
	err = s.pool.QueryRow(ctx, `SELECT count FROM site_analytics WHERE name = $1`, name).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return n, err
}
