// Package sqlite implements repository.Store on an embedded SQLite file.
//
// The pure Go modernc.org/sqlite driver is used by default. Build with
// -tags cgo_sqlite to use mattn/go-sqlite3 instead.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/convention/internal/adapters/repository"
	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/pkg/metrics"
)

//go:embed schema.sql
var schema string

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const registrationColumns = `id, created_at, full_name, gender, email, phone, department, institution,
	zone, skill_choice, tshirt_size, health_concerns, total_amount, payment_status, receipt_url,
	transaction_id, duplicate_key`

// Store is a SQLite-backed repository.Store.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// Open opens the database at path. ":memory:" gives a private in-memory
// database. SQLite serializes writers, so a single connection is used.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA foreign_keys = ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: wal: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Migrate applies the embedded schema. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func observe(op string, start time.Time, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreCall(op, time.Since(start), err)
}

// mapErr converts driver errors into repository sentinels. Both drivers
// report constraint failures with SQLite's own message text.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return repository.ErrNotFound
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, err.Error())
	default:
		return err
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row scanner) (model.Registration, error) {
	var (
		r       model.Registration
		created string
	)
	err := row.Scan(&r.ID, &created, &r.FullName, &r.Gender, &r.Email, &r.Phone, &r.Department,
		&r.Institution, &r.Zone, &r.SkillChoice, &r.TShirtSize, &r.HealthConcerns, &r.TotalAmount,
		&r.PaymentStatus, &r.ReceiptURL, &r.TransactionID, &r.DuplicateKey)
	if err != nil {
		return r, err
	}
	r.CreatedAt, err = parseTime(created)
	return r, err
}

func scanPitch(row scanner) (model.Pitch, error) {
	var (
		p       model.Pitch
		created string
	)
	if err := row.Scan(&p.ID, &created, &p.UID, &p.VideoURL, &p.DocumentURL); err != nil {
		return p, err
	}
	var err error
	p.CreatedAt, err = parseTime(created)
	return p, err
}

func (s *Store) InsertRegistration(ctx context.Context, r model.Registration) (err error) {
	defer func(start time.Time) { observe("insert_registration", start, err) }(time.Now())

	_, err = s.db.ExecContext(ctx, `INSERT INTO registrations (`+registrationColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, formatTime(r.CreatedAt), r.FullName, string(r.Gender), r.Email, r.Phone, r.Department,
		r.Institution, string(r.Zone), string(r.SkillChoice), string(r.TShirtSize), r.HealthConcerns,
		r.TotalAmount, string(r.PaymentStatus), r.ReceiptURL, r.TransactionID, r.DuplicateKey,
	)
	return mapErr(err)
}

func (s *Store) registrationWhere(ctx context.Context, op, where string, arg any) (r model.Registration, err error) {
	defer func(start time.Time) { observe(op, start, err) }(time.Now())
	r, err = scanRegistration(s.db.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE `+where, arg))
	return r, mapErr(err)
}

func (s *Store) RegistrationByID(ctx context.Context, id string) (model.Registration, error) {
	return s.registrationWhere(ctx, "registration_by_id", "id = ?", id)
}

func (s *Store) RegistrationByDuplicateKey(ctx context.Context, key string) (model.Registration, error) {
	return s.registrationWhere(ctx, "registration_by_key", "duplicate_key = ?", key)
}

func (s *Store) RegistrationByUID(ctx context.Context, uid string) (model.Registration, error) {
	return s.registrationWhere(ctx, "registration_by_uid",
		"transaction_id = ? AND transaction_id <> '"+model.ManualUploadTransaction+"'", uid)
}

func (s *Store) ListRegistrations(ctx context.Context, status model.PaymentStatus) (out []model.Registration, err error) {
	defer func(start time.Time) { observe("list_registrations", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT `+registrationColumns+` FROM registrations
		WHERE ?1 = '' OR payment_status = ?1
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

	res, err := s.db.ExecContext(ctx, `UPDATE registrations SET payment_status = ?, transaction_id = ? WHERE id = ?`,
		string(status), transactionID, id)
	if err != nil {
		return r, mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r, repository.ErrNotFound
	}
	r, err = scanRegistration(s.db.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = ?`, id))
	return r, mapErr(err)
}

func (s *Store) IssueUID(ctx context.Context, id, uid string) (r model.Registration, issued bool, err error) {
	defer func(start time.Time) { observe("issue_uid", start, err) }(time.Now())

	res, err := s.db.ExecContext(ctx, `UPDATE registrations SET payment_status = ?1, transaction_id = ?2
		WHERE id = ?3 AND NOT (payment_status = ?1 AND transaction_id <> ?4)`,
		string(model.PaymentVerified), uid, id, model.ManualUploadTransaction)
	if err != nil {
		return r, false, mapErr(err)
	}
	n, _ := res.RowsAffected()
	r, err = scanRegistration(s.db.QueryRowContext(ctx, `SELECT `+registrationColumns+` FROM registrations WHERE id = ?`, id))
	return r, n > 0, mapErr(err)
}

func (s *Store) CountRegistrations(ctx context.Context) (n int64, err error) {
	defer func(start time.Time) { observe("count_registrations", start, err) }(time.Now())
	err = s.db.QueryRowContext(ctx, `SELECT count(*) FROM registrations`).Scan(&n)
	return n, err
}

func (s *Store) InsertPitch(ctx context.Context, p model.Pitch) (err error) {
	defer func(start time.Time) { observe("insert_pitch", start, err) }(time.Now())
	_, err = s.db.ExecContext(ctx, `INSERT INTO business_pitches (id, created_at, uid, video_url, document_url)
		VALUES (?,?,?,?,?)`, p.ID, formatTime(p.CreatedAt), p.UID, p.VideoURL, p.DocumentURL)
	return mapErr(err)
}

func (s *Store) PitchByUID(ctx context.Context, uid string) (p model.Pitch, err error) {
	defer func(start time.Time) { observe("pitch_by_uid", start, err) }(time.Now())
	p, err = scanPitch(s.db.QueryRowContext(ctx, `SELECT id, created_at, uid, video_url, document_url
		FROM business_pitches WHERE uid = ?`, uid))
	return p, mapErr(err)
}

func (s *Store) ListPitches(ctx context.Context) (out []model.Pitch, err error) {
	defer func(start time.Time) { observe("list_pitches", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, uid, video_url, document_url
		FROM business_pitches ORDER BY created_at DESC, uid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out = []model.Pitch{}
	for rows.Next() {
		p, err := scanPitch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CountPitches(ctx context.Context) (n int64, err error) {
	defer func(start time.Time) { observe("count_pitches", start, err) }(time.Now())
	err = s.db.QueryRowContext(ctx, `SELECT count(*) FROM business_pitches`).Scan(&n)
	return n, err
}

func (s *Store) IncrementCounter(ctx context.Context, name string) (n int64, err error) {
	defer func(start time.Time) { observe("increment_counter", start, err) }(time.Now())
	err = s.db.QueryRowContext(ctx, `INSERT INTO site_analytics (name, count) VALUES (?, 1)
		ON CONFLICT (name) DO UPDATE SET count = count + 1
		RETURNING count`, name).Scan(&n)
	return n, err
}

func (s *Store) Counter(ctx context.Context, name string) (n int64, err error) {
	defer func(start time.Time) { observe("counter", start, err) }(time.Now())
	err = s.db.QueryRowContext(ctx, `SELECT count FROM site_analytics WHERE name = ?`, name).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}
