package booking

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the Postgres-backed Store, for deployments that want the
// ledger shared between instances instead of a local data directory.
// Dates and times are stored in their persisted text forms so records
// round-trip exactly like the JSON files do.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Schema is the DDL the store expects. Applied by the operator or the
// seed tool, not at runtime.
const Schema = `
CREATE TABLE IF NOT EXISTS token_bookings (
	token_id     TEXT PRIMARY KEY,
	patient_name  TEXT NOT NULL,
	patient_phone TEXT NOT NULL,
	patient_age   INT NOT NULL,
	department    TEXT NOT NULL,
	doctor_name   TEXT NOT NULL DEFAULT '',
	booking_date  TEXT NOT NULL,
	booking_time  TEXT NOT NULL,
	token_number  INT NOT NULL,
	status        TEXT NOT NULL,
	symptoms      TEXT NOT NULL DEFAULT '',
	priority      TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	notes         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS current_tokens (
	serving_key          TEXT PRIMARY KEY,
	department           TEXT NOT NULL,
	doctor_name          TEXT NOT NULL,
	current_token_id     TEXT NOT NULL,
	current_token_number INT NOT NULL,
	patient_name         TEXT NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);
`

func (s *PgStore) LoadBookings(ctx context.Context) (map[string]*Booking, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT token_id, patient_name, patient_phone, patient_age, department,
		       doctor_name, booking_date, booking_time, token_number, status,
		       symptoms, priority, created_at, updated_at, notes
		FROM token_bookings
	`)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	bookings := make(map[string]*Booking)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings[b.TokenID] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return bookings, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var dateStr, timeStr string

	err := row.Scan(
		&b.TokenID,
		&b.PatientName,
		&b.PatientPhone,
		&b.PatientAge,
		&b.Department,
		&b.DoctorName,
		&dateStr,
		&timeStr,
		&b.TokenNumber,
		&b.Status,
		&b.Symptoms,
		&b.Priority,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("scan booking: %w", err)
	}

	if b.BookingDate, err = ParseDate(dateStr); err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.TokenID, err)
	}
	if b.BookingTime, err = ParseTimeOfDay(timeStr); err != nil {
		return nil, fmt.Errorf("booking %s: %w", b.TokenID, err)
	}
	return &b, nil
}

func (s *PgStore) SaveBookings(ctx context.Context, bookings map[string]*Booking) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save bookings: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range bookings {
		_, err := tx.Exec(ctx, `
			INSERT INTO token_bookings (
				token_id, patient_name, patient_phone, patient_age, department,
				doctor_name, booking_date, booking_time, token_number, status,
				symptoms, priority, created_at, updated_at, notes
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
			ON CONFLICT (token_id) DO UPDATE SET
				status = EXCLUDED.status,
				notes = EXCLUDED.notes,
				updated_at = EXCLUDED.updated_at
		`,
			b.TokenID, b.PatientName, b.PatientPhone, b.PatientAge, b.Department,
			b.DoctorName, b.BookingDate.String(), b.BookingTime.String(), b.TokenNumber, b.Status,
			b.Symptoms, b.Priority, b.CreatedAt, b.UpdatedAt, b.Notes,
		)
		if err != nil {
			return fmt.Errorf("upsert booking %s: %w", b.TokenID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save bookings: %w", err)
	}
	return nil
}

func (s *PgStore) LoadServing(ctx context.Context) (map[string]*ServingEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT serving_key, department, doctor_name, current_token_id,
		       current_token_number, patient_name, updated_at
		FROM current_tokens
	`)
	if err != nil {
		return nil, fmt.Errorf("query current tokens: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]*ServingEntry)
	for rows.Next() {
		var key string
		var e ServingEntry
		err := rows.Scan(
			&key,
			&e.Department,
			&e.DoctorName,
			&e.CurrentTokenID,
			&e.CurrentTokenNumber,
			&e.PatientName,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan current token: %w", err)
		}
		entries[key] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate current tokens: %w", err)
	}
	return entries, nil
}

func (s *PgStore) SaveServing(ctx context.Context, entries map[string]*ServingEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save current tokens: %w", err)
	}
	defer tx.Rollback(ctx)

	for key, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO current_tokens (
				serving_key, department, doctor_name, current_token_id,
				current_token_number, patient_name, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (serving_key) DO UPDATE SET
				department = EXCLUDED.department,
				doctor_name = EXCLUDED.doctor_name,
				current_token_id = EXCLUDED.current_token_id,
				current_token_number = EXCLUDED.current_token_number,
				patient_name = EXCLUDED.patient_name,
				updated_at = EXCLUDED.updated_at
		`,
			key, e.Department, e.DoctorName, e.CurrentTokenID,
			e.CurrentTokenNumber, e.PatientName, e.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert current token %s: %w", key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save current tokens: %w", err)
	}
	return nil
}
