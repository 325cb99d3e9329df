package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-scheduling/internal/db"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/identity"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const bookingColumns = `id, patient_id, practitioner_id, scheduled_at, status, created_at, updated_at`

const detailQuery = `
	SELECT a.id, a.patient_id, a.practitioner_id, a.scheduled_at, a.status, a.created_at, a.updated_at,
	       p.id, p.name, p.identifier, p.phone, p.address, p.created_at, p.updated_at,
	       d.id, d.name, d.specialty, d.license, d.created_at, d.updated_at
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN practitioners d ON d.id = a.practitioner_id
`

// Helpers

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking

	err := row.Scan(
		&b.ID,
		&b.ClinicalRecordID,
		&b.PractitionerID,
		&b.ScheduledAt,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &b, nil
}

func scanDetail(row pgx.Row) (*Detail, error) {
	var (
		d   Detail
		rec identity.ClinicalRecord
		doc directory.Practitioner
	)

	err := row.Scan(
		&d.ID, &d.ClinicalRecordID, &d.PractitionerID, &d.ScheduledAt, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&rec.ID, &rec.Name, &rec.Identifier, &rec.Phone, &rec.Address, &rec.CreatedAt, &rec.UpdatedAt,
		&doc.ID, &doc.Name, &doc.Specialty, &doc.License, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	d.Patient = &rec
	d.Practitioner = &doc
	return &d, nil
}

func collectDetails(rows pgx.Rows) ([]Detail, error) {
	defer rows.Close()

	result := []Detail{}
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Interface methods

func (r *PgRepository) CreateBooking(ctx context.Context, b *Booking) (*Booking, error) {
	id := b.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, practitioner_id, scheduled_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING `+bookingColumns,
		id, b.ClinicalRecordID, b.PractitionerID, b.ScheduledAt, b.Status)

	created, err := scanBooking(row)
	if err != nil {
		if constraint, ok := db.ForeignKeyViolation(err); ok {
			if constraint == "appointments_practitioner_id_fkey" {
				return nil, directory.ErrPractitionerNotFound
			}
			return nil, identity.ErrClinicalRecordNotFound
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return created, nil
}

func (r *PgRepository) GetBooking(ctx context.Context, id uuid.UUID) (*Detail, error) {
	row := r.pool.QueryRow(ctx, detailQuery+`WHERE a.id = $1`, id)
	return scanDetail(row)
}

func (r *PgRepository) ListBookings(ctx context.Context) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, detailQuery+`ORDER BY a.scheduled_at, a.id`)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

func (r *PgRepository) ListBookingsByClinicalRecord(ctx context.Context, recordID uuid.UUID) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, detailQuery+`WHERE a.patient_id = $1 ORDER BY a.scheduled_at, a.id`, recordID)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows)
}

func (r *PgRepository) UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+bookingColumns,
		id, to, from)

	return scanBooking(row)
}
