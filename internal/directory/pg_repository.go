package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-scheduling/internal/db"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const practitionerColumns = `id, name, specialty, license, created_at, updated_at`

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Specialty,
		&p.License,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPractitionerNotFound
		}
		if _, ok := db.UniqueViolation(err); ok {
			return nil, ErrLicenseTaken
		}
		return nil, err
	}
	return &p, nil
}

func (r *PgRepository) ListPractitioners(ctx context.Context) ([]Practitioner, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+practitionerColumns+` FROM practitioners ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Practitioner{}
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) GetPractitionerByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+practitionerColumns+` FROM practitioners WHERE id = $1`, id)
	return scanPractitioner(row)
}

func (r *PgRepository) CreatePractitioner(ctx context.Context, p *Practitioner) (*Practitioner, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO practitioners (id, name, specialty, license, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING `+practitionerColumns,
		p.ID, p.Name, p.Specialty, p.License)
	return scanPractitioner(row)
}

func (r *PgRepository) UpdatePractitioner(ctx context.Context, p *Practitioner) (*Practitioner, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE practitioners
		SET name = $2,
		    specialty = $3,
		    license = $4,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+practitionerColumns,
		p.ID, p.Name, p.Specialty, p.License)
	return scanPractitioner(row)
}

// DeletePractitioner removes the practitioner and, through the foreign key,
// every booking with them.
func (r *PgRepository) DeletePractitioner(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM practitioners WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPractitionerNotFound
	}
	return nil
}
