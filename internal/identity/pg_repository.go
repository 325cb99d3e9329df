package identity

import (
	"context"
	"errors"
	"fmt"

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

const principalColumns = `id, role, name, email, identifier, password_hash, clinical_record_id, created_at, updated_at`

const recordColumns = `id, name, identifier, phone, address, created_at, updated_at`

// Helpers

func scanPrincipal(row pgx.Row) (*Principal, error) {
	var p Principal
	var recordID *uuid.UUID

	err := row.Scan(
		&p.ID,
		&p.Role,
		&p.Name,
		&p.Email,
		&p.Identifier,
		&p.PasswordHash,
		&recordID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, err
	}

	p.ClinicalRecordID = recordID
	return &p, nil
}

func scanRecord(row pgx.Row) (*ClinicalRecord, error) {
	var r ClinicalRecord

	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Identifier,
		&r.Phone,
		&r.Address,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClinicalRecordNotFound
		}
		return nil, err
	}
	return &r, nil
}

func mapUniqueViolation(err error) error {
	constraint, ok := db.UniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case "users_email_key":
		return ErrEmailTaken
	default:
		return ErrIdentifierTaken
	}
}

// Interface methods

func (r *PgRepository) GetPrincipalByID(ctx context.Context, id uuid.UUID) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+principalColumns+` FROM users WHERE id = $1`, id)
	return scanPrincipal(row)
}

func (r *PgRepository) GetPrincipalByEmail(ctx context.Context, email string) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+principalColumns+` FROM users WHERE email = $1`, email)
	return scanPrincipal(row)
}

func (r *PgRepository) CreatePrincipal(ctx context.Context, p *Principal, placeholder *ClinicalRecord) (*Principal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var recordID *uuid.UUID
	if placeholder != nil {
		// An existing record with this identifier is kept as is.
		var id uuid.UUID
		err := tx.QueryRow(ctx, `
			WITH ins AS (
				INSERT INTO patients (id, name, identifier, phone, address, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
				ON CONFLICT (identifier) DO NOTHING
				RETURNING id
			)
			SELECT id FROM ins
			UNION ALL
			SELECT id FROM patients WHERE identifier = $3
			LIMIT 1
		`, placeholder.ID, placeholder.Name, placeholder.Identifier, placeholder.Phone, placeholder.Address).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("ensure clinical record: %w", err)
		}
		recordID = &id
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO users (id, role, name, email, identifier, password_hash, clinical_record_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+principalColumns,
		p.ID, p.Role, p.Name, p.Email, p.Identifier, p.PasswordHash, recordID)

	created, err := scanPrincipal(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func (r *PgRepository) GetClinicalRecordByID(ctx context.Context, id uuid.UUID) (*ClinicalRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM patients WHERE id = $1`, id)
	return scanRecord(row)
}

func (r *PgRepository) GetClinicalRecordByIdentifier(ctx context.Context, identifier string) (*ClinicalRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM patients WHERE identifier = $1`, identifier)
	return scanRecord(row)
}

func (r *PgRepository) ListClinicalRecords(ctx context.Context) ([]ClinicalRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM patients ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []ClinicalRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PgRepository) CreateClinicalRecord(ctx context.Context, rec *ClinicalRecord) (*ClinicalRecord, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, name, identifier, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING `+recordColumns,
		rec.ID, rec.Name, rec.Identifier, rec.Phone, rec.Address)

	created, err := scanRecord(row)
	if err != nil {
		if _, ok := db.UniqueViolation(err); ok {
			return nil, ErrIdentifierTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) UpdateClinicalRecord(ctx context.Context, rec *ClinicalRecord) (*ClinicalRecord, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE patients
		SET name = $2,
		    phone = $3,
		    address = $4,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+recordColumns,
		rec.ID, rec.Name, rec.Phone, rec.Address)
	return scanRecord(row)
}

func (r *PgRepository) DeleteClinicalRecord(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClinicalRecordNotFound
	}
	return nil
}
