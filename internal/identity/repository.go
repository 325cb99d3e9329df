package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPrincipalNotFound      = errors.New("principal not found")
	ErrClinicalRecordNotFound = errors.New("clinical record not found")
	ErrEmailTaken             = errors.New("email already registered")
	ErrIdentifierTaken        = errors.New("identifier already registered")
)

// Repository contains all DB interactions for principals and clinical records.
type Repository interface {
	GetPrincipalByID(ctx context.Context, id uuid.UUID) (*Principal, error)
	GetPrincipalByEmail(ctx context.Context, email string) (*Principal, error)

	// CreatePrincipal inserts p. When placeholder is non-nil a clinical record
	// with the same identifier is created unless one already exists, and p is
	// linked to it.
	CreatePrincipal(ctx context.Context, p *Principal, placeholder *ClinicalRecord) (*Principal, error)

	GetClinicalRecordByID(ctx context.Context, id uuid.UUID) (*ClinicalRecord, error)
	GetClinicalRecordByIdentifier(ctx context.Context, identifier string) (*ClinicalRecord, error)
	ListClinicalRecords(ctx context.Context) ([]ClinicalRecord, error)
	CreateClinicalRecord(ctx context.Context, rec *ClinicalRecord) (*ClinicalRecord, error)
	UpdateClinicalRecord(ctx context.Context, rec *ClinicalRecord) (*ClinicalRecord, error)
	DeleteClinicalRecord(ctx context.Context, id uuid.UUID) error
}
