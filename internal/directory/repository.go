package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPractitionerNotFound = errors.New("practitioner not found")
	ErrLicenseTaken         = errors.New("license number already registered")
)

type Repository interface {
	ListPractitioners(ctx context.Context) ([]Practitioner, error)
	GetPractitionerByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)
	CreatePractitioner(ctx context.Context, p *Practitioner) (*Practitioner, error)
	UpdatePractitioner(ctx context.Context, p *Practitioner) (*Practitioner, error)
	DeletePractitioner(ctx context.Context, id uuid.UUID) error
}
