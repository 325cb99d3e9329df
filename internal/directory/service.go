package directory

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMissingFields  = errors.New("name, specialty and license are required")
	ErrInvalidLicense = errors.New("license must be 4 to 6 digits, a dash and 2 uppercase letters (e.g. 123456-SP)")
)

var licensePattern = regexp.MustCompile(`^\d{4,6}-[A-Z]{2}$`)

// Service maintains the practitioner directory. Every mutation writes the
// store first and then drops the cached list.
type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// List returns the serialized directory and whether it was a cache hit.
func (s *Service) List(ctx context.Context) ([]byte, bool, error) {
	return s.cache.Get(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	p, err := s.repo.GetPractitionerByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPractitionerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load practitioner: %w", err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Practitioner, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreatePractitioner(ctx, &Practitioner{
		ID:        uuid.New(),
		Name:      in.Name,
		Specialty: in.Specialty,
		License:   in.License,
	})
	if err != nil {
		if errors.Is(err, ErrLicenseTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create practitioner: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Practitioner, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdatePractitioner(ctx, &Practitioner{
		ID:        id,
		Name:      in.Name,
		Specialty: in.Specialty,
		License:   in.License,
	})
	if err != nil {
		if errors.Is(err, ErrPractitionerNotFound) || errors.Is(err, ErrLicenseTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("update practitioner: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePractitioner(ctx, id); err != nil {
		if errors.Is(err, ErrPractitionerNotFound) {
			return err
		}
		return fmt.Errorf("delete practitioner: %w", err)
	}
	return s.cache.Invalidate(ctx)
}

func validate(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Specialty = strings.TrimSpace(in.Specialty)
	in.License = strings.TrimSpace(in.License)

	if in.Name == "" || in.Specialty == "" || in.License == "" {
		return in, ErrMissingFields
	}
	if !licensePattern.MatchString(in.License) {
		return in, ErrInvalidLicense
	}
	return in, nil
}
