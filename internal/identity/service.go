package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidIdentifier  = errors.New("identifier must be exactly 11 digits")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidCredentials = errors.New("email or password are invalid")
	ErrForbidden          = errors.New("access denied")
)

var identifierPattern = regexp.MustCompile(`^\d{11}$`)

type RegisterInput struct {
	Name       string
	Email      string
	Identifier string
	Password   string
	Role       string
}

type RecordInput struct {
	Name       string
	Identifier string
	Phone      string
	Address    string
}

// Service handles registration, login and clinical record maintenance.
type Service struct {
	repo   Repository
	hasher PasswordHasher
	log    zerolog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		log:    log,
	}
}

// Register creates a login. Patients get a placeholder clinical record with
// the same identifier, linked explicitly. Only a staff caller may create
// another staff login; anonymous callers always get the patient role.
func (s *Service) Register(ctx context.Context, caller *Caller, in RegisterInput) (*Principal, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Identifier = strings.TrimSpace(in.Identifier)

	if in.Name == "" || in.Email == "" || in.Identifier == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if !identifierPattern.MatchString(in.Identifier) {
		return nil, ErrInvalidIdentifier
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	role := RolePatient
	if Role(in.Role) == RoleStaff {
		if caller == nil || !caller.IsStaff() {
			return nil, ErrForbidden
		}
		role = RoleStaff
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &Principal{
		ID:           uuid.New(),
		Role:         role,
		Name:         in.Name,
		Email:        in.Email,
		Identifier:   in.Identifier,
		PasswordHash: hash,
	}

	var placeholder *ClinicalRecord
	if role == RolePatient {
		placeholder = &ClinicalRecord{
			ID:         uuid.New(),
			Name:       in.Name,
			Identifier: in.Identifier,
			Phone:      placeholderPhone,
			Address:    placeholderAddress,
		}
	}

	created, err := s.repo.CreatePrincipal(ctx, p, placeholder)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrIdentifierTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create principal: %w", err)
	}

	s.log.Info().
		Str("principal_id", created.ID.String()).
		Str("role", string(created.Role)).
		Bool("linked", created.ClinicalRecordID != nil).
		Msg("principal registered")

	return created, nil
}

// Authenticate checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	p, err := s.repo.GetPrincipalByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}

	if err := s.hasher.Compare(p.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// GetPrincipal returns a principal visible to caller: staff see everyone,
// patients only themselves.
func (s *Service) GetPrincipal(ctx context.Context, caller Caller, id uuid.UUID) (*Principal, error) {
	if !caller.IsStaff() && caller.ID != id {
		return nil, ErrForbidden
	}
	p, err := s.repo.GetPrincipalByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}
	return p, nil
}

func (s *Service) ListRecords(ctx context.Context) ([]ClinicalRecord, error) {
	recs, err := s.repo.ListClinicalRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clinical records: %w", err)
	}
	return recs, nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*ClinicalRecord, error) {
	rec, err := s.repo.GetClinicalRecordByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrClinicalRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load clinical record: %w", err)
	}
	return rec, nil
}

func (s *Service) CreateRecord(ctx context.Context, in RecordInput) (*ClinicalRecord, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Identifier = strings.TrimSpace(in.Identifier)
	if in.Name == "" || in.Identifier == "" || in.Phone == "" || in.Address == "" {
		return nil, ErrMissingFields
	}
	if !identifierPattern.MatchString(in.Identifier) {
		return nil, ErrInvalidIdentifier
	}

	rec, err := s.repo.CreateClinicalRecord(ctx, &ClinicalRecord{
		ID:         uuid.New(),
		Name:       in.Name,
		Identifier: in.Identifier,
		Phone:      in.Phone,
		Address:    in.Address,
	})
	if err != nil {
		if errors.Is(err, ErrIdentifierTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create clinical record: %w", err)
	}
	return rec, nil
}

// UpdateRecord applies the non-empty fields of in. The identifier is the join
// key with logins and cannot be changed here.
func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, in RecordInput) (*ClinicalRecord, error) {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		rec.Name = strings.TrimSpace(in.Name)
	}
	if in.Phone != "" {
		rec.Phone = in.Phone
	}
	if in.Address != "" {
		rec.Address = in.Address
	}

	updated, err := s.repo.UpdateClinicalRecord(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrClinicalRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update clinical record: %w", err)
	}
	return updated, nil
}

// DeleteRecord removes a clinical record; its bookings go with it.
func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteClinicalRecord(ctx, id); err != nil {
		if errors.Is(err, ErrClinicalRecordNotFound) {
			return err
		}
		return fmt.Errorf("delete clinical record: %w", err)
	}
	return nil
}
