package identity

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotApplicable is returned for staff callers, who have no clinical record.
	ErrNotApplicable = errors.New("caller is not a patient")
	// ErrProfileMissing means the login exists but no clinical record is linked to it.
	ErrProfileMissing = errors.New("patient profile not found")
)

// Resolver maps an authenticated caller to its clinical record.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve loads the principal behind caller and returns its clinical record.
// The explicit link stored at registration wins; otherwise the record is
// looked up by the shared identifier.
func (r *Resolver) Resolve(ctx context.Context, caller Caller) (*ClinicalRecord, error) {
	if caller.IsStaff() {
		return nil, ErrNotApplicable
	}

	principal, err := r.repo.GetPrincipalByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load principal: %w", err)
	}

	if principal.ClinicalRecordID != nil {
		rec, err := r.repo.GetClinicalRecordByID(ctx, *principal.ClinicalRecordID)
		switch {
		case err == nil:
			return rec, nil
		case !errors.Is(err, ErrClinicalRecordNotFound):
			return nil, fmt.Errorf("load linked clinical record: %w", err)
		}
	}

	rec, err := r.repo.GetClinicalRecordByIdentifier(ctx, principal.Identifier)
	if err != nil {
		if errors.Is(err, ErrClinicalRecordNotFound) {
			return nil, ErrProfileMissing
		}
		return nil, fmt.Errorf("load clinical record by identifier: %w", err)
	}
	return rec, nil
}

// IsUnresolved reports whether err means the caller simply has no profile,
// as opposed to an infrastructure failure.
func IsUnresolved(err error) bool {
	return errors.Is(err, ErrProfileMissing) || errors.Is(err, ErrPrincipalNotFound)
}
