package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/identity"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

// Booking ties a clinical record to a practitioner at a point in time.
type Booking struct {
	ID               uuid.UUID
	ClinicalRecordID uuid.UUID
	PractitionerID   uuid.UUID
	ScheduledAt      time.Time
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Detail is a booking hydrated with both parties.
type Detail struct {
	Booking
	Patient      *identity.ClinicalRecord
	Practitioner *directory.Practitioner
}
