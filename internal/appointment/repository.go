package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Repository contains all DB interactions needed by the service.
//
// CreateBooking reports a dangling practitioner or clinical record with
// directory.ErrPractitionerNotFound or identity.ErrClinicalRecordNotFound.
type Repository interface {
	CreateBooking(ctx context.Context, b *Booking) (*Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*Detail, error)

	ListBookings(ctx context.Context) ([]Detail, error)
	ListBookingsByClinicalRecord(ctx context.Context, recordID uuid.UUID) ([]Detail, error)

	// UpdateBookingStatus moves id from one status to another. It returns
	// ErrAppointmentNotFound when no booking with that id is in status from.
	UpdateBookingStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Booking, error)
}
