package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/events"
	"github.com/hackgods/clinic-scheduling/internal/identity"
)

const publishTimeout = 5 * time.Second

var (
	ErrMissingFields     = errors.New("practitioner and date are required")
	ErrMissingPatient    = errors.New("staff must select a patient")
	ErrInvalidStatus     = errors.New("invalid status value")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// RecordResolver maps a non-staff caller to its clinical record.
type RecordResolver interface {
	Resolve(ctx context.Context, caller identity.Caller) (*identity.ClinicalRecord, error)
}

// CreateInput carries a booking request. ClinicalRecordID is only read for
// staff callers; patients always book for themselves.
type CreateInput struct {
	PractitionerID   uuid.UUID
	ScheduledAt      time.Time
	ClinicalRecordID uuid.UUID
}

type Service struct {
	repo      Repository
	resolver  RecordResolver
	publisher events.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, resolver RecordResolver, publisher events.Publisher, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		resolver:  resolver,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Create books an appointment and announces it on the notification channel.
// The booking stands even when the announcement cannot be delivered.
func (s *Service) Create(ctx context.Context, caller identity.Caller, in CreateInput) (*Booking, error) {
	recordID := in.ClinicalRecordID
	if caller.IsStaff() {
		if recordID == uuid.Nil {
			return nil, ErrMissingPatient
		}
	} else {
		rec, err := s.resolver.Resolve(ctx, caller)
		if err != nil {
			if identity.IsUnresolved(err) {
				return nil, identity.ErrProfileMissing
			}
			return nil, fmt.Errorf("resolve patient: %w", err)
		}
		recordID = rec.ID
	}

	if in.PractitionerID == uuid.Nil || in.ScheduledAt.IsZero() {
		return nil, ErrMissingFields
	}

	created, err := s.repo.CreateBooking(ctx, &Booking{
		ClinicalRecordID: recordID,
		PractitionerID:   in.PractitionerID,
		ScheduledAt:      in.ScheduledAt,
		Status:           StatusScheduled,
	})
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.announce(ctx, created)
	return created, nil
}

func (s *Service) announce(ctx context.Context, b *Booking) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := events.NewAppointmentCreated(b.ID, b.ClinicalRecordID, b.ScheduledAt, s.now())
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Error().
			Err(err).
			Str("appointment_id", b.ID.String()).
			Msg("failed to publish appointment event")
	}
}

// List returns every booking for staff and the caller's own bookings
// otherwise. A caller without a clinical record simply has none.
func (s *Service) List(ctx context.Context, caller identity.Caller) ([]Detail, error) {
	if caller.IsStaff() {
		all, err := s.repo.ListBookings(ctx)
		if err != nil {
			return nil, fmt.Errorf("list appointments: %w", err)
		}
		return all, nil
	}

	rec, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		if identity.IsUnresolved(err) {
			return []Detail{}, nil
		}
		return nil, fmt.Errorf("resolve patient: %w", err)
	}

	own, err := s.repo.ListBookingsByClinicalRecord(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return own, nil
}

// Get returns one booking. Patients only see their own; anything else is
// reported as not found.
func (s *Service) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*Detail, error) {
	detail, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	if caller.IsStaff() {
		return detail, nil
	}

	rec, err := s.resolver.Resolve(ctx, caller)
	if err != nil {
		if identity.IsUnresolved(err) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("resolve patient: %w", err)
	}
	if rec.ID != detail.ClinicalRecordID {
		return nil, ErrAppointmentNotFound
	}
	return detail, nil
}

// SetStatus closes a scheduled booking as completed or canceled. Repeating
// the current terminal status is a no-op; switching between terminal
// statuses is rejected.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, to Status) (*Booking, error) {
	if !to.Terminal() {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if current.Status == to {
		return &current.Booking, nil
	}
	if current.Status.Terminal() {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateBookingStatus(ctx, id, StatusScheduled, to)
	if err != nil {
		if !errors.Is(err, ErrAppointmentNotFound) {
			return nil, fmt.Errorf("update appointment status: %w", err)
		}
		// Lost a race with another status change; report what won.
		latest, getErr := s.repo.GetBooking(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if latest.Status == to {
			return &latest.Booking, nil
		}
		return nil, ErrInvalidTransition
	}

	s.log.Info().
		Str("appointment_id", id.String()).
		Str("status", string(to)).
		Msg("appointment status updated")
	return updated, nil
}
