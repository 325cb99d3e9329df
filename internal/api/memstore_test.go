package api

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/events"
	"github.com/hackgods/clinic-scheduling/internal/identity"
)

// memStore backs every repository with ordered slices so list output is
// stable between requests.
type memStore struct {
	mu            sync.Mutex
	principals    []*identity.Principal
	records       []*identity.ClinicalRecord
	practitioners []*directory.Practitioner
	bookings      []*appointment.Booking
}

var stamp = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// -- identity.Repository --

func (s *memStore) GetPrincipalByID(_ context.Context, id uuid.UUID) (*identity.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.principals {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, identity.ErrPrincipalNotFound
}

func (s *memStore) GetPrincipalByEmail(_ context.Context, email string) (*identity.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.principals {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, identity.ErrPrincipalNotFound
}

func (s *memStore) CreatePrincipal(_ context.Context, p *identity.Principal, placeholder *identity.ClinicalRecord) (*identity.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.principals {
		if existing.Email == p.Email {
			return nil, identity.ErrEmailTaken
		}
		if existing.Identifier == p.Identifier {
			return nil, identity.ErrIdentifierTaken
		}
	}
	if placeholder != nil {
		var linked *identity.ClinicalRecord
		for _, r := range s.records {
			if r.Identifier == placeholder.Identifier {
				linked = r
			}
		}
		if linked == nil {
			cp := *placeholder
			cp.CreatedAt, cp.UpdatedAt = stamp, stamp
			s.records = append(s.records, &cp)
			linked = &cp
		}
		id := linked.ID
		p.ClinicalRecordID = &id
	}
	cp := *p
	cp.CreatedAt, cp.UpdatedAt = stamp, stamp
	s.principals = append(s.principals, &cp)
	out := cp
	return &out, nil
}

func (s *memStore) GetClinicalRecordByID(_ context.Context, id uuid.UUID) (*identity.ClinicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.record(id); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, identity.ErrClinicalRecordNotFound
}

func (s *memStore) GetClinicalRecordByIdentifier(_ context.Context, identifier string) (*identity.ClinicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Identifier == identifier {
			cp := *r
			return &cp, nil
		}
	}
	return nil, identity.ErrClinicalRecordNotFound
}

func (s *memStore) ListClinicalRecords(_ context.Context) ([]identity.ClinicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]identity.ClinicalRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out, nil
}

func (s *memStore) CreateClinicalRecord(_ context.Context, rec *identity.ClinicalRecord) (*identity.ClinicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.Identifier == rec.Identifier {
			return nil, identity.ErrIdentifierTaken
		}
	}
	cp := *rec
	cp.CreatedAt, cp.UpdatedAt = stamp, stamp
	s.records = append(s.records, &cp)
	out := cp
	return &out, nil
}

func (s *memStore) UpdateClinicalRecord(_ context.Context, rec *identity.ClinicalRecord) (*identity.ClinicalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(rec.ID)
	if r == nil {
		return nil, identity.ErrClinicalRecordNotFound
	}
	r.Name, r.Phone, r.Address = rec.Name, rec.Phone, rec.Address
	out := *r
	return &out, nil
}

func (s *memStore) DeleteClinicalRecord(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.dropBookings(func(b *appointment.Booking) bool { return b.ClinicalRecordID == id })
			return nil
		}
	}
	return identity.ErrClinicalRecordNotFound
}

func (s *memStore) record(id uuid.UUID) *identity.ClinicalRecord {
	for _, r := range s.records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// -- directory.Repository --

func (s *memStore) ListPractitioners(_ context.Context) ([]directory.Practitioner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]directory.Practitioner, 0, len(s.practitioners))
	for _, p := range s.practitioners {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memStore) GetPractitionerByID(_ context.Context, id uuid.UUID) (*directory.Practitioner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.practitioner(id); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, directory.ErrPractitionerNotFound
}

func (s *memStore) CreatePractitioner(_ context.Context, p *directory.Practitioner) (*directory.Practitioner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.practitioners {
		if existing.License == p.License {
			return nil, directory.ErrLicenseTaken
		}
	}
	cp := *p
	cp.CreatedAt, cp.UpdatedAt = stamp, stamp
	s.practitioners = append(s.practitioners, &cp)
	out := cp
	return &out, nil
}

func (s *memStore) UpdatePractitioner(_ context.Context, p *directory.Practitioner) (*directory.Practitioner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.practitioner(p.ID)
	if existing == nil {
		return nil, directory.ErrPractitionerNotFound
	}
	for _, other := range s.practitioners {
		if other.ID != p.ID && other.License == p.License {
			return nil, directory.ErrLicenseTaken
		}
	}
	existing.Name, existing.Specialty, existing.License = p.Name, p.Specialty, p.License
	out := *existing
	return &out, nil
}

func (s *memStore) DeletePractitioner(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.practitioners {
		if p.ID == id {
			s.practitioners = append(s.practitioners[:i], s.practitioners[i+1:]...)
			s.dropBookings(func(b *appointment.Booking) bool { return b.PractitionerID == id })
			return nil
		}
	}
	return directory.ErrPractitionerNotFound
}

func (s *memStore) practitioner(id uuid.UUID) *directory.Practitioner {
	for _, p := range s.practitioners {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// -- appointment.Repository --

func (s *memStore) CreateBooking(_ context.Context, b *appointment.Booking) (*appointment.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.practitioner(b.PractitionerID) == nil {
		return nil, directory.ErrPractitionerNotFound
	}
	if s.record(b.ClinicalRecordID) == nil {
		return nil, identity.ErrClinicalRecordNotFound
	}
	cp := *b
	cp.ID = uuid.New()
	cp.CreatedAt, cp.UpdatedAt = stamp, stamp
	s.bookings = append(s.bookings, &cp)
	out := cp
	return &out, nil
}

func (s *memStore) GetBooking(_ context.Context, id uuid.UUID) (*appointment.Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID == id {
			return s.detail(b), nil
		}
	}
	return nil, appointment.ErrAppointmentNotFound
}

func (s *memStore) ListBookings(_ context.Context) ([]appointment.Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []appointment.Detail{}
	for _, b := range s.bookings {
		out = append(out, *s.detail(b))
	}
	return out, nil
}

func (s *memStore) ListBookingsByClinicalRecord(_ context.Context, recordID uuid.UUID) ([]appointment.Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []appointment.Detail{}
	for _, b := range s.bookings {
		if b.ClinicalRecordID == recordID {
			out = append(out, *s.detail(b))
		}
	}
	return out, nil
}

func (s *memStore) UpdateBookingStatus(_ context.Context, id uuid.UUID, from, to appointment.Status) (*appointment.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.ID == id && b.Status == from {
			b.Status = to
			out := *b
			return &out, nil
		}
	}
	return nil, appointment.ErrAppointmentNotFound
}

// dropBookings mirrors ON DELETE CASCADE on the appointments foreign keys.
func (s *memStore) dropBookings(match func(*appointment.Booking) bool) {
	kept := s.bookings[:0]
	for _, b := range s.bookings {
		if !match(b) {
			kept = append(kept, b)
		}
	}
	s.bookings = kept
}

func (s *memStore) detail(b *appointment.Booking) *appointment.Detail {
	d := &appointment.Detail{Booking: *b}
	if r := s.record(b.ClinicalRecordID); r != nil {
		cp := *r
		d.Patient = &cp
	}
	if p := s.practitioner(b.PractitionerID); p != nil {
		cp := *p
		d.Practitioner = &cp
	}
	return d
}

// -- events.Publisher --

type recordingPublisher struct {
	mu   sync.Mutex
	sent []events.NotificationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, ev)
	return nil
}

func (p *recordingPublisher) events() []events.NotificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.NotificationEvent(nil), p.sent...)
}
