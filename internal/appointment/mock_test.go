package appointment

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/events"
	"github.com/hackgods/clinic-scheduling/internal/identity"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

// -- Mock Repository --

type mockRepo struct {
	bookings      map[uuid.UUID]*Booking
	records       map[uuid.UUID]*identity.ClinicalRecord
	practitioners map[uuid.UUID]*directory.Practitioner
	failWith      error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		bookings:      make(map[uuid.UUID]*Booking),
		records:       make(map[uuid.UUID]*identity.ClinicalRecord),
		practitioners: make(map[uuid.UUID]*directory.Practitioner),
	}
}

func (m *mockRepo) addRecord(identifier string) *identity.ClinicalRecord {
	r := &identity.ClinicalRecord{ID: uuid.New(), Name: "Record " + identifier, Identifier: identifier}
	m.records[r.ID] = r
	return r
}

func (m *mockRepo) addPractitioner(name string) *directory.Practitioner {
	p := &directory.Practitioner{ID: uuid.New(), Name: name, Specialty: "Cardio", License: "123456-SP"}
	m.practitioners[p.ID] = p
	return p
}

func (m *mockRepo) detail(b *Booking) *Detail {
	return &Detail{Booking: *b, Patient: m.records[b.ClinicalRecordID], Practitioner: m.practitioners[b.PractitionerID]}
}

func (m *mockRepo) CreateBooking(_ context.Context, b *Booking) (*Booking, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if _, ok := m.practitioners[b.PractitionerID]; !ok {
		return nil, directory.ErrPractitionerNotFound
	}
	if _, ok := m.records[b.ClinicalRecordID]; !ok {
		return nil, identity.ErrClinicalRecordNotFound
	}
	created := *b
	created.ID = uuid.New()
	m.bookings[created.ID] = &created
	out := created
	return &out, nil
}

func (m *mockRepo) GetBooking(_ context.Context, id uuid.UUID) (*Detail, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return m.detail(b), nil
}

func (m *mockRepo) ListBookings(_ context.Context) ([]Detail, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []Detail{}
	for _, b := range m.bookings {
		out = append(out, *m.detail(b))
	}
	return out, nil
}

func (m *mockRepo) ListBookingsByClinicalRecord(_ context.Context, recordID uuid.UUID) ([]Detail, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := []Detail{}
	for _, b := range m.bookings {
		if b.ClinicalRecordID == recordID {
			out = append(out, *m.detail(b))
		}
	}
	return out, nil
}

func (m *mockRepo) UpdateBookingStatus(_ context.Context, id uuid.UUID, from, to Status) (*Booking, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	b, ok := m.bookings[id]
	if !ok || b.Status != from {
		return nil, ErrAppointmentNotFound
	}
	b.Status = to
	out := *b
	return &out, nil
}

// -- Resolver --

type stubResolver struct {
	byCaller map[uuid.UUID]*identity.ClinicalRecord
	err      error
}

func (r *stubResolver) Resolve(_ context.Context, caller identity.Caller) (*identity.ClinicalRecord, error) {
	if caller.IsStaff() {
		return nil, identity.ErrNotApplicable
	}
	if r.err != nil {
		return nil, r.err
	}
	rec, ok := r.byCaller[caller.ID]
	if !ok {
		return nil, identity.ErrProfileMissing
	}
	return rec, nil
}

// -- Publisher --

type recordingPublisher struct {
	mu   sync.Mutex
	sent []events.NotificationEvent
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.NotificationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, ev)
	return nil
}

func (p *recordingPublisher) events() []events.NotificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.NotificationEvent(nil), p.sent...)
}
