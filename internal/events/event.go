package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const TypeAppointmentCreated = "APPOINTMENT_CREATED"

// NotificationEvent is emitted once per created booking. It only ever
// exists on the wire; the producer keeps no copy.
type NotificationEvent struct {
	Type             string    `json:"type"`
	BookingID        uuid.UUID `json:"appointmentId"`
	ScheduledAt      time.Time `json:"date"`
	ClinicalRecordID uuid.UUID `json:"patientId"`
	EmittedAt        time.Time `json:"timestamp"`
}

func NewAppointmentCreated(bookingID, clinicalRecordID uuid.UUID, scheduledAt, now time.Time) NotificationEvent {
	return NotificationEvent{
		Type:             TypeAppointmentCreated,
		BookingID:        bookingID,
		ScheduledAt:      scheduledAt.UTC(),
		ClinicalRecordID: clinicalRecordID,
		EmittedAt:        now.UTC(),
	}
}

func (e NotificationEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

var ErrMalformedEvent = errors.New("malformed notification event")

// Decode parses a channel payload. A payload without a type or booking id is
// rejected.
func Decode(payload []byte) (NotificationEvent, error) {
	var e NotificationEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return NotificationEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if e.Type == "" || e.BookingID == uuid.Nil {
		return NotificationEvent{}, fmt.Errorf("%w: missing type or appointmentId", ErrMalformedEvent)
	}
	return e, nil
}
