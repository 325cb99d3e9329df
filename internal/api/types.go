package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/directory"
	"github.com/hackgods/clinic-scheduling/internal/identity"
)

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Identifier       string     `json:"identifier"`
	Role             string     `json:"role"`
	ClinicalRecordID *uuid.UUID `json:"clinicalRecordId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type PatientRequest struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

type PatientResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Identifier string    `json:"identifier"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type DoctorRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	License   string `json:"license"`
}

type CreateAppointmentRequest struct {
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
	PatientID string `json:"patientId"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID        uuid.UUID               `json:"id"`
	PatientID uuid.UUID               `json:"patientId"`
	DoctorID  uuid.UUID               `json:"doctorId"`
	Date      time.Time               `json:"date"`
	Status    string                  `json:"status"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
	Patient   *PatientResponse        `json:"patient,omitempty"`
	Doctor    *directory.Practitioner `json:"doctor,omitempty"`
}

type AppointmentEnvelope struct {
	Message     string              `json:"message"`
	Appointment AppointmentResponse `json:"appointment"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toUserResponse(p *identity.Principal) UserResponse {
	return UserResponse{
		ID:               p.ID,
		Name:             p.Name,
		Email:            p.Email,
		Identifier:       p.Identifier,
		Role:             string(p.Role),
		ClinicalRecordID: p.ClinicalRecordID,
		CreatedAt:        p.CreatedAt,
	}
}

func toPatientResponse(rec *identity.ClinicalRecord) PatientResponse {
	return PatientResponse{
		ID:         rec.ID,
		Name:       rec.Name,
		Identifier: rec.Identifier,
		Phone:      rec.Phone,
		Address:    rec.Address,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func toAppointmentResponse(b *appointment.Booking) AppointmentResponse {
	return AppointmentResponse{
		ID:        b.ID,
		PatientID: b.ClinicalRecordID,
		DoctorID:  b.PractitionerID,
		Date:      b.ScheduledAt,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

func toAppointmentDetailResponse(d *appointment.Detail) AppointmentResponse {
	resp := toAppointmentResponse(&d.Booking)
	if d.Patient != nil {
		p := toPatientResponse(d.Patient)
		resp.Patient = &p
	}
	resp.Doctor = d.Practitioner
	return resp
}
