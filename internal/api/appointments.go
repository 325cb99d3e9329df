package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/auth"
)

// parseOptionalID treats an empty string as absent.
func parseOptionalID(s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

// dateLayouts accepts RFC 3339 and the browser datetime-local form, which
// carries no offset and is read as UTC.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseDate(s string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func createAppointmentHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		doctorID, err := parseOptionalID(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctorId must be a valid UUID")
			return
		}
		patientID, err := parseOptionalID(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patientId must be a valid UUID")
			return
		}
		var date time.Time
		if req.Date != "" {
			date, err = parseDate(req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "date must be an RFC 3339 or YYYY-MM-DDTHH:MM timestamp")
				return
			}
		}

		caller, _ := auth.CallerFrom(r.Context())
		b, err := svc.Create(r.Context(), caller, appointment.CreateInput{
			PractitionerID:   doctorID,
			ScheduledAt:      date,
			ClinicalRecordID: patientID,
		})
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, AppointmentEnvelope{
			Message:     "Appointment created successfully",
			Appointment: toAppointmentResponse(b),
		})
	}
}

func listAppointmentsHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, _ := auth.CallerFrom(r.Context())

		details, err := svc.List(r.Context(), caller)
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		resp := make([]AppointmentResponse, 0, len(details))
		for i := range details {
			resp = append(resp, toAppointmentDetailResponse(&details[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getAppointmentHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		caller, _ := auth.CallerFrom(r.Context())

		d, err := svc.Get(r.Context(), caller, id)
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentDetailResponse(d))
	}
}

func updateAppointmentStatusHandler(svc *appointment.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req UpdateStatusRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Status == "" {
			writeError(w, http.StatusBadRequest, "missing_fields", "status is required")
			return
		}

		b, err := svc.SetStatus(r.Context(), id, appointment.Status(req.Status))
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, AppointmentEnvelope{
			Message:     "Status updated successfully",
			Appointment: toAppointmentResponse(b),
		})
	}
}
