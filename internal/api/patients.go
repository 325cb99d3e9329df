package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/identity"
)

func listPatientsHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.ListRecords(r.Context())
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		resp := make([]PatientResponse, 0, len(recs))
		for i := range recs {
			resp = append(resp, toPatientResponse(&recs[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getPatientHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		rec, err := svc.GetRecord(r.Context(), id)
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(rec))
	}
}

func createPatientHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PatientRequest
		if !decodeBody(w, r, &req) {
			return
		}
		rec, err := svc.CreateRecord(r.Context(), identity.RecordInput(req))
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPatientResponse(rec))
	}
}

func updatePatientHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req PatientRequest
		if !decodeBody(w, r, &req) {
			return
		}
		rec, err := svc.UpdateRecord(r.Context(), id, identity.RecordInput(req))
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(rec))
	}
}

func deletePatientHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := svc.DeleteRecord(r.Context(), id); err != nil {
			handleError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
