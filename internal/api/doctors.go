package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/directory"
)

// listDoctorsHandler serves the cached directory bytes as-is.
func listDoctorsHandler(svc *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, hit, err := svc.List(r.Context())
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if hit {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

func getDoctorHandler(svc *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		p, err := svc.Get(r.Context(), id)
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func createDoctorHandler(svc *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DoctorRequest
		if !decodeBody(w, r, &req) {
			return
		}
		p, err := svc.Create(r.Context(), directory.Input(req))
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func updateDoctorHandler(svc *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var req DoctorRequest
		if !decodeBody(w, r, &req) {
			return
		}
		p, err := svc.Update(r.Context(), id, directory.Input(req))
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func deleteDoctorHandler(svc *directory.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			handleError(w, r, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
