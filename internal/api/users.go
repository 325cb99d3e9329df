package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-scheduling/internal/auth"
	"github.com/hackgods/clinic-scheduling/internal/identity"
)

func registerHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if !decodeBody(w, r, &req) {
			return
		}

		var caller *identity.Caller
		if c, ok := auth.CallerFrom(r.Context()); ok {
			caller = &c
		}

		p, err := svc.Register(r.Context(), caller, identity.RegisterInput{
			Name:       req.Name,
			Email:      req.Email,
			Identifier: req.Identifier,
			Password:   req.Password,
			Role:       req.Role,
		})
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(p))
	}
}

func loginHandler(svc *identity.Service, tokens *auth.TokenIssuer, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		p, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		token, err := tokens.Issue(p)
		if err != nil {
			handleError(w, r, log, err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: toUserResponse(p)})
	}
}

func getUserHandler(svc *identity.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		caller, _ := auth.CallerFrom(r.Context())

		p, err := svc.GetPrincipal(r.Context(), caller, id)
		if err != nil {
			handleError(w, r, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(p))
	}
}
