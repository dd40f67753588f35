package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/caps-platform/scheduling-backend/internal/middleware"
	"github.com/caps-platform/scheduling-backend/internal/scheduling"
)

// Package-level collaborators, set once at startup.
var (
	store        scheduling.Store
	engine       *scheduling.Engine
	orchestrator *scheduling.Orchestrator
)

// Init wires the handler package to its collaborators. Call before mounting routes.
func Init(s scheduling.Store, e *scheduling.Engine, o *scheduling.Orchestrator) {
	store = s
	engine = e
	orchestrator = o
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// errorResponse is the {success,message} envelope used for every failure.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// writeSchedulingError maps the typed scheduling errors onto HTTP statuses.
// Overlap conflicts from availability creation are reported as 400 rather than
// 409; callers that want that behavior use overlapAsBadRequest.
func writeSchedulingError(w http.ResponseWriter, err error, overlapAsBadRequest bool) {
	var (
		validation   *scheduling.ValidationError
		conflict     *scheduling.ConflictError
		forbidden    *scheduling.ForbiddenError
		notFound     *scheduling.NotFoundError
		invalidState *scheduling.InvalidStateError
	)
	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.Msg)
	case errors.As(err, &conflict):
		if overlapAsBadRequest {
			writeError(w, http.StatusBadRequest, conflict.Msg)
		} else {
			writeError(w, http.StatusConflict, conflict.Msg)
		}
	case errors.As(err, &forbidden):
		writeError(w, http.StatusForbidden, forbidden.Msg)
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Msg)
	case errors.As(err, &invalidState):
		writeError(w, http.StatusBadRequest, invalidState.Msg)
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// requireActor pulls the authenticated actor from the request context.
// Routes behind middleware.RequireActor always have one; the guard covers
// handlers mounted without it by mistake.
func requireActor(w http.ResponseWriter, r *http.Request) (scheduling.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return scheduling.Actor{}, false
	}
	return actor, true
}
