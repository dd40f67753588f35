package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/caps-platform/scheduling-backend/internal/scheduling"
	"github.com/caps-platform/scheduling-backend/internal/services"
)

// CreateSessionRequest represents the identity service minting an actor session
type CreateSessionRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// CreateSessionResponse returns the minted session token
type CreateSessionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// CreateSession handles POST /api/internal/sessions. Gated by the internal
// API key; this backend never authenticates end users itself.
func CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if !scheduling.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "role must be student, therapist, or admin")
		return
	}

	token, err := services.CreateActorSession(req.UserID, req.Name, req.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		Success: true,
		Message: "Session created",
		Token:   token,
	})
}

// DeleteSession handles POST /api/internal/sessions/revoke. Gated by the
// internal API key.
func DeleteSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := services.InvalidateActorSession(req.Token); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to revoke session")
		return
	}
	writeJSON(w, http.StatusOK, CreateSessionResponse{Success: true, Message: "Session revoked"})
}
