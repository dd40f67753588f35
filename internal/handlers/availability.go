package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/caps-platform/scheduling-backend/internal/models"
	"github.com/caps-platform/scheduling-backend/internal/scheduling"
	"github.com/caps-platform/scheduling-backend/internal/services"
)

// MarkAvailabilityRequest represents a therapist opening a time window
type MarkAvailabilityRequest struct {
	TherapistID   string   `json:"therapist_id,omitempty"` // admin only; therapists always act as themselves
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	Notes         string   `json:"notes,omitempty"`
	Recurring     bool     `json:"recurring,omitempty"`
	RecurringDays []string `json:"recurring_days,omitempty"`
}

// MarkAvailabilityResponse represents the created slot and any side effects
type MarkAvailabilityResponse struct {
	Success         bool                        `json:"success"`
	Message         string                      `json:"message"`
	Slot            *models.Slot                `json:"slot,omitempty"`
	Submission      *models.TherapistSubmission `json:"submission,omitempty"`
	AssignedStudent *models.StudentRequest      `json:"assigned_student,omitempty"`
}

// MarkAvailability handles POST /api/availability
func MarkAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !actor.CanMarkAvailability() {
		writeError(w, http.StatusForbidden, "Only therapists can mark availability")
		return
	}

	var req MarkAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	therapistID := actor.ID
	therapistName := actor.Name
	if actor.IsAdmin() && req.TherapistID != "" {
		therapistID = req.TherapistID
		therapistName = services.TherapistDisplayName(ctx, store, req.TherapistID)
	}

	result, err := engine.MarkAvailability(ctx, scheduling.AvailabilityParams{
		TherapistID:   therapistID,
		TherapistName: therapistName,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Notes:         req.Notes,
		Recurring:     req.Recurring,
		RecurringDays: req.RecurringDays,
	})
	if err != nil {
		writeSchedulingError(w, err, true)
		return
	}

	services.RecordAudit(services.AuditSlotOpened, result.Slot.ID.Hex(), "", actor.ID, string(actor.Role), req.Date+" "+req.StartTime)

	message := "Availability marked successfully"
	if result.AssignedStudent != nil {
		message = "Availability marked and assigned to a waiting student"
	}
	writeJSON(w, http.StatusCreated, MarkAvailabilityResponse{
		Success:         true,
		Message:         message,
		Slot:            result.Slot,
		Submission:      result.Submission,
		AssignedStudent: result.AssignedStudent,
	})
}
