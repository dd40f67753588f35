package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/caps-platform/scheduling-backend/internal/models"
	"github.com/caps-platform/scheduling-backend/internal/scheduling"
	"github.com/caps-platform/scheduling-backend/internal/services"
)

// ProcessPendingResponse reports a reconciliation sweep
type ProcessPendingResponse struct {
	Success   bool                      `json:"success"`
	Message   string                    `json:"message"`
	Processed int                       `json:"processed"`
	Outcomes  []scheduling.SweepOutcome `json:"outcomes"`
}

// ProcessPendingRequests handles POST /api/scheduling/process-pending-requests (admin)
func ProcessPendingRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	outcomes, err := orchestrator.ProcessPendingStudentRequests(ctx)
	if err != nil {
		writeSchedulingError(w, err, false)
		return
	}
	if outcomes == nil {
		outcomes = []scheduling.SweepOutcome{}
	}

	services.RecordAudit(services.AuditSweepRun, "", "", actor.ID, string(actor.Role), fmt.Sprintf("%d requests", len(outcomes)))
	writeJSON(w, http.StatusOK, ProcessPendingResponse{
		Success:   true,
		Message:   fmt.Sprintf("Processed %d pending requests", len(outcomes)),
		Processed: len(outcomes),
		Outcomes:  outcomes,
	})
}

// WeeklyScheduleResponse represents the seven-day calendar projection
type WeeklyScheduleResponse struct {
	Success  bool                       `json:"success"`
	Message  string                     `json:"message,omitempty"`
	Schedule *scheduling.WeeklySchedule `json:"schedule,omitempty"`
}

// GetWeeklySchedule handles GET /api/scheduling/weekly-schedule?start_date= (admin).
// start_date defaults to today.
func GetWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("start_date")
	if startDate == "" {
		startDate = time.Now().Format(scheduling.DateLayout)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	schedule, err := orchestrator.GenerateWeeklySchedule(ctx, startDate)
	if err != nil {
		writeSchedulingError(w, err, false)
		return
	}
	writeJSON(w, http.StatusOK, WeeklyScheduleResponse{Success: true, Schedule: schedule})
}

// ListSubmissionsResponse represents the therapist submissions listing
type ListSubmissionsResponse struct {
	Success     bool                         `json:"success"`
	Message     string                       `json:"message,omitempty"`
	Submissions []models.TherapistSubmission `json:"submissions"`
	Total       int                          `json:"total"`
}

// ListTherapistSubmissions handles GET /api/scheduling/therapist-submissions (admin)
func ListTherapistSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	subs, err := store.Submissions(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch therapist submissions")
		return
	}
	if subs == nil {
		subs = []models.TherapistSubmission{}
	}
	writeJSON(w, http.StatusOK, ListSubmissionsResponse{Success: true, Submissions: subs, Total: len(subs)})
}

// GetSubmissionResponse represents a single submission lookup
type GetSubmissionResponse struct {
	Success    bool                        `json:"success"`
	Message    string                      `json:"message,omitempty"`
	Submission *models.TherapistSubmission `json:"submission,omitempty"`
}

// GetTherapistSubmission handles GET /api/scheduling/therapist-submissions/{id} (admin)
func GetTherapistSubmission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	sub, err := store.SubmissionByID(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch therapist submission")
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "Therapist submission not found")
		return
	}
	writeJSON(w, http.StatusOK, GetSubmissionResponse{Success: true, Submission: sub})
}

// ProcessSubmissionResponse reports a recurring-submission expansion
type ProcessSubmissionResponse struct {
	Success bool                        `json:"success"`
	Message string                      `json:"message"`
	Result  *scheduling.ExpansionResult `json:"result,omitempty"`
}

// ProcessTherapistSubmission handles POST /api/scheduling/therapist-submissions/{id}/process (admin)
func ProcessTherapistSubmission(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := orchestrator.ProcessSubmission(ctx, id)
	if err != nil {
		writeSchedulingError(w, err, false)
		return
	}

	services.RecordAudit(services.AuditSubmissionExpand, "", id, actor.ID, string(actor.Role), fmt.Sprintf("%d slots created", len(result.Created)))
	writeJSON(w, http.StatusOK, ProcessSubmissionResponse{
		Success: true,
		Message: fmt.Sprintf("Submission expanded into %d slots", len(result.Created)),
		Result:  result,
	})
}

// CreateCancellationRequest represents a therapist asking to cancel a slot
type CreateCancellationRequest struct {
	SlotID string `json:"slot_id"`
	Reason string `json:"reason,omitempty"`
}

// CancellationResponse represents a created or fetched cancellation request
type CancellationResponse struct {
	Success      bool                        `json:"success"`
	Message      string                      `json:"message"`
	Cancellation *models.CancellationRequest `json:"cancellation,omitempty"`
}

// CreateCancellation handles POST /api/scheduling/cancellations (therapist|admin).
// The slot is not cancelled here; an admin processes the request later.
func CreateCancellation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req CreateCancellationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SlotID == "" {
		writeError(w, http.StatusBadRequest, "slot_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slot, err := store.SlotByID(ctx, req.SlotID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch slot")
		return
	}
	if slot == nil {
		writeError(w, http.StatusNotFound, "Slot not found")
		return
	}
	if !actor.CanCancelSlot(slot) {
		writeError(w, http.StatusForbidden, "You can only request cancellation of your own slots")
		return
	}

	now := time.Now()
	cr := &models.CancellationRequest{
		CreatedAt:     now,
		UpdatedAt:     now,
		SlotID:        req.SlotID,
		TherapistID:   slot.TherapistID,
		TherapistName: slot.TherapistName,
		StudentID:     slot.StudentID,
		StudentName:   slot.StudentName,
		Reason:        req.Reason,
		Status:        models.SubmissionPending,
	}
	if err := store.CreateCancellation(ctx, cr); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create cancellation request")
		return
	}

	writeJSON(w, http.StatusCreated, CancellationResponse{
		Success:      true,
		Message:      "Cancellation request submitted",
		Cancellation: cr,
	})
}

// ListCancellationsResponse represents the cancellation requests listing
type ListCancellationsResponse struct {
	Success       bool                         `json:"success"`
	Message       string                       `json:"message,omitempty"`
	Cancellations []models.CancellationRequest `json:"cancellations"`
	Total         int                          `json:"total"`
}

// ListCancellations handles GET /api/scheduling/cancellations (admin)
func ListCancellations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	crs, err := store.Cancellations(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch cancellation requests")
		return
	}
	if crs == nil {
		crs = []models.CancellationRequest{}
	}
	writeJSON(w, http.StatusOK, ListCancellationsResponse{Success: true, Cancellations: crs, Total: len(crs)})
}

// ProcessCancellationResponse reports a processed cancellation
type ProcessCancellationResponse struct {
	Success bool                            `json:"success"`
	Message string                          `json:"message"`
	Outcome *scheduling.CancellationOutcome `json:"outcome,omitempty"`
}

// ProcessCancellation handles POST /api/scheduling/cancellations/{id}/process (admin).
// Cancelling through this path reopens the freed window and backfills the
// earliest waiting student.
func ProcessCancellation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	outcome, err := orchestrator.ProcessCancellationRequest(ctx, id)
	if err != nil {
		writeSchedulingError(w, err, false)
		return
	}

	services.RecordAudit(services.AuditCancellation, outcome.Cancellation.SlotID, id, actor.ID, string(actor.Role), "")

	message := "Cancellation processed"
	if outcome.Backfilled != nil {
		message = "Cancellation processed; a waiting student was assigned to the reopened slot"
	}
	writeJSON(w, http.StatusOK, ProcessCancellationResponse{
		Success: true,
		Message: message,
		Outcome: outcome,
	})
}
