package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/caps-platform/scheduling-backend/internal/models"
	"github.com/caps-platform/scheduling-backend/internal/scheduling"
	"github.com/caps-platform/scheduling-backend/internal/services"
)

// SlotView is a slot as rendered to clients. Waiting specific-date requests
// are projected into the listing as virtual slots flagged isWaitlisted; those
// never exist in the slot store.
type SlotView struct {
	models.Slot
	IsWaitlisted bool `json:"isWaitlisted,omitempty"`
}

// StatusWaitlisted is the view-only status of virtual waitlist entries. It is
// distinct from every stored slot status and is never written to the store.
const StatusWaitlisted = "waitlisted"

// ListSlotsResponse represents the slot listing
type ListSlotsResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Slots   []SlotView `json:"slots"`
	Total   int        `json:"total"`
}

// waitlistedView renders a waiting request as a virtual slot. The hour-long
// window and the placeholder therapist name match what the student asked for,
// not any stored slot.
func waitlistedView(ctx context.Context, req *models.StudentRequest) SlotView {
	name := services.AnyTherapistName
	if req.PreferredTherapistID != "" {
		name = services.TherapistDisplayName(ctx, store, req.PreferredTherapistID)
	}
	return SlotView{
		Slot: models.Slot{
			ID:            req.ID,
			CreatedAt:     req.CreatedAt,
			UpdatedAt:     req.UpdatedAt,
			Date:          req.RequestedDate,
			Day:           scheduling.DayCode(req.RequestedDate),
			StartTime:     req.RequestedTime,
			EndTime:       scheduling.AddOneHour(req.RequestedTime),
			TherapistID:   req.PreferredTherapistID,
			TherapistName: name,
			StudentID:     req.StudentID,
			StudentName:   req.StudentName,
			Status:        StatusWaitlisted,
			Notes:         req.Notes,
		},
		IsWaitlisted: true,
	}
}

// ListSlots handles GET /api/slots. Listings are role-scoped: students see
// their own bookings plus virtual waitlisted entries, therapists their own
// windows, admins everything.
func ListSlots(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := scheduling.SlotFilter{
		DateFrom:    q.Get("start_date"),
		DateTo:      q.Get("end_date"),
		TherapistID: q.Get("therapist_id"),
		StudentID:   q.Get("student_id"),
		Status:      q.Get("status"),
	}
	switch actor.Role {
	case scheduling.RoleTherapist:
		filter.TherapistID = actor.ID
	case scheduling.RoleStudent:
		filter.StudentID = actor.ID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slots, err := store.Slots(ctx, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch slots")
		return
	}

	views := make([]SlotView, 0, len(slots))
	for i := range slots {
		views = append(views, SlotView{Slot: slots[i]})
	}

	if actor.Role == scheduling.RoleStudent {
		requests, err := store.RequestsByStudent(ctx, actor.ID)
		if err == nil {
			for i := range requests {
				req := requests[i]
				if req.Status == models.RequestWaiting && req.RequestedDate != "" && req.RequestedTime != "" {
					views = append(views, waitlistedView(ctx, &req))
				}
			}
		}
	}

	writeJSON(w, http.StatusOK, ListSlotsResponse{
		Success: true,
		Slots:   views,
		Total:   len(views),
	})
}

// GetSlotResponse represents a single slot lookup
type GetSlotResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Slot    *SlotView `json:"slot,omitempty"`
}

// GetSlot handles GET /api/slots/{id}. IDs that do not name a stored slot are
// tried as student request IDs, so students can look up their own virtual
// waitlisted entries.
func GetSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slot, err := store.SlotByID(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch slot")
		return
	}
	if slot != nil {
		if !actor.CanSeeSlot(slot) {
			writeError(w, http.StatusForbidden, "You do not have permission to view this slot")
			return
		}
		writeJSON(w, http.StatusOK, GetSlotResponse{Success: true, Slot: &SlotView{Slot: *slot}})
		return
	}

	req, err := store.RequestByID(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch slot")
		return
	}
	if req != nil && req.Status == models.RequestWaiting && req.RequestedDate != "" {
		if !actor.IsAdmin() && actor.ID != req.StudentID {
			writeError(w, http.StatusForbidden, "You do not have permission to view this slot")
			return
		}
		view := waitlistedView(ctx, req)
		writeJSON(w, http.StatusOK, GetSlotResponse{Success: true, Slot: &view})
		return
	}

	writeError(w, http.StatusNotFound, "Slot not found")
}

// CancelSlotRequest represents a direct slot cancellation
type CancelSlotRequest struct {
	Reason string `json:"reason,omitempty"`
}

// SlotActionResponse represents the outcome of a slot state change
type SlotActionResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Slot    *models.Slot `json:"slot,omitempty"`
}

// CancelSlot handles POST /api/slots/{id}/cancel. The freed window is not
// reopened; use a cancellation request when waiting students should be
// backfilled.
func CancelSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var req CancelSlotRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slot, err := engine.CancelSlot(ctx, actor, id, req.Reason)
	if err != nil {
		writeSchedulingError(w, err, false)
		return
	}

	services.RecordAudit(services.AuditSlotCancelled, id, "", actor.ID, string(actor.Role), req.Reason)
	writeJSON(w, http.StatusOK, SlotActionResponse{
		Success: true,
		Message: "Slot cancelled successfully",
		Slot:    slot,
	})
}

// CompleteSlot handles POST /api/slots/{id}/complete
func CompleteSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slot, err := engine.MarkSlotCompleted(ctx, actor, id)
	if err != nil {
		writeSchedulingError(w, err, false)
		return
	}

	services.RecordAudit(services.AuditSlotCompleted, id, "", actor.ID, string(actor.Role), "")
	writeJSON(w, http.StatusOK, SlotActionResponse{
		Success: true,
		Message: "Slot marked as completed",
		Slot:    slot,
	})
}

// AssignSlotRequest represents an admin assigning a student to a slot
type AssignSlotRequest struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name,omitempty"`
}

// AssignSlot handles POST /api/slots/{id}/assign (admin override of matching)
func AssignSlot(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	var req AssignSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	studentName := req.StudentName
	if studentName == "" {
		studentName = services.UserDisplayName(ctx, store, req.StudentID, "Student")
	}

	slot, err := engine.AssignStudentToSlot(ctx, actor, id, req.StudentID, studentName)
	if err != nil {
		writeSchedulingError(w, err, false)
		return
	}

	services.RecordAudit(services.AuditSlotAssigned, id, "", actor.ID, string(actor.Role), req.StudentID)
	writeJSON(w, http.StatusOK, SlotActionResponse{
		Success: true,
		Message: "Student assigned to slot",
		Slot:    slot,
	})
}
