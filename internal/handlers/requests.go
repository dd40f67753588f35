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

// RequestAppointmentRequest represents a student's appointment request.
// Either the preference lists or the specific date/time pair must be set.
type RequestAppointmentRequest struct {
	StudentID            string   `json:"student_id,omitempty"` // admin only; students always act as themselves
	PreferredDays        []string `json:"preferred_days,omitempty"`
	PreferredTimes       []string `json:"preferred_times,omitempty"`
	PreferredTherapistID string   `json:"preferred_therapist_id,omitempty"`
	SpecificDate         string   `json:"specific_date,omitempty"`
	SpecificTime         string   `json:"specific_time,omitempty"`
	Notes                string   `json:"notes,omitempty"`
}

// RequestAppointmentResponse reports the stored request and the matching outcome
type RequestAppointmentResponse struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message"`
	MatchStatus   string                 `json:"match_status"`
	Request       *models.StudentRequest `json:"request,omitempty"`
	TherapistName string                 `json:"therapist_name,omitempty"`
	Date          string                 `json:"date,omitempty"`
	StartTime     string                 `json:"start_time,omitempty"`
}

// RequestAppointment handles POST /api/slots/student/request
func RequestAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if !actor.CanRequestAppointment() {
		writeError(w, http.StatusForbidden, "Only students can request appointments")
		return
	}

	var req RequestAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	studentID := actor.ID
	studentName := actor.Name
	if actor.IsAdmin() && req.StudentID != "" {
		studentID = req.StudentID
		studentName = services.UserDisplayName(ctx, store, req.StudentID, "Student")
	}

	result, err := engine.RequestAppointment(ctx, scheduling.RequestParams{
		StudentID:            studentID,
		StudentName:          studentName,
		PreferredDays:        req.PreferredDays,
		PreferredTimes:       req.PreferredTimes,
		PreferredTherapistID: req.PreferredTherapistID,
		SpecificDate:         req.SpecificDate,
		SpecificTime:         req.SpecificTime,
		Notes:                req.Notes,
	})
	if err != nil {
		writeSchedulingError(w, err, false)
		return
	}

	auditRequestOutcome(result, actor)

	status := http.StatusCreated
	if result.MatchStatus == scheduling.MatchRejected {
		status = http.StatusOK
	}
	writeJSON(w, status, RequestAppointmentResponse{
		Success:       true,
		Message:       result.Message,
		MatchStatus:   result.MatchStatus,
		Request:       result.Request,
		TherapistName: result.TherapistName,
		Date:          result.Date,
		StartTime:     result.StartTime,
	})
}

func auditRequestOutcome(result *scheduling.RequestResult, actor scheduling.Actor) {
	action := services.AuditRequestCreated
	switch result.MatchStatus {
	case scheduling.MatchMatched, scheduling.MatchAlternateOffered:
		action = services.AuditSlotBooked
	case scheduling.MatchWaiting:
		action = services.AuditRequestWaitlist
	case scheduling.MatchRejected:
		action = services.AuditRequestRejected
	}
	services.RecordAudit(action, result.Request.AssignedSlotID, result.Request.ID.Hex(), actor.ID, string(actor.Role), result.MatchStatus)
}

// ListStudentRequestsResponse represents a listing of student requests
type ListStudentRequestsResponse struct {
	Success  bool                    `json:"success"`
	Message  string                  `json:"message,omitempty"`
	Requests []models.StudentRequest `json:"requests"`
	Total    int                     `json:"total"`
}

// ListStudentRequests handles GET /api/scheduling/student-requests (admin).
// An optional ?status= filter narrows by request status.
func ListStudentRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	statuses := []string{models.RequestPending, models.RequestWaiting, models.RequestAssigned, models.RequestRejected}
	if s := r.URL.Query().Get("status"); s != "" {
		statuses = []string{s}
	}

	requests, err := store.RequestsByStatus(ctx, statuses...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch student requests")
		return
	}
	if requests == nil {
		requests = []models.StudentRequest{}
	}
	writeJSON(w, http.StatusOK, ListStudentRequestsResponse{
		Success:  true,
		Requests: requests,
		Total:    len(requests),
	})
}

// ListStudentRequestsByStudent handles GET /api/scheduling/student-requests/student/{studentID}.
// Students may only list their own requests; admins may list anyone's.
func ListStudentRequestsByStudent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	studentID := chi.URLParam(r, "studentID")
	if !actor.IsAdmin() && actor.ID != studentID {
		writeError(w, http.StatusForbidden, "You can only view your own requests")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	requests, err := store.RequestsByStudent(ctx, studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch student requests")
		return
	}
	if requests == nil {
		requests = []models.StudentRequest{}
	}
	writeJSON(w, http.StatusOK, ListStudentRequestsResponse{
		Success:  true,
		Requests: requests,
		Total:    len(requests),
	})
}
