package scheduling

import (
	"context"
	"time"

	"github.com/caps-platform/scheduling-backend/internal/models"
)

// Match status values returned to appointment requests.
const (
	MatchMatched          = "matched"
	MatchWaiting          = "waiting"
	MatchAlternateOffered = "alternate_offered"
	MatchRejected         = "rejected"
	MatchPending          = "pending"
)

// Engine reconciles therapist availability with student requests. All
// matching is synchronous and request-triggered; the store's conditional
// updates are the only concurrency control, so the loser of a booking race
// gets a ConflictError or a rejected request, never corrupted state.
type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// AvailabilityParams describes a therapist opening a time window.
type AvailabilityParams struct {
	TherapistID   string
	TherapistName string
	Date          string // YYYY-MM-DD
	StartTime     string // HH:MM
	EndTime       string
	Notes         string
	Recurring     bool
	RecurringDays []string
}

// AvailabilityResult reports the created slot, the recurring submission (if
// requested) and the waiting student auto-assigned to the slot (if any).
type AvailabilityResult struct {
	Slot            *models.Slot
	Submission      *models.TherapistSubmission
	AssignedStudent *models.StudentRequest
}

// MarkAvailability opens a slot for the therapist. If a student is already
// waiting for this exact window the slot is created pre-booked to the
// earliest such request (FIFO); otherwise it is created available. With the
// recurring flag set a pending TherapistSubmission is recorded for later
// expansion - no future slots are created here.
func (e *Engine) MarkAvailability(ctx context.Context, p AvailabilityParams) (*AvailabilityResult, error) {
	if p.Date == "" || p.StartTime == "" || p.EndTime == "" {
		return nil, &ValidationError{Msg: "date, start time, and end time are required"}
	}
	if p.TherapistID == "" {
		return nil, &ValidationError{Msg: "therapist is required"}
	}

	// Overlap check against every non-cancelled slot for this therapist/date.
	existing, err := e.store.Slots(ctx, SlotFilter{Date: p.Date, TherapistID: p.TherapistID})
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].Status == models.SlotCancelled {
			continue
		}
		if Overlaps(p.StartTime, p.EndTime, existing[i].StartTime, existing[i].EndTime) {
			return nil, &ConflictError{Msg: "this time slot overlaps with your existing availability"}
		}
	}

	waiting, err := e.store.WaitingRequests(ctx, p.TherapistID, p.Date, p.StartTime)
	if err != nil {
		return nil, err
	}

	now := e.now()
	slot := &models.Slot{
		CreatedAt:     now,
		UpdatedAt:     now,
		Date:          p.Date,
		Day:           DayCode(p.Date),
		StartTime:     p.StartTime,
		EndTime:       p.EndTime,
		TherapistID:   p.TherapistID,
		TherapistName: p.TherapistName,
		Status:        models.SlotAvailable,
		Notes:         p.Notes,
	}

	result := &AvailabilityResult{}

	// Earliest waiting request wins the new slot; everyone else stays waiting.
	if len(waiting) > 0 {
		first := waiting[0]
		slot.StudentID = first.StudentID
		slot.StudentName = first.StudentName
		slot.Status = models.SlotBooked

		if err := e.store.CreateSlot(ctx, slot); err != nil {
			return nil, err
		}
		assigned := models.RequestAssigned
		slotID := slot.ID.Hex()
		if err := e.store.UpdateRequest(ctx, first.ID.Hex(), RequestUpdate{
			Status:         &assigned,
			AssignedSlotID: &slotID,
		}); err != nil {
			return nil, err
		}
		first.Status = assigned
		first.AssignedSlotID = slotID
		result.AssignedStudent = &first
	} else {
		if err := e.store.CreateSlot(ctx, slot); err != nil {
			return nil, err
		}
	}
	result.Slot = slot

	if p.Recurring && len(p.RecurringDays) > 0 {
		sub := &models.TherapistSubmission{
			CreatedAt:     now,
			UpdatedAt:     now,
			TherapistID:   p.TherapistID,
			TherapistName: p.TherapistName,
			Date:          p.Date,
			Day:           DayCode(p.Date),
			StartTime:     p.StartTime,
			EndTime:       p.EndTime,
			IsRecurring:   true,
			RecurringDays: p.RecurringDays,
			Status:        models.SubmissionPending,
			Notes:         p.Notes,
		}
		if err := e.store.CreateSubmission(ctx, sub); err != nil {
			return nil, err
		}
		result.Submission = sub
	}

	return result, nil
}

// RequestParams describes a student asking for an appointment. Either the
// preference lists or the specific date/time pair must be set.
type RequestParams struct {
	StudentID            string
	StudentName          string
	PreferredDays        []string
	PreferredTimes       []string
	PreferredTherapistID string
	SpecificDate         string
	SpecificTime         string
	Notes                string
}

// RequestResult is the outcome of a matching attempt. TherapistName, Date and
// StartTime are filled when a slot was booked.
type RequestResult struct {
	Request       *models.StudentRequest
	MatchStatus   string
	TherapistName string
	Date          string
	StartTime     string
	Message       string
}

// RequestAppointment persists the request and immediately runs the matching
// search against the slot store.
func (e *Engine) RequestAppointment(ctx context.Context, p RequestParams) (*RequestResult, error) {
	hasPreferences := len(p.PreferredDays) > 0 && len(p.PreferredTimes) > 0
	hasSpecific := p.SpecificDate != "" && p.SpecificTime != ""
	if !hasPreferences && !hasSpecific {
		return nil, &ValidationError{Msg: "either preferred availability or specific date/time are required"}
	}
	if p.StudentID == "" {
		return nil, &ValidationError{Msg: "student is required"}
	}

	now := e.now()
	req := &models.StudentRequest{
		CreatedAt:            now,
		UpdatedAt:            now,
		StudentID:            p.StudentID,
		StudentName:          p.StudentName,
		PreferredDays:        p.PreferredDays,
		PreferredTimes:       p.PreferredTimes,
		PreferredTherapistID: p.PreferredTherapistID,
		RequestedDate:        p.SpecificDate,
		RequestedTime:        p.SpecificTime,
		WaitingForTherapist:  hasSpecific,
		Status:               models.RequestPending,
		Notes:                p.Notes,
	}
	if err := e.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	return e.match(ctx, req)
}

// Rematch re-runs the matching search for an already persisted request.
// Used by the reconciliation sweep, where new slots may have appeared since
// the request was filed.
func (e *Engine) Rematch(ctx context.Context, req *models.StudentRequest) (*RequestResult, error) {
	return e.match(ctx, req)
}

func (e *Engine) match(ctx context.Context, req *models.StudentRequest) (*RequestResult, error) {
	// Case A: one exact slot was asked for.
	if req.RequestedDate != "" && req.RequestedTime != "" && req.PreferredTherapistID != "" && req.WaitingForTherapist {
		return e.matchSpecific(ctx, req)
	}
	// Case B: preference-based search.
	return e.matchPreferences(ctx, req)
}

// matchSpecific handles a request for one exact (therapist, date, time) slot.
// A booked slot rejects the request outright rather than silently waitlisting
// the student behind someone else's appointment. Cancelled or completed slots
// count as absent: the window must be freshly reopened before anyone waiting
// on it is served.
func (e *Engine) matchSpecific(ctx context.Context, req *models.StudentRequest) (*RequestResult, error) {
	slots, err := e.store.Slots(ctx, SlotFilter{
		Date:        req.RequestedDate,
		StartTime:   req.RequestedTime,
		TherapistID: req.PreferredTherapistID,
	})
	if err != nil {
		return nil, err
	}

	var booked, available *models.Slot
	for i := range slots {
		switch slots[i].Status {
		case models.SlotBooked:
			booked = &slots[i]
		case models.SlotAvailable:
			available = &slots[i]
		}
	}

	if booked != nil {
		if err := e.setRequestStatus(ctx, req, models.RequestRejected); err != nil {
			return nil, err
		}
		return &RequestResult{
			Request:     req,
			MatchStatus: MatchRejected,
			Message:     "This slot is already booked. Please try a different time or therapist.",
		}, nil
	}

	if available != nil {
		won, res, err := e.bookAndAssign(ctx, req, available)
		if err != nil {
			return nil, err
		}
		if won {
			return res, nil
		}
		// Lost the race: first writer wins, this request is rejected.
		if err := e.setRequestStatus(ctx, req, models.RequestRejected); err != nil {
			return nil, err
		}
		return &RequestResult{
			Request:     req,
			MatchStatus: MatchRejected,
			Message:     "This slot was booked a moment ago. Please try a different time or therapist.",
		}, nil
	}

	// Slot doesn't exist yet: park the request until the therapist opens it.
	if req.Status != models.RequestWaiting {
		if err := e.setRequestStatus(ctx, req, models.RequestWaiting); err != nil {
			return nil, err
		}
	}
	return &RequestResult{
		Request:     req,
		MatchStatus: MatchWaiting,
		Message:     "You have been placed on the waiting list for this slot. Once the therapist marks it as available, you may be assigned.",
	}, nil
}

// matchPreferences runs the two-pass preference search. Pass 1 scans the
// preferred therapist's slots over preferred_days x preferred_times in list
// order; the first bookable hit wins. If the full pass finds nothing, the
// first (day,time) pair that had no slot record at all becomes a waiting
// fallback. Only a request still pending after pass 1 goes to pass 2, which
// accepts any therapist's available slot (alternate_offered). The first
// resolved state wins and is never overwritten by later pairs.
func (e *Engine) matchPreferences(ctx context.Context, req *models.StudentRequest) (*RequestResult, error) {
	now := e.now()

	type pair struct{ date, t string }
	var waitingFallback *pair

	if req.PreferredTherapistID != "" {
		for _, day := range req.PreferredDays {
			for _, tm := range req.PreferredTimes {
				date, ok := NextDateForWeekday(day, now)
				if !ok {
					continue
				}
				slots, err := e.store.Slots(ctx, SlotFilter{
					Date:        date,
					StartTime:   tm,
					TherapistID: req.PreferredTherapistID,
				})
				if err != nil {
					return nil, err
				}
				if len(slots) == 0 {
					if waitingFallback == nil {
						waitingFallback = &pair{date: date, t: tm}
					}
					continue
				}
				for i := range slots {
					if slots[i].Status != models.SlotAvailable {
						continue
					}
					won, res, err := e.bookAndAssign(ctx, req, &slots[i])
					if err != nil {
						return nil, err
					}
					if won {
						return res, nil
					}
				}
			}
		}
	}

	if waitingFallback != nil {
		waiting := models.RequestWaiting
		wft := true
		if err := e.store.UpdateRequest(ctx, req.ID.Hex(), RequestUpdate{
			Status:              &waiting,
			RequestedDate:       &waitingFallback.date,
			RequestedTime:       &waitingFallback.t,
			WaitingForTherapist: &wft,
		}); err != nil {
			return nil, err
		}
		req.Status = waiting
		req.RequestedDate = waitingFallback.date
		req.RequestedTime = waitingFallback.t
		req.WaitingForTherapist = true
		return &RequestResult{
			Request:     req,
			MatchStatus: MatchWaiting,
			Message:     "No matching slot yet. You have been placed on the waiting list for your first preference.",
		}, nil
	}

	// Pass 2: any available slot, any therapist, same iteration order.
	for _, day := range req.PreferredDays {
		for _, tm := range req.PreferredTimes {
			date, ok := NextDateForWeekday(day, now)
			if !ok {
				continue
			}
			slots, err := e.store.Slots(ctx, SlotFilter{
				Date:      date,
				StartTime: tm,
				Status:    models.SlotAvailable,
			})
			if err != nil {
				return nil, err
			}
			for i := range slots {
				won, res, err := e.bookAndAssign(ctx, req, &slots[i])
				if err != nil {
					return nil, err
				}
				if won {
					res.MatchStatus = MatchAlternateOffered
					return res, nil
				}
			}
		}
	}

	// Unresolved: the student retries, or the admin sweep picks it up later.
	return &RequestResult{Request: req, MatchStatus: MatchPending}, nil
}

// bookAndAssign atomically books the slot for the request's student and, on
// success, marks the request assigned. won is false when the conditional
// booking lost a race and the caller should keep searching.
func (e *Engine) bookAndAssign(ctx context.Context, req *models.StudentRequest, slot *models.Slot) (won bool, _ *RequestResult, _ error) {
	updated, ok, err := e.store.BookSlot(ctx, slot.ID.Hex(), req.StudentID, req.StudentName)
	if err != nil {
		return false, nil, err
	}
	if !ok {
		return false, nil, nil
	}

	assigned := models.RequestAssigned
	slotID := updated.ID.Hex()
	if err := e.store.UpdateRequest(ctx, req.ID.Hex(), RequestUpdate{
		Status:         &assigned,
		AssignedSlotID: &slotID,
	}); err != nil {
		return false, nil, err
	}
	req.Status = assigned
	req.AssignedSlotID = slotID

	return true, &RequestResult{
		Request:       req,
		MatchStatus:   MatchMatched,
		TherapistName: updated.TherapistName,
		Date:          updated.Date,
		StartTime:     updated.StartTime,
	}, nil
}

func (e *Engine) setRequestStatus(ctx context.Context, req *models.StudentRequest, status string) error {
	if err := e.store.UpdateRequest(ctx, req.ID.Hex(), RequestUpdate{Status: &status}); err != nil {
		return err
	}
	req.Status = status
	return nil
}

// CancelSlot cancels a slot outright. The student assignment is cleared
// unconditionally and the reason recorded in the notes. The freed window is
// NOT re-matched against the waitlist; a fresh MarkAvailability call reopens
// it.
func (e *Engine) CancelSlot(ctx context.Context, actor Actor, slotID, reason string) (*models.Slot, error) {
	slot, err := e.store.SlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, &NotFoundError{Msg: "slot not found"}
	}
	if !actor.CanCancelSlot(slot) {
		return nil, &ForbiddenError{Msg: "unauthorized to cancel this slot"}
	}
	return e.store.CancelSlot(ctx, slotID, reason)
}

// MarkSlotCompleted transitions a past slot to its terminal completed state.
func (e *Engine) MarkSlotCompleted(ctx context.Context, actor Actor, slotID string) (*models.Slot, error) {
	slot, err := e.store.SlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, &NotFoundError{Msg: "slot not found"}
	}
	if !actor.CanCompleteSlot(slot) {
		return nil, &ForbiddenError{Msg: "unauthorized to mark this slot as completed"}
	}

	start, err := SlotStart(slot.Date, slot.StartTime, e.now().Location())
	if err != nil {
		return nil, &InvalidStateError{Msg: "slot has an invalid date or time"}
	}
	if start.After(e.now()) {
		return nil, &InvalidStateError{Msg: "cannot mark a future slot as completed"}
	}

	return e.store.CompleteSlot(ctx, slotID)
}

// AssignStudentToSlot is the admin override that bypasses the matching
// search. The slot must still be available; the conditional booking turns a
// concurrent winner into a ConflictError here.
func (e *Engine) AssignStudentToSlot(ctx context.Context, actor Actor, slotID, studentID, studentName string) (*models.Slot, error) {
	if !actor.CanAssignSlot() {
		return nil, &ForbiddenError{Msg: "only administrators can assign slots"}
	}
	if studentID == "" || studentName == "" {
		return nil, &ValidationError{Msg: "student ID and name are required"}
	}

	slot, err := e.store.SlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, &NotFoundError{Msg: "slot not found"}
	}

	updated, ok, err := e.store.BookSlot(ctx, slotID, studentID, studentName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ConflictError{Msg: "slot is not available for booking"}
	}
	return updated, nil
}
