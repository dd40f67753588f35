package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/caps-platform/scheduling-backend/internal/models"
)

// Orchestrator coordinates the multi-step scheduling workflows: the
// reconciliation sweep over unresolved requests, recurring-submission
// expansion, cancellation processing, and the weekly calendar projection.
// Each workflow is a sequence of Engine calls, so slots opened or booked here
// get the identical overlap and FIFO treatment as request-triggered ones.
type Orchestrator struct {
	store  Store
	engine *Engine
}

func NewOrchestrator(store Store, engine *Engine) *Orchestrator {
	return &Orchestrator{store: store, engine: engine}
}

// SweepOutcome is the per-request result of a reconciliation sweep.
type SweepOutcome struct {
	RequestID   string `json:"request_id"`
	StudentID   string `json:"student_id"`
	MatchStatus string `json:"match_status"`
}

// ProcessPendingStudentRequests re-runs matching for every pending or waiting
// request in created_at order. A waiting request whose exact slot is booked
// by someone else keeps its place on the waitlist: the sweep reconciles, it
// does not evict students parked behind an existing booking.
func (o *Orchestrator) ProcessPendingStudentRequests(ctx context.Context) ([]SweepOutcome, error) {
	requests, err := o.store.RequestsByStatus(ctx, models.RequestPending, models.RequestWaiting)
	if err != nil {
		return nil, err
	}

	outcomes := make([]SweepOutcome, 0, len(requests))
	for i := range requests {
		req := requests[i]

		if req.Status == models.RequestWaiting && req.RequestedDate != "" && req.RequestedTime != "" {
			taken, err := o.windowBookedByOther(ctx, &req)
			if err != nil {
				return nil, err
			}
			if taken {
				outcomes = append(outcomes, SweepOutcome{
					RequestID:   req.ID.Hex(),
					StudentID:   req.StudentID,
					MatchStatus: MatchWaiting,
				})
				continue
			}
		}

		res, err := o.engine.Rematch(ctx, &req)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, SweepOutcome{
			RequestID:   req.ID.Hex(),
			StudentID:   req.StudentID,
			MatchStatus: res.MatchStatus,
		})
	}
	return outcomes, nil
}

func (o *Orchestrator) windowBookedByOther(ctx context.Context, req *models.StudentRequest) (bool, error) {
	slots, err := o.store.Slots(ctx, SlotFilter{
		Date:        req.RequestedDate,
		StartTime:   req.RequestedTime,
		TherapistID: req.PreferredTherapistID,
		Status:      models.SlotBooked,
	})
	if err != nil {
		return false, err
	}
	for i := range slots {
		if slots[i].StudentID != req.StudentID {
			return true, nil
		}
	}
	return false, nil
}

// DaySchedule is one calendar day of the weekly projection.
type DaySchedule struct {
	Date  string        `json:"date"`
	Day   string        `json:"day"`
	Slots []models.Slot `json:"slots"`
}

// WeeklySchedule is the read-only calendar projection for
// [StartDate, StartDate+6d].
type WeeklySchedule struct {
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Days      []DaySchedule `json:"days"`
}

// GenerateWeeklySchedule collects every slot in the seven days starting at
// startDate, grouped by day. Pure projection; nothing is written.
func (o *Orchestrator) GenerateWeeklySchedule(ctx context.Context, startDate string) (*WeeklySchedule, error) {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return nil, &ValidationError{Msg: "start_date must be YYYY-MM-DD"}
	}
	end := start.AddDate(0, 0, 6)

	slots, err := o.store.Slots(ctx, SlotFilter{
		DateFrom: start.Format(DateLayout),
		DateTo:   end.Format(DateLayout),
	})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]models.Slot)
	for i := range slots {
		byDate[slots[i].Date] = append(byDate[slots[i].Date], slots[i])
	}

	week := &WeeklySchedule{
		StartDate: start.Format(DateLayout),
		EndDate:   end.Format(DateLayout),
	}
	for d := 0; d < 7; d++ {
		date := start.AddDate(0, 0, d).Format(DateLayout)
		day := DaySchedule{Date: date, Day: DayCode(date), Slots: byDate[date]}
		if day.Slots == nil {
			day.Slots = []models.Slot{}
		}
		week.Days = append(week.Days, day)
	}
	return week, nil
}

// ExpansionResult reports what a recurring-submission expansion produced.
type ExpansionResult struct {
	Submission *models.TherapistSubmission `json:"submission"`
	Created    []models.Slot               `json:"created_slots"`
	Skipped    []string                    `json:"skipped_dates,omitempty"`
}

// ProcessSubmission expands a pending recurring submission into concrete
// slots: for each recurring day, the next occurrence of that weekday on or
// after the submission's base date is opened through MarkAvailability, so
// recurring slots get the same overlap check and first-come waitlist
// assignment as singly created ones. Occurrences that would overlap existing
// availability are skipped and reported rather than failing the whole
// expansion.
func (o *Orchestrator) ProcessSubmission(ctx context.Context, submissionID string) (*ExpansionResult, error) {
	sub, err := o.store.SubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, &NotFoundError{Msg: "therapist submission not found"}
	}
	if sub.Status != models.SubmissionPending {
		return nil, &InvalidStateError{Msg: "submission has already been processed"}
	}

	base, err := time.Parse(DateLayout, sub.Date)
	if err != nil {
		return nil, &InvalidStateError{Msg: "submission has an invalid base date"}
	}

	result := &ExpansionResult{Submission: sub}
	for _, day := range sub.RecurringDays {
		date, ok := NextDateForWeekday(day, base)
		if !ok {
			result.Skipped = append(result.Skipped, day)
			continue
		}
		res, err := o.engine.MarkAvailability(ctx, AvailabilityParams{
			TherapistID:   sub.TherapistID,
			TherapistName: sub.TherapistName,
			Date:          date,
			StartTime:     sub.StartTime,
			EndTime:       sub.EndTime,
			Notes:         sub.Notes,
		})
		if err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				result.Skipped = append(result.Skipped, date)
				continue
			}
			return nil, err
		}
		result.Created = append(result.Created, *res.Slot)
	}

	if err := o.store.SetSubmissionStatus(ctx, submissionID, models.SubmissionProcessed); err != nil {
		return nil, err
	}
	sub.Status = models.SubmissionProcessed
	return result, nil
}

// CancellationOutcome reports a processed cancellation request: the cancelled
// slot, the reopened window and, when a waiting student was backfilled into
// it, that student's request.
type CancellationOutcome struct {
	Cancellation *models.CancellationRequest `json:"cancellation"`
	Slot         *models.Slot                `json:"slot,omitempty"`
	Reopened     *models.Slot                `json:"reopened_slot,omitempty"`
	Backfilled   *models.StudentRequest      `json:"backfilled_request,omitempty"`
}

// ProcessCancellationRequest cancels the referenced slot and reopens the
// freed window through MarkAvailability, which backfills the earliest
// waiting student. This is the only path that re-matches after a
// cancellation; a direct CancelSlot leaves the window closed.
func (o *Orchestrator) ProcessCancellationRequest(ctx context.Context, id string) (*CancellationOutcome, error) {
	cr, err := o.store.CancellationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cr == nil {
		return nil, &NotFoundError{Msg: "cancellation request not found"}
	}
	if cr.Status != models.SubmissionPending {
		return nil, &InvalidStateError{Msg: "cancellation request has already been processed"}
	}

	outcome := &CancellationOutcome{Cancellation: cr}

	slot, err := o.store.SlotByID(ctx, cr.SlotID)
	if err != nil {
		return nil, err
	}
	if slot != nil && (slot.Status == models.SlotAvailable || slot.Status == models.SlotBooked) {
		cancelled, err := o.store.CancelSlot(ctx, cr.SlotID, cr.Reason)
		if err != nil {
			return nil, err
		}
		outcome.Slot = cancelled

		res, err := o.engine.MarkAvailability(ctx, AvailabilityParams{
			TherapistID:   slot.TherapistID,
			TherapistName: slot.TherapistName,
			Date:          slot.Date,
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
			Notes:         slot.Notes,
		})
		if err != nil {
			var conflict *ConflictError
			if !errors.As(err, &conflict) {
				return nil, err
			}
			// Another window already covers this interval; nothing to reopen.
		} else {
			outcome.Reopened = res.Slot
			outcome.Backfilled = res.AssignedStudent
		}
	}

	if err := o.store.SetCancellationStatus(ctx, id, models.SubmissionProcessed); err != nil {
		return nil, err
	}
	cr.Status = models.SubmissionProcessed
	return outcome, nil
}
