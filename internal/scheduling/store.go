package scheduling

import (
	"context"

	"github.com/caps-platform/scheduling-backend/internal/models"
)

// SlotFilter narrows slot listings. Zero-value fields are ignored.
type SlotFilter struct {
	Date        string // exact date
	DateFrom    string // inclusive range, used with DateTo
	DateTo      string
	StartTime   string
	TherapistID string
	StudentID   string
	Status      string
}

// RequestUpdate holds a partial update to a student request. Nil fields are
// left untouched.
type RequestUpdate struct {
	Status              *string
	AssignedSlotID      *string
	RequestedDate       *string
	RequestedTime       *string
	WaitingForTherapist *bool
}

// Store is the persistence surface the matching engine and orchestrator run
// against. The production implementation is Mongo-backed; tests use an
// in-memory double. Lookups by ID return (nil, nil) when the record does not
// exist.
//
// BookSlot is the concurrency primitive for bookings: it must set the student
// and flip the status to booked only if the slot is still available, and
// report false when that conditional write did not apply. Two concurrent
// bookings of the same slot must therefore resolve to exactly one winner.
type Store interface {
	CreateSlot(ctx context.Context, slot *models.Slot) error
	SlotByID(ctx context.Context, id string) (*models.Slot, error)
	Slots(ctx context.Context, f SlotFilter) ([]models.Slot, error)
	BookSlot(ctx context.Context, id, studentID, studentName string) (*models.Slot, bool, error)
	CancelSlot(ctx context.Context, id, reason string) (*models.Slot, error)
	CompleteSlot(ctx context.Context, id string) (*models.Slot, error)

	CreateRequest(ctx context.Context, req *models.StudentRequest) error
	RequestByID(ctx context.Context, id string) (*models.StudentRequest, error)
	UpdateRequest(ctx context.Context, id string, u RequestUpdate) error
	// WaitingRequests returns waiting entries parked on the exact window,
	// preferring the given therapist or therapist-agnostic requests,
	// earliest created_at first.
	WaitingRequests(ctx context.Context, therapistID, date, startTime string) ([]models.StudentRequest, error)
	RequestsByStatus(ctx context.Context, statuses ...string) ([]models.StudentRequest, error)
	RequestsByStudent(ctx context.Context, studentID string) ([]models.StudentRequest, error)

	CreateSubmission(ctx context.Context, sub *models.TherapistSubmission) error
	SubmissionByID(ctx context.Context, id string) (*models.TherapistSubmission, error)
	Submissions(ctx context.Context) ([]models.TherapistSubmission, error)
	SetSubmissionStatus(ctx context.Context, id, status string) error

	CreateCancellation(ctx context.Context, cr *models.CancellationRequest) error
	CancellationByID(ctx context.Context, id string) (*models.CancellationRequest, error)
	Cancellations(ctx context.Context) ([]models.CancellationRequest, error)
	SetCancellationStatus(ctx context.Context, id, status string) error

	UserByID(ctx context.Context, id string) (*models.User, error)
}
