package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission / cancellation-request status values
const (
	SubmissionPending   = "pending"
	SubmissionProcessed = "processed"
	SubmissionRejected  = "rejected"
)

// TherapistSubmission records a therapist's request to repeat an availability
// pattern across future weeks. It is expanded into concrete slots when an
// admin processes it; creating the submission never creates future slots.
type TherapistSubmission struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	TherapistID   string `bson:"therapist_id" json:"therapist_id"`
	TherapistName string `bson:"therapist_name" json:"therapist_name"`

	Date      string `bson:"date" json:"date"`
	Day       string `bson:"day" json:"day"`
	StartTime string `bson:"start_time" json:"start_time"`
	EndTime   string `bson:"end_time" json:"end_time"`

	IsRecurring   bool     `bson:"is_recurring" json:"is_recurring"`
	RecurringDays []string `bson:"recurring_days" json:"recurring_days"`

	Status string `bson:"status" json:"status"`
	Notes  string `bson:"notes,omitempty" json:"notes,omitempty"`
}
