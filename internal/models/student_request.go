package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StudentRequest status values
const (
	RequestPending  = "pending"
	RequestWaiting  = "waiting"
	RequestAssigned = "assigned"
	RequestRejected = "rejected"
)

// StudentRequest is a student's appointment request. A request carries either
// day/time preferences or a specific date and time, never both. When no slot
// can be matched immediately the request stays on the waitlist; competing
// requests for the same slot are served in created_at order.
type StudentRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	StudentID   string `bson:"student_id" json:"student_id"`
	StudentName string `bson:"student_name" json:"student_name"`

	PreferredDays        []string `bson:"preferred_days" json:"preferred_days"`
	PreferredTimes       []string `bson:"preferred_times" json:"preferred_times"`
	PreferredTherapistID string   `bson:"preferred_therapist_id,omitempty" json:"preferred_therapist_id,omitempty"`

	// Set when the student asked for (or was parked on) one exact window.
	RequestedDate       string `bson:"requested_date,omitempty" json:"requested_date,omitempty"`
	RequestedTime       string `bson:"requested_time,omitempty" json:"requested_time,omitempty"`
	WaitingForTherapist bool   `bson:"waiting_for_therapist" json:"waiting_for_therapist"`

	Status         string `bson:"status" json:"status"`
	AssignedSlotID string `bson:"assigned_slot_id,omitempty" json:"assigned_slot_id,omitempty"`
	Notes          string `bson:"notes,omitempty" json:"notes,omitempty"`
}
