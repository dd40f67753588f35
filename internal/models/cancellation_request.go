package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CancellationRequest records a therapist asking to cancel a booked slot.
// Processing it cancels the slot and reopens the freed window so waiting
// students can be backfilled.
type CancellationRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	SlotID        string `bson:"slot_id" json:"slot_id"`
	TherapistID   string `bson:"therapist_id" json:"therapist_id"`
	TherapistName string `bson:"therapist_name" json:"therapist_name"`

	StudentID   string `bson:"student_id,omitempty" json:"student_id,omitempty"`
	StudentName string `bson:"student_name,omitempty" json:"student_name,omitempty"`

	Reason string `bson:"reason" json:"reason"`
	Status string `bson:"status" json:"status"`
}
