package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Slot status values
const (
	SlotAvailable = "available"
	SlotBooked    = "booked"
	SlotCompleted = "completed"
	SlotCancelled = "cancelled"
)

// Slot is a single bookable therapist time window.
// student_id is set if and only if status is "booked".
type Slot struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Date      string `bson:"date" json:"date"`             // YYYY-MM-DD
	Day       string `bson:"day" json:"day"`               // MON..FRI
	StartTime string `bson:"start_time" json:"start_time"` // HH:MM, 24-hour
	EndTime   string `bson:"end_time" json:"end_time"`

	TherapistID   string `bson:"therapist_id" json:"therapist_id"`
	TherapistName string `bson:"therapist_name" json:"therapist_name"`

	StudentID   string `bson:"student_id,omitempty" json:"student_id,omitempty"`
	StudentName string `bson:"student_name,omitempty" json:"student_name,omitempty"`

	Status string `bson:"status" json:"status"`
	Notes  string `bson:"notes,omitempty" json:"notes,omitempty"`
}
