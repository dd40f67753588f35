package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the platform account document owned by the auth collaborator.
// The scheduler only reads it to resolve display names for projections and
// admin on-behalf-of calls.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	Name string `bson:"name" json:"name"`
	Role string `bson:"role" json:"role"` // student, therapist, admin
}
