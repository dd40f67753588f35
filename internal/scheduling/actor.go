package scheduling

import "github.com/caps-platform/scheduling-backend/internal/models"

// Role is the closed set of actor roles known to the scheduler.
type Role string

const (
	RoleStudent   Role = "student"
	RoleTherapist Role = "therapist"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleStudent, RoleTherapist, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller of a scheduling operation. Capability
// checks live here so role logic is not scattered through the engine.
type Actor struct {
	ID   string
	Name string
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanMarkAvailability reports whether the actor may open slots. Admins may
// open slots on behalf of any therapist.
func (a Actor) CanMarkAvailability() bool {
	return a.Role == RoleTherapist || a.Role == RoleAdmin
}

// CanRequestAppointment reports whether the actor may file student requests.
// Admins may file on behalf of any student.
func (a Actor) CanRequestAppointment() bool {
	return a.Role == RoleStudent || a.Role == RoleAdmin
}

// CanCancelSlot allows only the owning therapist or an admin.
func (a Actor) CanCancelSlot(slot *models.Slot) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == RoleTherapist && slot.TherapistID == a.ID
}

// CanCompleteSlot allows the owning therapist, the assigned student, or an admin.
func (a Actor) CanCompleteSlot(slot *models.Slot) bool {
	if a.IsAdmin() {
		return true
	}
	if a.Role == RoleTherapist && slot.TherapistID == a.ID {
		return true
	}
	return a.Role == RoleStudent && slot.StudentID != "" && slot.StudentID == a.ID
}

// CanAssignSlot allows only admins (manual override of the matching search).
func (a Actor) CanAssignSlot() bool { return a.IsAdmin() }

// CanSeeSlot reports whether a listed slot is visible to the actor.
// Students see their own bookings, therapists their own windows, admins all.
func (a Actor) CanSeeSlot(slot *models.Slot) bool {
	switch a.Role {
	case RoleAdmin:
		return true
	case RoleTherapist:
		return slot.TherapistID == a.ID
	case RoleStudent:
		return slot.StudentID == a.ID
	}
	return false
}
