package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caps-platform/scheduling-backend/internal/models"
)

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("student"))
	assert.True(t, ValidRole("therapist"))
	assert.True(t, ValidRole("admin"))
	assert.False(t, ValidRole("Admin"))
	assert.False(t, ValidRole(""))
	assert.False(t, ValidRole("superuser"))
}

func TestActorCapabilities(t *testing.T) {
	student := Actor{ID: "s1", Role: RoleStudent}
	therapist := Actor{ID: "t1", Role: RoleTherapist}
	admin := Actor{ID: "a1", Role: RoleAdmin}

	assert.False(t, student.CanMarkAvailability())
	assert.True(t, therapist.CanMarkAvailability())
	assert.True(t, admin.CanMarkAvailability())

	assert.True(t, student.CanRequestAppointment())
	assert.False(t, therapist.CanRequestAppointment())
	assert.True(t, admin.CanRequestAppointment())

	assert.False(t, student.CanAssignSlot())
	assert.False(t, therapist.CanAssignSlot())
	assert.True(t, admin.CanAssignSlot())
}

func TestActorSlotOwnership(t *testing.T) {
	slot := &models.Slot{TherapistID: "t1", StudentID: "s1"}

	assert.True(t, Actor{ID: "t1", Role: RoleTherapist}.CanCancelSlot(slot))
	assert.False(t, Actor{ID: "t2", Role: RoleTherapist}.CanCancelSlot(slot))
	assert.False(t, Actor{ID: "s1", Role: RoleStudent}.CanCancelSlot(slot))
	assert.True(t, Actor{ID: "a1", Role: RoleAdmin}.CanCancelSlot(slot))

	assert.True(t, Actor{ID: "t1", Role: RoleTherapist}.CanCompleteSlot(slot))
	assert.True(t, Actor{ID: "s1", Role: RoleStudent}.CanCompleteSlot(slot))
	assert.False(t, Actor{ID: "s2", Role: RoleStudent}.CanCompleteSlot(slot))
	assert.True(t, Actor{ID: "a1", Role: RoleAdmin}.CanCompleteSlot(slot))

	// An unassigned slot cannot be completed by any student.
	open := &models.Slot{TherapistID: "t1"}
	assert.False(t, Actor{ID: "s1", Role: RoleStudent}.CanCompleteSlot(open))

	assert.True(t, Actor{ID: "t1", Role: RoleTherapist}.CanSeeSlot(slot))
	assert.False(t, Actor{ID: "t2", Role: RoleTherapist}.CanSeeSlot(slot))
	assert.True(t, Actor{ID: "s1", Role: RoleStudent}.CanSeeSlot(slot))
	assert.False(t, Actor{ID: "s2", Role: RoleStudent}.CanSeeSlot(slot))
	assert.True(t, Actor{ID: "a1", Role: RoleAdmin}.CanSeeSlot(slot))
}
