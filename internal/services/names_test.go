package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/caps-platform/scheduling-backend/internal/models"
	"github.com/caps-platform/scheduling-backend/internal/scheduling"
)

// userStore stubs the users collection. The embedded interface is nil, so any
// other store call fails loudly.
type userStore struct {
	scheduling.Store
	users map[string]models.User
}

func (s *userStore) UserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

// Name resolution must survive without a Redis connection: the cache is an
// optimization, not a dependency.
func TestTherapistDisplayNameWithoutRedis(t *testing.T) {
	store := &userStore{users: map[string]models.User{
		"t1": {Name: "Dr. Rivera"},
	}}
	ctx := context.Background()

	assert.Equal(t, AnyTherapistName, TherapistDisplayName(ctx, store, ""))
	assert.Equal(t, "Dr. Rivera", TherapistDisplayName(ctx, store, "t1"))
	assert.Equal(t, PreferredTherapistName, TherapistDisplayName(ctx, store, "unknown"))
}

func TestUserDisplayNameWithoutRedis(t *testing.T) {
	store := &userStore{users: map[string]models.User{
		"s1": {Name: "Sam"},
	}}
	ctx := context.Background()

	assert.Equal(t, "Student", UserDisplayName(ctx, store, "", "Student"))
	assert.Equal(t, "Sam", UserDisplayName(ctx, store, "s1", "Student"))
	assert.Equal(t, "Student", UserDisplayName(ctx, store, "unknown", "Student"))
}
