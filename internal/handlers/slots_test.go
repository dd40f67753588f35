package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/caps-platform/scheduling-backend/internal/middleware"
	"github.com/caps-platform/scheduling-backend/internal/models"
	"github.com/caps-platform/scheduling-backend/internal/scheduling"
)

// stubStore serves reads for the projection tests. The embedded interface is
// nil, so any write the handlers attempt fails loudly: virtual waitlist
// entries must never reach the store.
type stubStore struct {
	scheduling.Store
	slots    []models.Slot
	requests []models.StudentRequest
	users    map[string]models.User
}

func (s *stubStore) Slots(_ context.Context, _ scheduling.SlotFilter) ([]models.Slot, error) {
	return s.slots, nil
}

func (s *stubStore) SlotByID(_ context.Context, id string) (*models.Slot, error) {
	for i := range s.slots {
		if s.slots[i].ID.Hex() == id {
			slot := s.slots[i]
			return &slot, nil
		}
	}
	return nil, nil
}

func (s *stubStore) RequestsByStudent(_ context.Context, studentID string) ([]models.StudentRequest, error) {
	var out []models.StudentRequest
	for i := range s.requests {
		if s.requests[i].StudentID == studentID {
			out = append(out, s.requests[i])
		}
	}
	return out, nil
}

func (s *stubStore) RequestByID(_ context.Context, id string) (*models.StudentRequest, error) {
	for i := range s.requests {
		if s.requests[i].ID.Hex() == id {
			req := s.requests[i]
			return &req, nil
		}
	}
	return nil, nil
}

func (s *stubStore) UserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func withStubStore(t *testing.T, s *stubStore) {
	t.Helper()
	prev := store
	store = s
	t.Cleanup(func() { store = prev })
}

func requestAs(method, target string, actor scheduling.Actor) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return r.WithContext(context.WithValue(r.Context(), middleware.ActorContextKey, actor))
}

func waitingRequest(studentID, therapistID, date, startTime string) models.StudentRequest {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return models.StudentRequest{
		ID:        primitive.NewObjectID(),
		CreatedAt: now, UpdatedAt: now,
		StudentID: studentID, StudentName: "Sam",
		PreferredTherapistID: therapistID,
		RequestedDate:        date, RequestedTime: startTime,
		WaitingForTherapist: true,
		Status:              models.RequestWaiting,
	}
}

func TestWaitlistedViewShape(t *testing.T) {
	withStubStore(t, &stubStore{users: map[string]models.User{}})
	ctx := context.Background()

	req := waitingRequest("s1", "", "2026-01-07", "14:00")
	view := waitlistedView(ctx, &req)

	assert.True(t, view.IsWaitlisted)
	assert.Equal(t, StatusWaitlisted, view.Status)
	assert.Equal(t, "2026-01-07", view.Date)
	assert.Equal(t, "WED", view.Day)
	assert.Equal(t, "14:00", view.StartTime)
	assert.Equal(t, "15:00", view.EndTime) // one hour, the default duration
	assert.Equal(t, "Any Available Therapist", view.TherapistName)
	assert.Equal(t, req.ID, view.ID)

	// The waitlisted status stays out of the stored vocabulary.
	assert.NotEqual(t, models.SlotAvailable, view.Status)
	assert.NotEqual(t, models.SlotBooked, view.Status)
	assert.NotEqual(t, models.RequestWaiting, view.Status)
}

func TestWaitlistedViewTherapistNames(t *testing.T) {
	withStubStore(t, &stubStore{users: map[string]models.User{
		"t1": {Name: "Dr. Rivera"},
	}})
	ctx := context.Background()

	known := waitingRequest("s1", "t1", "2026-01-07", "14:00")
	assert.Equal(t, "Dr. Rivera", waitlistedView(ctx, &known).TherapistName)

	unknown := waitingRequest("s1", "t9", "2026-01-07", "14:00")
	assert.Equal(t, "Preferred Therapist", waitlistedView(ctx, &unknown).TherapistName)
}

func TestListSlotsProjectsStudentWaitlist(t *testing.T) {
	booked := models.Slot{
		ID:   primitive.NewObjectID(),
		Date: "2026-01-06", Day: "TUE", StartTime: "10:00", EndTime: "11:00",
		TherapistID: "t1", TherapistName: "Dr. Rivera",
		StudentID: "s1", StudentName: "Sam",
		Status: models.SlotBooked,
	}
	waiting := waitingRequest("s1", "", "2026-01-07", "14:00")
	resolved := waitingRequest("s1", "", "2026-01-08", "14:00")
	resolved.Status = models.RequestAssigned

	withStubStore(t, &stubStore{
		slots:    []models.Slot{booked},
		requests: []models.StudentRequest{waiting, resolved},
		users:    map[string]models.User{},
	})

	rec := httptest.NewRecorder()
	ListSlots(rec, requestAs(http.MethodGet, "/api/slots", scheduling.Actor{ID: "s1", Role: scheduling.RoleStudent}))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ListSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 2, resp.Total)

	// The real booking first, then the virtual entry for the waiting
	// request only; the assigned request is not projected.
	assert.Equal(t, models.SlotBooked, resp.Slots[0].Status)
	assert.False(t, resp.Slots[0].IsWaitlisted)
	assert.Equal(t, StatusWaitlisted, resp.Slots[1].Status)
	assert.True(t, resp.Slots[1].IsWaitlisted)
	assert.Equal(t, waiting.ID, resp.Slots[1].ID)
}

func TestGetSlotFallsBackToWaitlistedRequest(t *testing.T) {
	waiting := waitingRequest("s1", "", "2026-01-07", "14:00")
	withStubStore(t, &stubStore{
		requests: []models.StudentRequest{waiting},
		users:    map[string]models.User{},
	})

	get := func(actor scheduling.Actor) *httptest.ResponseRecorder {
		r := requestAs(http.MethodGet, "/api/slots/"+waiting.ID.Hex(), actor)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", waiting.ID.Hex())
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		GetSlot(rec, r)
		return rec
	}

	rec := get(scheduling.Actor{ID: "s1", Role: scheduling.RoleStudent})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp GetSlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Slot)
	assert.True(t, resp.Slot.IsWaitlisted)
	assert.Equal(t, StatusWaitlisted, resp.Slot.Status)

	// Another student cannot see it.
	rec = get(scheduling.Actor{ID: "s2", Role: scheduling.RoleStudent})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
