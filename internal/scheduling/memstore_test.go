package scheduling

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/caps-platform/scheduling-backend/internal/models"
)

// memStore is an in-memory Store used by the engine and orchestrator tests.
// It mirrors the Mongo store's ordering guarantees: waiting requests and
// status listings come back earliest created_at first.
type memStore struct {
	slots         []models.Slot
	requests      []models.StudentRequest
	submissions   []models.TherapistSubmission
	cancellations []models.CancellationRequest
	users         map[string]models.User
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{users: make(map[string]models.User)}
}

func (m *memStore) CreateSlot(_ context.Context, slot *models.Slot) error {
	if slot.ID.IsZero() {
		slot.ID = primitive.NewObjectID()
	}
	m.slots = append(m.slots, *slot)
	return nil
}

func (m *memStore) SlotByID(_ context.Context, id string) (*models.Slot, error) {
	for i := range m.slots {
		if m.slots[i].ID.Hex() == id {
			s := m.slots[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memStore) Slots(_ context.Context, f SlotFilter) ([]models.Slot, error) {
	var out []models.Slot
	for i := range m.slots {
		s := m.slots[i]
		if f.Date != "" && s.Date != f.Date {
			continue
		}
		if f.DateFrom != "" && s.Date < f.DateFrom {
			continue
		}
		if f.DateTo != "" && s.Date > f.DateTo {
			continue
		}
		if f.StartTime != "" && s.StartTime != f.StartTime {
			continue
		}
		if f.TherapistID != "" && s.TherapistID != f.TherapistID {
			continue
		}
		if f.StudentID != "" && s.StudentID != f.StudentID {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) BookSlot(_ context.Context, id, studentID, studentName string) (*models.Slot, bool, error) {
	for i := range m.slots {
		if m.slots[i].ID.Hex() == id {
			if m.slots[i].Status != models.SlotAvailable {
				return nil, false, nil
			}
			m.slots[i].Status = models.SlotBooked
			m.slots[i].StudentID = studentID
			m.slots[i].StudentName = studentName
			s := m.slots[i]
			return &s, true, nil
		}
	}
	return nil, false, nil
}

func (m *memStore) CancelSlot(_ context.Context, id, reason string) (*models.Slot, error) {
	for i := range m.slots {
		if m.slots[i].ID.Hex() == id {
			m.slots[i].Status = models.SlotCancelled
			m.slots[i].StudentID = ""
			m.slots[i].StudentName = ""
			if reason != "" {
				m.slots[i].Notes = reason
			}
			s := m.slots[i]
			return &s, nil
		}
	}
	return nil, &NotFoundError{Msg: "slot not found"}
}

func (m *memStore) CompleteSlot(_ context.Context, id string) (*models.Slot, error) {
	for i := range m.slots {
		if m.slots[i].ID.Hex() == id {
			m.slots[i].Status = models.SlotCompleted
			s := m.slots[i]
			return &s, nil
		}
	}
	return nil, &NotFoundError{Msg: "slot not found"}
}

func (m *memStore) CreateRequest(_ context.Context, req *models.StudentRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	m.requests = append(m.requests, *req)
	return nil
}

func (m *memStore) RequestByID(_ context.Context, id string) (*models.StudentRequest, error) {
	for i := range m.requests {
		if m.requests[i].ID.Hex() == id {
			r := m.requests[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateRequest(_ context.Context, id string, u RequestUpdate) error {
	for i := range m.requests {
		if m.requests[i].ID.Hex() != id {
			continue
		}
		if u.Status != nil {
			m.requests[i].Status = *u.Status
		}
		if u.AssignedSlotID != nil {
			m.requests[i].AssignedSlotID = *u.AssignedSlotID
		}
		if u.RequestedDate != nil {
			m.requests[i].RequestedDate = *u.RequestedDate
		}
		if u.RequestedTime != nil {
			m.requests[i].RequestedTime = *u.RequestedTime
		}
		if u.WaitingForTherapist != nil {
			m.requests[i].WaitingForTherapist = *u.WaitingForTherapist
		}
		return nil
	}
	return &NotFoundError{Msg: "request not found"}
}

func (m *memStore) WaitingRequests(_ context.Context, therapistID, date, startTime string) ([]models.StudentRequest, error) {
	var out []models.StudentRequest
	for i := range m.requests {
		r := m.requests[i]
		if r.Status != models.RequestWaiting || !r.WaitingForTherapist {
			continue
		}
		if r.RequestedDate != date || r.RequestedTime != startTime {
			continue
		}
		if r.PreferredTherapistID != "" && r.PreferredTherapistID != therapistID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) RequestsByStatus(_ context.Context, statuses ...string) ([]models.StudentRequest, error) {
	want := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []models.StudentRequest
	for i := range m.requests {
		if want[m.requests[i].Status] {
			out = append(out, m.requests[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) RequestsByStudent(_ context.Context, studentID string) ([]models.StudentRequest, error) {
	var out []models.StudentRequest
	for i := range m.requests {
		if m.requests[i].StudentID == studentID {
			out = append(out, m.requests[i])
		}
	}
	return out, nil
}

func (m *memStore) CreateSubmission(_ context.Context, sub *models.TherapistSubmission) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	m.submissions = append(m.submissions, *sub)
	return nil
}

func (m *memStore) SubmissionByID(_ context.Context, id string) (*models.TherapistSubmission, error) {
	for i := range m.submissions {
		if m.submissions[i].ID.Hex() == id {
			s := m.submissions[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memStore) Submissions(_ context.Context) ([]models.TherapistSubmission, error) {
	return append([]models.TherapistSubmission(nil), m.submissions...), nil
}

func (m *memStore) SetSubmissionStatus(_ context.Context, id, status string) error {
	for i := range m.submissions {
		if m.submissions[i].ID.Hex() == id {
			m.submissions[i].Status = status
			return nil
		}
	}
	return &NotFoundError{Msg: "submission not found"}
}

func (m *memStore) CreateCancellation(_ context.Context, cr *models.CancellationRequest) error {
	if cr.ID.IsZero() {
		cr.ID = primitive.NewObjectID()
	}
	m.cancellations = append(m.cancellations, *cr)
	return nil
}

func (m *memStore) CancellationByID(_ context.Context, id string) (*models.CancellationRequest, error) {
	for i := range m.cancellations {
		if m.cancellations[i].ID.Hex() == id {
			c := m.cancellations[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) Cancellations(_ context.Context) ([]models.CancellationRequest, error) {
	return append([]models.CancellationRequest(nil), m.cancellations...), nil
}

func (m *memStore) SetCancellationStatus(_ context.Context, id, status string) error {
	for i := range m.cancellations {
		if m.cancellations[i].ID.Hex() == id {
			m.cancellations[i].Status = status
			return nil
		}
	}
	return &NotFoundError{Msg: "cancellation request not found"}
}

func (m *memStore) UserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}
