// Package store provides the MongoDB-backed implementation of the
// scheduling store.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/caps-platform/scheduling-backend/internal/models"
	"github.com/caps-platform/scheduling-backend/internal/scheduling"
)

// Collection names.
const (
	colSlots         = "slots"
	colRequests      = "student_requests"
	colSubmissions   = "therapist_submissions"
	colCancellations = "cancellation_requests"
	colUsers         = "users" // owned by the auth collaborator, read-only here
)

// Mongo implements scheduling.Store on a mongo.Database handle. The handle is
// injected once at process start; booking relies on conditional
// FindOneAndUpdate as the atomicity primitive.
type Mongo struct {
	db *mongo.Database
}

var _ scheduling.Store = (*Mongo)(nil)

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

// EnsureIndexes creates the indexes the matching queries depend on.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(colSlots).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "therapist_id", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return err
	}
	_, err = m.db.Collection(colRequests).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "requested_date", Value: 1}, {Key: "requested_time", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

// --- Slots ---

func (m *Mongo) CreateSlot(ctx context.Context, slot *models.Slot) error {
	if slot.ID.IsZero() {
		slot.ID = primitive.NewObjectID()
	}
	_, err := m.db.Collection(colSlots).InsertOne(ctx, slot)
	return err
}

func (m *Mongo) SlotByID(ctx context.Context, id string) (*models.Slot, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var slot models.Slot
	err = m.db.Collection(colSlots).FindOne(ctx, bson.M{"_id": oid}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (m *Mongo) Slots(ctx context.Context, f scheduling.SlotFilter) ([]models.Slot, error) {
	query := bson.M{}
	if f.Date != "" {
		query["date"] = f.Date
	} else if f.DateFrom != "" && f.DateTo != "" {
		query["date"] = bson.M{"$gte": f.DateFrom, "$lte": f.DateTo}
	}
	if f.StartTime != "" {
		query["start_time"] = f.StartTime
	}
	if f.TherapistID != "" {
		query["therapist_id"] = f.TherapistID
	}
	if f.StudentID != "" {
		query["student_id"] = f.StudentID
	}
	if f.Status != "" {
		query["status"] = f.Status
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}})

	cursor, err := m.db.Collection(colSlots).Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	slots := []models.Slot{}
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// BookSlot books the slot only if it is still available. The conditional
// filter makes two racing bookings resolve to exactly one winner.
func (m *Mongo) BookSlot(ctx context.Context, id, studentID, studentName string) (*models.Slot, bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false, nil
	}

	var slot models.Slot
	err = m.db.Collection(colSlots).FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": models.SlotAvailable},
		bson.M{"$set": bson.M{
			"student_id":   studentID,
			"student_name": studentName,
			"status":       models.SlotBooked,
			"updated_at":   time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &slot, true, nil
}

func (m *Mongo) CancelSlot(ctx context.Context, id, reason string) (*models.Slot, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &scheduling.NotFoundError{Msg: "slot not found"}
	}

	set := bson.M{"status": models.SlotCancelled, "updated_at": time.Now()}
	if reason != "" {
		set["notes"] = reason
	}

	var slot models.Slot
	err = m.db.Collection(colSlots).FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$set":   set,
			"$unset": bson.M{"student_id": "", "student_name": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, &scheduling.NotFoundError{Msg: "slot not found"}
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (m *Mongo) CompleteSlot(ctx context.Context, id string) (*models.Slot, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &scheduling.NotFoundError{Msg: "slot not found"}
	}

	var slot models.Slot
	err = m.db.Collection(colSlots).FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": models.SlotCompleted, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, &scheduling.NotFoundError{Msg: "slot not found"}
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// --- Student requests ---

func (m *Mongo) CreateRequest(ctx context.Context, req *models.StudentRequest) error {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	_, err := m.db.Collection(colRequests).InsertOne(ctx, req)
	return err
}

func (m *Mongo) RequestByID(ctx context.Context, id string) (*models.StudentRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var req models.StudentRequest
	err = m.db.Collection(colRequests).FindOne(ctx, bson.M{"_id": oid}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (m *Mongo) UpdateRequest(ctx context.Context, id string, u scheduling.RequestUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &scheduling.NotFoundError{Msg: "student request not found"}
	}

	set := bson.M{"updated_at": time.Now()}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.AssignedSlotID != nil {
		set["assigned_slot_id"] = *u.AssignedSlotID
	}
	if u.RequestedDate != nil {
		set["requested_date"] = *u.RequestedDate
	}
	if u.RequestedTime != nil {
		set["requested_time"] = *u.RequestedTime
	}
	if u.WaitingForTherapist != nil {
		set["waiting_for_therapist"] = *u.WaitingForTherapist
	}

	res, err := m.db.Collection(colRequests).UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &scheduling.NotFoundError{Msg: "student request not found"}
	}
	return nil
}

func (m *Mongo) WaitingRequests(ctx context.Context, therapistID, date, startTime string) ([]models.StudentRequest, error) {
	query := bson.M{
		"status":                models.RequestWaiting,
		"waiting_for_therapist": true,
		"requested_date":        date,
		"requested_time":        startTime,
		"$or": []bson.M{
			{"preferred_therapist_id": therapistID},
			{"preferred_therapist_id": bson.M{"$in": []interface{}{"", nil}}},
		},
	}

	// created_at ascending: the earliest request wins the slot.
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"created_at": 1})

	cursor, err := m.db.Collection(colRequests).Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.StudentRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (m *Mongo) RequestsByStatus(ctx context.Context, statuses ...string) ([]models.StudentRequest, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"created_at": 1})

	cursor, err := m.db.Collection(colRequests).Find(ctx,
		bson.M{"status": bson.M{"$in": statuses}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.StudentRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (m *Mongo) RequestsByStudent(ctx context.Context, studentID string) ([]models.StudentRequest, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"created_at": -1})

	cursor, err := m.db.Collection(colRequests).Find(ctx, bson.M{"student_id": studentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	requests := []models.StudentRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// --- Therapist submissions ---

func (m *Mongo) CreateSubmission(ctx context.Context, sub *models.TherapistSubmission) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	_, err := m.db.Collection(colSubmissions).InsertOne(ctx, sub)
	return err
}

func (m *Mongo) SubmissionByID(ctx context.Context, id string) (*models.TherapistSubmission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var sub models.TherapistSubmission
	err = m.db.Collection(colSubmissions).FindOne(ctx, bson.M{"_id": oid}).Decode(&sub)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (m *Mongo) Submissions(ctx context.Context) ([]models.TherapistSubmission, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"created_at": -1})

	cursor, err := m.db.Collection(colSubmissions).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	subs := []models.TherapistSubmission{}
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (m *Mongo) SetSubmissionStatus(ctx context.Context, id, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &scheduling.NotFoundError{Msg: "therapist submission not found"}
	}
	res, err := m.db.Collection(colSubmissions).UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &scheduling.NotFoundError{Msg: "therapist submission not found"}
	}
	return nil
}

// --- Cancellation requests ---

func (m *Mongo) CreateCancellation(ctx context.Context, cr *models.CancellationRequest) error {
	if cr.ID.IsZero() {
		cr.ID = primitive.NewObjectID()
	}
	_, err := m.db.Collection(colCancellations).InsertOne(ctx, cr)
	return err
}

func (m *Mongo) CancellationByID(ctx context.Context, id string) (*models.CancellationRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var cr models.CancellationRequest
	err = m.db.Collection(colCancellations).FindOne(ctx, bson.M{"_id": oid}).Decode(&cr)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cr, nil
}

func (m *Mongo) Cancellations(ctx context.Context) ([]models.CancellationRequest, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.M{"created_at": -1})

	cursor, err := m.db.Collection(colCancellations).Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	crs := []models.CancellationRequest{}
	if err := cursor.All(ctx, &crs); err != nil {
		return nil, err
	}
	return crs, nil
}

func (m *Mongo) SetCancellationStatus(ctx context.Context, id, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &scheduling.NotFoundError{Msg: "cancellation request not found"}
	}
	res, err := m.db.Collection(colCancellations).UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &scheduling.NotFoundError{Msg: "cancellation request not found"}
	}
	return nil
}

// --- Users (read-only) ---

func (m *Mongo) UserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var user models.User
	err = m.db.Collection(colUsers).FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
