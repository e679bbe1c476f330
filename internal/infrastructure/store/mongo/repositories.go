package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clinicdesk/booking-system/internal/core/domain"
)

// --- users ---

type userRepo struct {
	col *mongo.Collection
}

func (r *userRepo) Get(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var user domain.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Upsert inserts the user or updates names and role in place when the email
// is already taken, keeping the stored _id and created_at.
func (r *userRepo) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"email": user.Email}
	update := bson.M{
		"$set": bson.M{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
			"updated_at": user.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":        user.ID,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.User
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &stored, nil
}

// --- slots ---

type slotRepo struct {
	col *mongo.Collection
}

func (r *slotRepo) Create(ctx context.Context, slot *domain.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, slot); err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

func (r *slotRepo) Get(ctx context.Context, id string) (*domain.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var slot domain.Slot
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&slot); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return &slot, nil
}

func (r *slotRepo) ListWindow(ctx context.Context, from, to time.Time) ([]domain.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"start_at": bson.M{"$gte": from, "$lte": to}}
	opts := options.Find().SetSort(bson.D{{Key: "start_at", Value: 1}})

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer cur.Close(ctx)

	var slots []domain.Slot
	if err := cur.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("decode slots: %w", err)
	}
	return slots, nil
}

// --- bookings ---

type bookingRepo struct {
	db *mongo.Database
}

func (r *bookingRepo) col() *mongo.Collection { return r.db.Collection(collectionBookings) }

// Create inserts the booking. The unique index on slot_id rejects a second
// booking for the same slot with a duplicate-key error, which surfaces as the
// domain conflict.
func (r *bookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col().InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlotAlreadyBooked
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *bookingRepo) FindBySlotIDs(ctx context.Context, slotIDs []string) (map[string]domain.Booking, error) {
	out := make(map[string]domain.Booking)
	if len(slotIDs) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col().Find(ctx, bson.M{"slot_id": bson.M{"$in": slotIDs}})
	if err != nil {
		return nil, fmt.Errorf("find bookings by slot: %w", err)
	}
	defer cur.Close(ctx)

	var bookings []domain.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	for _, b := range bookings {
		out[b.SlotID] = b
	}
	return out, nil
}

func (r *bookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.BookingDetail, error) {
	return r.listDetails(ctx, bson.M{"user_id": userID})
}

func (r *bookingRepo) ListAll(ctx context.Context) ([]domain.BookingDetail, error) {
	return r.listDetails(ctx, bson.M{})
}

// listDetails fetches bookings newest first and joins users and slots with
// two batched $in lookups. Bookings whose user or slot document is missing
// are skipped.
func (r *bookingRepo) listDetails(ctx context.Context, filter bson.M) ([]domain.BookingDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer cur.Close(ctx)

	var bookings []domain.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	if len(bookings) == 0 {
		return []domain.BookingDetail{}, nil
	}

	userIDs := make([]string, 0, len(bookings))
	slotIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		userIDs = append(userIDs, b.UserID)
		slotIDs = append(slotIDs, b.SlotID)
	}

	users, err := r.fetchUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	slots, err := r.fetchSlots(ctx, slotIDs)
	if err != nil {
		return nil, err
	}

	details := make([]domain.BookingDetail, 0, len(bookings))
	for _, b := range bookings {
		user, userOK := users[b.UserID]
		slot, slotOK := slots[b.SlotID]
		if !userOK || !slotOK {
			continue
		}
		details = append(details, domain.BookingDetail{Booking: b, User: user, Slot: slot})
	}
	return details, nil
}

func (r *bookingRepo) fetchUsers(ctx context.Context, ids []string) (map[string]domain.User, error) {
	cur, err := r.db.Collection(collectionUsers).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("fetch booking users: %w", err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode booking users: %w", err)
	}
	out := make(map[string]domain.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *bookingRepo) fetchSlots(ctx context.Context, ids []string) (map[string]domain.Slot, error) {
	cur, err := r.db.Collection(collectionSlots).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("fetch booking slots: %w", err)
	}
	defer cur.Close(ctx)

	var slots []domain.Slot
	if err := cur.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("decode booking slots: %w", err)
	}
	out := make(map[string]domain.Slot, len(slots))
	for _, s := range slots {
		out[s.ID] = s
	}
	return out, nil
}
