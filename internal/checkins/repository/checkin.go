package repository

import (
	"context"
	"fmt"
	"time"

	"hotelops/pkg/config"
	mongotx "hotelops/pkg/db/mongo"
	"hotelops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CheckInCollectionName = "Check_ins"

// CheckInRepository stores the append-only check-in log. Reads never load
// the sealed identity document.
type CheckInRepository interface {
	Create(ctx context.Context, checkIn *model.CheckIn) error
	CountByBooking(ctx context.Context, bookingID string) (int64, error)
	CountByBookingAndGuest(ctx context.Context, bookingID, guestEmail string) (int64, error)
	FindByBooking(ctx context.Context, bookingID string) ([]*model.CheckIn, error)
	FindByGuestEmail(ctx context.Context, guestEmail string) ([]*model.CheckIn, error)
	DeleteByBookingAndGuest(ctx context.Context, bookingID, guestEmail string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoCheckInRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoCheckInRepository(cfg *config.Config) CheckInRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCheckInRepository{
		cfg:        cfg,
		collection: db.Collection(CheckInCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoCheckInRepository) Create(ctx context.Context, checkIn *model.CheckIn) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if checkIn.CheckedInAt.IsZero() {
		checkIn.CheckedInAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	result, err := r.collection.InsertOne(ctx, checkIn)
	if err != nil {
		return fmt.Errorf("failed to create check-in: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		checkIn.ID = oid.Hex()
	}
	return nil
}

func (r *mongoCheckInRepository) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	return r.count(ctx, bson.M{"booking_id": bookingID})
}

func (r *mongoCheckInRepository) CountByBookingAndGuest(ctx context.Context, bookingID, guestEmail string) (int64, error) {
	return r.count(ctx, bson.M{"booking_id": bookingID, "guest_email": guestEmail})
}

func (r *mongoCheckInRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return count, nil
}

func (r *mongoCheckInRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.CheckIn, error) {
	return r.find(ctx, bson.M{"booking_id": bookingID})
}

func (r *mongoCheckInRepository) FindByGuestEmail(ctx context.Context, guestEmail string) ([]*model.CheckIn, error) {
	return r.find(ctx, bson.M{"guest_email": guestEmail})
}

func (r *mongoCheckInRepository) find(ctx context.Context, filter bson.M) ([]*model.CheckIn, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "checked_in_at", Value: 1}}).
		SetProjection(bson.M{"document": 0})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find check-ins: %w", err)
	}
	defer cursor.Close(ctx)

	var checkIns []*model.CheckIn
	if err = cursor.All(ctx, &checkIns); err != nil {
		return nil, fmt.Errorf("failed to decode check-ins: %w", err)
	}
	return checkIns, nil
}

func (r *mongoCheckInRepository) DeleteByBookingAndGuest(ctx context.Context, bookingID, guestEmail string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"booking_id": bookingID, "guest_email": guestEmail})
	if err != nil {
		return 0, fmt.Errorf("failed to delete check-ins: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoCheckInRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
