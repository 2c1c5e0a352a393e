package repository

import (
	"context"
	"fmt"

	"hotelops/pkg/config"
	mongotx "hotelops/pkg/db/mongo"
	"hotelops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CheckOutCollectionName = "Check_outs"

type CheckOutRepository interface {
	CreateMany(ctx context.Context, checkOuts []*model.CheckOut) error
	CountByBooking(ctx context.Context, bookingID string) (int64, error)
	FindByBooking(ctx context.Context, bookingID string) ([]*model.CheckOut, error)
	FindByGuestEmail(ctx context.Context, guestEmail string) ([]*model.CheckOut, error)
	DeleteByBookingAndGuest(ctx context.Context, bookingID, guestEmail string) (int64, error)
}

type mongoCheckOutRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoCheckOutRepository(cfg *config.Config) CheckOutRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCheckOutRepository{
		cfg:        cfg,
		collection: db.Collection(CheckOutCollectionName),
	}
}

func (r *mongoCheckOutRepository) CreateMany(ctx context.Context, checkOuts []*model.CheckOut) error {
	if len(checkOuts) == 0 {
		return nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	docs := make([]any, len(checkOuts))
	for i, c := range checkOuts {
		docs[i] = c
	}
	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to create check-outs: %w", err)
	}
	return nil
}

func (r *mongoCheckOutRepository) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return 0, fmt.Errorf("failed to count check-outs: %w", err)
	}
	return count, nil
}

func (r *mongoCheckOutRepository) FindByBooking(ctx context.Context, bookingID string) ([]*model.CheckOut, error) {
	return r.find(ctx, bson.M{"booking_id": bookingID})
}

func (r *mongoCheckOutRepository) FindByGuestEmail(ctx context.Context, guestEmail string) ([]*model.CheckOut, error) {
	return r.find(ctx, bson.M{"guest_email": guestEmail})
}

func (r *mongoCheckOutRepository) find(ctx context.Context, filter bson.M) ([]*model.CheckOut, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "checked_out_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find check-outs: %w", err)
	}
	defer cursor.Close(ctx)

	var checkOuts []*model.CheckOut
	if err = cursor.All(ctx, &checkOuts); err != nil {
		return nil, fmt.Errorf("failed to decode check-outs: %w", err)
	}
	return checkOuts, nil
}

func (r *mongoCheckOutRepository) DeleteByBookingAndGuest(ctx context.Context, bookingID, guestEmail string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"booking_id": bookingID, "guest_email": guestEmail})
	if err != nil {
		return 0, fmt.Errorf("failed to delete check-outs: %w", err)
	}
	return result.DeletedCount, nil
}
