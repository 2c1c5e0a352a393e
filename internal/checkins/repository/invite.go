package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	checkinserrors "hotelops/internal/checkins/errors"
	"hotelops/pkg/config"
	mongotx "hotelops/pkg/db/mongo"
	"hotelops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const InviteCollectionName = "Room_invites"

type InviteRepository interface {
	// Create returns ErrAlreadyInvited when the (booking, invitee) pair exists.
	Create(ctx context.Context, invite *model.RoomInvite) error
	Find(ctx context.Context, bookingID, inviteeEmail string) (*model.RoomInvite, error)
	CountByBooking(ctx context.Context, bookingID string) (int64, error)
	Delete(ctx context.Context, bookingID, inviteeEmail string) error
}

type mongoInviteRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoInviteRepository(cfg *config.Config) InviteRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoInviteRepository{
		cfg:        cfg,
		collection: db.Collection(InviteCollectionName),
	}
}

func (r *mongoInviteRepository) Create(ctx context.Context, invite *model.RoomInvite) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	invite.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, invite)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return checkinserrors.ErrAlreadyInvited
		}
		return fmt.Errorf("failed to create invite: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		invite.ID = oid.Hex()
	}
	return nil
}

func (r *mongoInviteRepository) Find(ctx context.Context, bookingID, inviteeEmail string) (*model.RoomInvite, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var invite model.RoomInvite
	err := r.collection.FindOne(ctx, bson.M{"booking_id": bookingID, "invitee_email": inviteeEmail}).Decode(&invite)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, checkinserrors.ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}
	return &invite, nil
}

func (r *mongoInviteRepository) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"booking_id": bookingID})
	if err != nil {
		return 0, fmt.Errorf("failed to count invites: %w", err)
	}
	return count, nil
}

func (r *mongoInviteRepository) Delete(ctx context.Context, bookingID, inviteeEmail string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"booking_id": bookingID, "invitee_email": inviteeEmail})
	if err != nil {
		return fmt.Errorf("failed to delete invite: %w", err)
	}
	if result.DeletedCount == 0 {
		return checkinserrors.ErrInviteNotFound
	}
	return nil
}
