package repository

import (
	"context"
	"errors"
	"fmt"

	guestserrors "hotelops/internal/guests/errors"
	"hotelops/pkg/config"
	mongotx "hotelops/pkg/db/mongo"
	"hotelops/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionName = "Guests"

type GuestRepository interface {
	FindByID(ctx context.Context, id string) (*model.Guest, error)
	// FindByEmail expects an already normalized (lowercase) address.
	FindByEmail(ctx context.Context, email string) (*model.Guest, error)
}

type mongoGuestRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoGuestRepository(cfg *config.Config) GuestRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoGuestRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoGuestRepository) FindByID(ctx context.Context, id string) (*model.Guest, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", guestserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoGuestRepository) FindByEmail(ctx context.Context, email string) (*model.Guest, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoGuestRepository) findOne(ctx context.Context, filter bson.M) (*model.Guest, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var guest model.Guest
	err := r.collection.FindOne(ctx, filter).Decode(&guest)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, guestserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find guest: %w", err)
	}

	return &guest, nil
}
