package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "hotelops/internal/bookings/errors"
	"hotelops/pkg/config"
	mongotx "hotelops/pkg/db/mongo"
	"hotelops/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Room_locks"

// RoomLockRepository provides the advisory lock that serializes booking
// creation for one room.
type RoomLockRepository interface {
	Acquire(ctx context.Context, roomID string) (*model.RoomLock, error)
	Release(ctx context.Context, lock *model.RoomLock) error
}

type mongoRoomLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomLockRepository(cfg *config.Config) RoomLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func LockID(roomID string) string {
	return "room_lock_" + roomID
}

// Acquire returns ErrLockHeld while another live lock exists for the room.
// A lock past its expiry is taken over even if the TTL monitor has not
// removed it yet, so callers must finish before the returned ExpiresAt.
func (r *mongoRoomLockRepository) Acquire(ctx context.Context, roomID string) (*model.RoomLock, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := &model.RoomLock{
		ID:        LockID(roomID),
		RoomID:    roomID,
		Owner:     uuid.NewString(),
		ExpiresAt: now.Add(r.cfg.RoomLockTTL),
		CreatedAt: now,
	}

	if _, err := r.collection.DeleteOne(ctx, expiredLockFilter(lock.ID, now)); err != nil {
		return nil, fmt.Errorf("failed to clear expired room lock: %w", err)
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire room lock: %w", err)
	}

	return lock, nil
}

// Release deletes the lock only while it still belongs to this acquisition.
// A lock that expired and was taken over is left to its new owner.
func (r *mongoRoomLockRepository) Release(ctx context.Context, lock *model.RoomLock) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, ownedLockFilter(lock))
	if err != nil {
		return fmt.Errorf("failed to release room lock: %w", err)
	}
	if res.DeletedCount == 0 {
		return bookingserrors.ErrLockLost
	}
	return nil
}

func expiredLockFilter(lockID string, now time.Time) bson.M {
	return bson.M{"_id": lockID, "expires_at": bson.M{"$lt": now}}
}

func ownedLockFilter(lock *model.RoomLock) bson.M {
	return bson.M{"_id": lock.ID, "owner": lock.Owner}
}
