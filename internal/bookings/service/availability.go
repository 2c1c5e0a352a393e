package service

import (
	"context"
	"time"

	"hotelops/internal/bookings/repository"
)

type AvailabilityChecker interface {
	// IsRoomAvailable reports whether no blocking booking of the room touches
	// any day of [start, end]. Pass a transaction context to make the answer
	// hold until the caller's insert commits.
	IsRoomAvailable(ctx context.Context, roomID string, start, end time.Time) (bool, error)
}

type availabilityChecker struct {
	repo repository.BookingRepository
}

func NewAvailabilityChecker(repo repository.BookingRepository) AvailabilityChecker {
	return &availabilityChecker{repo: repo}
}

func (c *availabilityChecker) IsRoomAvailable(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	count, err := c.repo.CountBlockingOverlaps(ctx, roomID, start, end)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
