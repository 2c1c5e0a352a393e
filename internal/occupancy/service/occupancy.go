package service

import (
	"context"
	"errors"
	"time"

	bookingsrepo "hotelops/internal/bookings/repository"
	roomserrors "hotelops/internal/rooms/errors"
	roomsrepo "hotelops/internal/rooms/repository"
	"hotelops/pkg/config"
	"hotelops/pkg/dates"
	apperrors "hotelops/pkg/errors"
	"hotelops/pkg/model"
)

// PresenceReader answers whether anyone is inside the room of a booking.
type PresenceReader interface {
	IsBookingOccupied(ctx context.Context, bookingID string) (bool, error)
}

type OccupancyService interface {
	GetOccupancyStatus(ctx context.Context, roomID string) (*model.OccupancyStatus, error)
}

type occupancyService struct {
	rooms    roomsrepo.RoomRepository
	bookings bookingsrepo.BookingRepository
	presence PresenceReader
	cfg      *config.Config
	now      func() time.Time
}

func NewOccupancyService(
	rooms roomsrepo.RoomRepository,
	bookings bookingsrepo.BookingRepository,
	presence PresenceReader,
	cfg *config.Config,
) OccupancyService {
	return &occupancyService{
		rooms:    rooms,
		bookings: bookings,
		presence: presence,
		cfg:      cfg,
		now:      time.Now,
	}
}

// GetOccupancyStatus re-derives occupancy from the check-in and check-out logs
// of every booking whose stay includes today.
func (s *occupancyService) GetOccupancyStatus(ctx context.Context, roomID string) (*model.OccupancyStatus, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		switch {
		case errors.Is(err, roomserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Room", roomID)
		case errors.Is(err, roomserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve room", err)
	}

	now := s.now()
	bookings, err := s.bookings.FindCoveringDay(ctx, room.ID, dates.Day(now, s.cfg.Location))
	if err != nil {
		s.cfg.Log.Error("Failed to retrieve bookings for occupancy", "room_id", room.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	occupied := false
	for _, booking := range bookings {
		if booking.Status == model.BookingStatusCancelled {
			continue
		}
		occupied, err = s.presence.IsBookingOccupied(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if occupied {
			break
		}
	}

	status := &model.OccupancyStatus{
		RoomID:    room.ID,
		Occupied:  occupied,
		Status:    model.OccupancyNotOccupied,
		CheckedAt: now.UTC(),
	}
	if occupied {
		status.Status = model.OccupancyOccupied
	}
	return status, nil
}
