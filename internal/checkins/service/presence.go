package service

import (
	"context"
	"errors"
	"sort"
	"time"

	bookingserrors "hotelops/internal/bookings/errors"
	guestserrors "hotelops/internal/guests/errors"
	roomserrors "hotelops/internal/rooms/errors"
	apperrors "hotelops/pkg/errors"
	"hotelops/pkg/model"
	"hotelops/pkg/sanitizer"
)

// presenceEntry is the net check-in count of one guest on one booking.
type presenceEntry struct {
	bookingID    string
	guestID      string
	email        string
	profile      model.GuestProfile
	checkIns     int
	checkOuts    int
	firstCheckIn time.Time
}

func (e *presenceEntry) present() bool {
	return e.checkIns-e.checkOuts > 0
}

// presenceLog folds check-in and check-out rows into per-guest entries,
// keeping first-seen order.
type presenceLog struct {
	entries map[string]*presenceEntry
	order   []string
}

func newPresenceLog() *presenceLog {
	return &presenceLog{entries: map[string]*presenceEntry{}}
}

func key(bookingID, email string) string {
	return bookingID + "|" + email
}

func (l *presenceLog) addCheckIn(c *model.CheckIn) {
	k := key(c.BookingID, c.GuestEmail)
	entry, ok := l.entries[k]
	if !ok {
		entry = &presenceEntry{bookingID: c.BookingID, guestID: c.GuestID, email: c.GuestEmail, firstCheckIn: c.CheckedInAt}
		l.entries[k] = entry
		l.order = append(l.order, k)
	}
	if c.CheckedInAt.Before(entry.firstCheckIn) {
		entry.firstCheckIn = c.CheckedInAt
	}
	entry.profile = c.Profile
	entry.checkIns++
}

func (l *presenceLog) addCheckOut(c *model.CheckOut) {
	if entry, ok := l.entries[key(c.BookingID, c.GuestEmail)]; ok {
		entry.checkOuts++
	}
}

func (l *presenceLog) all() []*presenceEntry {
	out := make([]*presenceEntry, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, l.entries[k])
	}
	return out
}

func (l *presenceLog) present() []*presenceEntry {
	var out []*presenceEntry
	for _, entry := range l.all() {
		if entry.present() {
			out = append(out, entry)
		}
	}
	return out
}

// isPresent expects a log built for a single booking.
func (l *presenceLog) isPresent(email string) bool {
	for _, entry := range l.entries {
		if entry.email == email && entry.present() {
			return true
		}
	}
	return false
}

func (s *checkInService) presence(ctx context.Context, bookingID string) (*presenceLog, error) {
	checkIns, err := s.repos.CheckIns.FindByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve check-ins", err)
	}
	checkOuts, err := s.repos.CheckOuts.FindByBooking(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve check-outs", err)
	}

	log := newPresenceLog()
	for _, c := range checkIns {
		log.addCheckIn(c)
	}
	for _, c := range checkOuts {
		log.addCheckOut(c)
	}
	return log, nil
}

func (s *checkInService) isPresent(ctx context.Context, bookingID, email string) (bool, error) {
	log, err := s.presence(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return log.isPresent(email), nil
}

// occupancy is the number of guests currently in the room of a booking.
func (s *checkInService) occupancy(ctx context.Context, bookingID string) (int64, error) {
	checkIns, err := s.repos.CheckIns.CountByBooking(ctx, bookingID)
	if err != nil {
		return 0, apperrors.Internal("Failed to count check-ins", err)
	}
	checkOuts, err := s.repos.CheckOuts.CountByBooking(ctx, bookingID)
	if err != nil {
		return 0, apperrors.Internal("Failed to count check-outs", err)
	}
	return checkIns - checkOuts, nil
}

func (s *checkInService) IsBookingOccupied(ctx context.Context, bookingID string) (bool, error) {
	log, err := s.presence(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return len(log.present()) > 0, nil
}

// guestLog builds the presence log of one guest across every booking.
func (s *checkInService) guestLog(ctx context.Context, guestEmail string) (*presenceLog, error) {
	checkIns, err := s.repos.CheckIns.FindByGuestEmail(ctx, guestEmail)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve check-ins", err)
	}
	checkOuts, err := s.repos.CheckOuts.FindByGuestEmail(ctx, guestEmail)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve check-outs", err)
	}

	log := newPresenceLog()
	for _, c := range checkIns {
		log.addCheckIn(c)
	}
	for _, c := range checkOuts {
		log.addCheckOut(c)
	}
	return log, nil
}

func (s *checkInService) GetCheckedInStatus(ctx context.Context, guestEmail string) ([]*model.CheckedInStatus, error) {
	log, err := s.guestLog(ctx, sanitizer.NormalizeEmail(guestEmail))
	if err != nil {
		return nil, err
	}

	statuses := []*model.CheckedInStatus{}
	for _, entry := range log.all() {
		booking, err := s.repos.Bookings.FindByID(ctx, entry.bookingID)
		if err != nil {
			return nil, mapBookingError(err, entry.bookingID)
		}
		statuses = append(statuses, &model.CheckedInStatus{
			BookingID:   entry.bookingID,
			RoomID:      booking.RoomID,
			CheckedInAt: entry.firstCheckIn,
			Present:     entry.present(),
		})
	}

	sort.SliceStable(statuses, func(i, j int) bool { return statuses[i].CheckedInAt.Before(statuses[j].CheckedInAt) })
	return statuses, nil
}

func (s *checkInService) GetGuestRooms(ctx context.Context, guestEmail string) ([]*model.GuestRoom, error) {
	statuses, err := s.GetCheckedInStatus(ctx, guestEmail)
	if err != nil {
		return nil, err
	}

	rooms := []*model.GuestRoom{}
	seen := map[string]bool{}
	for _, status := range statuses {
		if !status.Present || seen[status.RoomID] {
			continue
		}
		seen[status.RoomID] = true

		room, err := s.repos.Rooms.FindByID(ctx, status.RoomID)
		if err != nil {
			return nil, mapRoomError(err, status.RoomID)
		}
		rooms = append(rooms, &model.GuestRoom{
			RoomID:      room.ID,
			RoomNumber:  room.Number,
			BookingID:   status.BookingID,
			CheckedInAt: status.CheckedInAt,
		})
	}
	return rooms, nil
}

func (s *checkInService) GetGuests(ctx context.Context, roomID, requesterEmail string) ([]*model.PresentGuest, error) {
	requesterEmail = sanitizer.NormalizeEmail(requesterEmail)

	room, err := s.repos.Rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, mapRoomError(err, roomID)
	}
	bookings, err := s.repos.Bookings.FindCoveringDay(ctx, room.ID, s.today())
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	guests := []*model.PresentGuest{}
	allowed := false
	for _, booking := range bookings {
		if booking.Status == model.BookingStatusCancelled {
			continue
		}
		if booking.OwnerEmail == requesterEmail {
			allowed = true
		}

		log, err := s.presence(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		for _, entry := range log.present() {
			if entry.email == requesterEmail {
				allowed = true
			}
			guests = append(guests, &model.PresentGuest{
				BookingID:   booking.ID,
				GuestEmail:  entry.email,
				FirstName:   entry.profile.FirstName,
				LastName:    entry.profile.LastName,
				CheckedInAt: entry.firstCheckIn,
			})
		}
	}

	if !allowed {
		staff, err := s.isStaff(ctx, requesterEmail)
		if err != nil {
			return nil, err
		}
		if !staff {
			return nil, apperrors.Forbidden("Only the booking owner, a present guest or staff can list guests")
		}
	}
	return guests, nil
}

func mapBookingError(err error, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case apperrors.IsAppError(err):
		return err
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}

func mapRoomError(err error, id string) error {
	switch {
	case errors.Is(err, roomserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Room", id)
	case errors.Is(err, roomserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID format")
	}
	return apperrors.Internal("Failed to retrieve room", err)
}

func mapGuestError(err error, email string) error {
	if errors.Is(err, guestserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Guest", email)
	}
	return apperrors.Internal("Failed to retrieve guest", err)
}
