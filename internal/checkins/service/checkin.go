package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "hotelops/internal/bookings/errors"
	bookingsrepo "hotelops/internal/bookings/repository"
	checkinserrors "hotelops/internal/checkins/errors"
	"hotelops/internal/checkins/repository"
	"hotelops/internal/checkins/validator"
	guestserrors "hotelops/internal/guests/errors"
	guestsrepo "hotelops/internal/guests/repository"
	roomsrepo "hotelops/internal/rooms/repository"
	"hotelops/pkg/config"
	"hotelops/pkg/dates"
	apperrors "hotelops/pkg/errors"
	"hotelops/pkg/model"
	"hotelops/pkg/notify"
	"hotelops/pkg/sanitizer"
	"hotelops/pkg/smartlock"
)

type CheckInService interface {
	CheckIn(ctx context.Context, req *model.CheckInRequest) (*model.CheckIn, error)
	AddToRoom(ctx context.Context, requesterEmail string, req *model.CheckInRequest) (*model.CheckIn, error)
	Invite(ctx context.Context, bookingID, ownerEmail, inviteeEmail string) (*model.RoomInvite, error)
	CheckOut(ctx context.Context, req *model.CheckOutRequest) (int, error)
	CloseOutBooking(ctx context.Context, bookingID, reason string) (int, error)
	Remove(ctx context.Context, staffEmail, bookingID, guestEmail string) error
	GetCheckedInStatus(ctx context.Context, guestEmail string) ([]*model.CheckedInStatus, error)
	GetGuestRooms(ctx context.Context, guestEmail string) ([]*model.GuestRoom, error)
	GetGuests(ctx context.Context, roomID, requesterEmail string) ([]*model.PresentGuest, error)
	IsBookingOccupied(ctx context.Context, bookingID string) (bool, error)
	OpenDoor(ctx context.Context, bookingID, guestEmail string) error
}

// DocumentSealer encrypts identity documents before they are stored.
type DocumentSealer interface {
	Seal(plaintext, associated []byte) ([]byte, error)
}

type Repositories struct {
	CheckIns  repository.CheckInRepository
	CheckOuts repository.CheckOutRepository
	Invites   repository.InviteRepository
	Bookings  bookingsrepo.BookingRepository
	Rooms     roomsrepo.RoomRepository
	Guests    guestsrepo.GuestRepository
}

type checkInService struct {
	repos     Repositories
	validator *validator.CheckInValidator
	sealer    DocumentSealer
	notifier  notify.Notifier
	locks     smartlock.Locks
	cfg       *config.Config
	now       func() time.Time
}

func NewCheckInService(
	repos Repositories,
	validator *validator.CheckInValidator,
	sealer DocumentSealer,
	notifier notify.Notifier,
	locks smartlock.Locks,
	cfg *config.Config,
) CheckInService {
	return &checkInService{
		repos:     repos,
		validator: validator,
		sealer:    sealer,
		notifier:  notifier,
		locks:     locks,
		cfg:       cfg,
		now:       time.Now,
	}
}

// admission is everything a check-in needs once identities are resolved.
type admission struct {
	booking *model.Booking
	guest   *model.Guest
	room    *model.Room
	invite  *model.RoomInvite
}

func (s *checkInService) CheckIn(ctx context.Context, req *model.CheckInRequest) (*model.CheckIn, error) {
	adm, err := s.prepareAdmission(ctx, req)
	if err != nil {
		return nil, err
	}

	if adm.guest.Email != adm.booking.OwnerEmail && adm.invite == nil {
		s.cfg.Log.Warn("Check-in rejected for uninvited guest", "booking_id", adm.booking.ID, "guest_email", adm.guest.Email)
		return nil, apperrors.Forbidden("Only the booking owner or an invited guest can check in")
	}

	return s.admit(ctx, req, adm)
}

func (s *checkInService) AddToRoom(ctx context.Context, requesterEmail string, req *model.CheckInRequest) (*model.CheckIn, error) {
	requesterEmail = sanitizer.NormalizeEmail(requesterEmail)

	adm, err := s.prepareAdmission(ctx, req)
	if err != nil {
		return nil, err
	}

	present, err := s.isPresent(ctx, adm.booking.ID, requesterEmail)
	if err != nil {
		return nil, err
	}
	if !present {
		staff, err := s.isStaff(ctx, requesterEmail)
		if err != nil {
			return nil, err
		}
		if !staff {
			return nil, apperrors.Forbidden("Only guests present in the room or staff can add a guest")
		}
	}

	return s.admit(ctx, req, adm)
}

// prepareAdmission sanitizes and validates the request and resolves the
// booking, guest, room and any invite it refers to.
func (s *checkInService) prepareAdmission(ctx context.Context, req *model.CheckInRequest) (*admission, error) {
	sanitizer.SanitizeCheckInRequest(req)

	if err := s.validator.ValidateCheckIn(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			s.cfg.Log.Warn("Check-in validation failed", "booking_id", req.BookingID, "error", err)
			return nil, apperrors.ValidationFields("Check-in validation failed", validationErrs.Fields())
		}
		return nil, apperrors.Internal("Failed to validate check-in", err)
	}

	booking, err := s.repos.Bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, mapBookingError(err, req.BookingID)
	}
	guest, err := s.repos.Guests.FindByEmail(ctx, req.GuestEmail)
	if err != nil {
		return nil, mapGuestError(err, req.GuestEmail)
	}
	room, err := s.repos.Rooms.FindByID(ctx, booking.RoomID)
	if err != nil {
		return nil, mapRoomError(err, booking.RoomID)
	}

	if booking.IsTerminal() {
		return nil, apperrors.Conflict("Booking is " + booking.Status)
	}
	if !booking.Covers(s.today()) {
		return nil, apperrors.Validation("Check-in is only possible during the booked stay", map[string]any{
			"start_date": dates.Format(booking.StartDate),
			"end_date":   dates.Format(booking.EndDate),
		})
	}

	invite, err := s.repos.Invites.Find(ctx, booking.ID, guest.Email)
	if err != nil && !errors.Is(err, checkinserrors.ErrInviteNotFound) {
		return nil, apperrors.Internal("Failed to retrieve invite", err)
	}

	return &admission{booking: booking, guest: guest, room: room, invite: invite}, nil
}

// admit appends the check-in and consumes the guest's invite in one transaction.
func (s *checkInService) admit(ctx context.Context, req *model.CheckInRequest, adm *admission) (*model.CheckIn, error) {
	sealed, err := s.sealer.Seal(req.Document, associatedData(adm.booking.ID, adm.guest.Email))
	if err != nil {
		return nil, apperrors.Internal("Failed to seal identity document", err)
	}

	checkIn := &model.CheckIn{
		BookingID:   adm.booking.ID,
		GuestID:     adm.guest.ID,
		GuestEmail:  adm.guest.Email,
		Profile:     req.Profile,
		Document:    sealed,
		CheckedInAt: s.now().UTC().Truncate(time.Millisecond),
	}

	err = s.repos.CheckIns.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimPresence(txCtx, adm.booking.ID); err != nil {
			return err
		}

		presence, err := s.presence(txCtx, adm.booking.ID)
		if err != nil {
			return err
		}
		if presence.isPresent(adm.guest.Email) {
			return apperrors.Conflict("Guest is already checked in")
		}

		occupancy, err := s.occupancy(txCtx, adm.booking.ID)
		if err != nil {
			return err
		}
		seats := occupancy
		if adm.invite == nil {
			invites, err := s.repos.Invites.CountByBooking(txCtx, adm.booking.ID)
			if err != nil {
				return apperrors.Internal("Failed to count invites", err)
			}
			seats += invites
		}
		if seats >= int64(adm.room.Capacity) {
			return apperrors.Conflict("room is at full capacity")
		}

		if err := s.repos.CheckIns.Create(txCtx, checkIn); err != nil {
			return apperrors.Internal("Failed to create check-in", err)
		}
		if adm.invite != nil {
			if err := s.repos.Invites.Delete(txCtx, adm.booking.ID, adm.guest.Email); err != nil {
				return apperrors.Internal("Failed to consume invite", err)
			}
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to check in guest", "booking_id", adm.booking.ID, "guest_email", adm.guest.Email, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Guest checked in",
		"id", checkIn.ID,
		"booking_id", checkIn.BookingID,
		"guest_email", checkIn.GuestEmail,
		"invited", adm.invite != nil,
	)

	checkIn.Document = nil
	return checkIn, nil
}

func (s *checkInService) Invite(ctx context.Context, bookingID, ownerEmail, inviteeEmail string) (*model.RoomInvite, error) {
	ownerEmail = sanitizer.NormalizeEmail(ownerEmail)
	inviteeEmail = sanitizer.NormalizeEmail(inviteeEmail)

	if err := s.validator.ValidateEmail("invitee_email", inviteeEmail); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, apperrors.ValidationFields("Invite validation failed", validationErrs.Fields())
		}
		return nil, apperrors.Internal("Failed to validate invite", err)
	}

	booking, err := s.repos.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, mapBookingError(err, bookingID)
	}
	if booking.OwnerEmail != ownerEmail {
		return nil, apperrors.Forbidden("Only the booking owner can invite guests")
	}
	if inviteeEmail == ownerEmail {
		return nil, apperrors.InvalidInput("The booking owner cannot invite themselves")
	}
	if booking.IsTerminal() {
		return nil, apperrors.Conflict("Booking is " + booking.Status)
	}
	room, err := s.repos.Rooms.FindByID(ctx, booking.RoomID)
	if err != nil {
		return nil, mapRoomError(err, booking.RoomID)
	}

	invite := &model.RoomInvite{
		BookingID:    booking.ID,
		InviterEmail: ownerEmail,
		InviteeEmail: inviteeEmail,
	}

	err = s.repos.CheckIns.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimPresence(txCtx, booking.ID); err != nil {
			return err
		}

		_, err := s.repos.Invites.Find(txCtx, booking.ID, inviteeEmail)
		switch {
		case err == nil:
			return apperrors.Conflict("guest already invited")
		case !errors.Is(err, checkinserrors.ErrInviteNotFound):
			return apperrors.Internal("Failed to retrieve invite", err)
		}

		occupancy, err := s.occupancy(txCtx, booking.ID)
		if err != nil {
			return err
		}
		invites, err := s.repos.Invites.CountByBooking(txCtx, booking.ID)
		if err != nil {
			return apperrors.Internal("Failed to count invites", err)
		}
		if occupancy+invites >= int64(room.Capacity) {
			return apperrors.Conflict("room is at full capacity")
		}

		if err := s.repos.Invites.Create(txCtx, invite); err != nil {
			if errors.Is(err, checkinserrors.ErrAlreadyInvited) {
				return apperrors.Conflict("guest already invited")
			}
			return apperrors.Internal("Failed to create invite", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Guest invited", "booking_id", booking.ID, "invitee_email", inviteeEmail)

	if err := s.notifier.SendInviteNotice(ctx, invite); err != nil {
		s.cfg.Log.Error("Failed to send invite notice", "booking_id", booking.ID, "invitee_email", inviteeEmail, "error", err)
	}
	return invite, nil
}

func (s *checkInService) CheckOut(ctx context.Context, req *model.CheckOutRequest) (int, error) {
	requester := sanitizer.NormalizeEmail(req.RequesterEmail)

	booking, err := s.repos.Bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return 0, mapBookingError(err, req.BookingID)
	}

	if booking.OwnerEmail != requester {
		present, err := s.isPresent(ctx, booking.ID, requester)
		if err != nil {
			return 0, err
		}
		if !present {
			staff, err := s.isStaff(ctx, requester)
			if err != nil {
				return 0, err
			}
			if !staff {
				return 0, apperrors.Forbidden("Only the booking owner, a present guest or staff can check out")
			}
		}
	}

	if s.today().Before(booking.StartDate) {
		return 0, apperrors.Validation("Check-out is not possible before the start date", map[string]any{
			"start_date": dates.Format(booking.StartDate),
		})
	}

	checkIns, err := s.repos.CheckIns.CountByBooking(ctx, booking.ID)
	if err != nil {
		return 0, apperrors.Internal("Failed to count check-ins", err)
	}
	if checkIns == 0 {
		return 0, apperrors.NotFound("Check-in for booking")
	}

	return s.closeOut(ctx, booking.ID, model.CheckOutReasonManual)
}

func (s *checkInService) CloseOutBooking(ctx context.Context, bookingID, reason string) (int, error) {
	booking, err := s.repos.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return 0, mapBookingError(err, bookingID)
	}
	return s.closeOut(ctx, booking.ID, reason)
}

// claimPresence must open every transaction that reads presence or seats and
// then writes check-ins, check-outs or invites. Counting alone takes no write
// lock, so two such transactions on one booking would both commit; bumping the
// booking's presence version makes them collide and the loser retries.
func (s *checkInService) claimPresence(ctx context.Context, bookingID string) error {
	err := s.repos.Bookings.TouchPresence(ctx, bookingID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bookingserrors.ErrNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		return mapBookingError(err, bookingID)
	}
	return apperrors.Internal("Failed to claim booking presence", err)
}

// closeOut appends one check-out for every guest still present on the booking.
func (s *checkInService) closeOut(ctx context.Context, bookingID, reason string) (int, error) {
	var checkOuts []*model.CheckOut

	err := s.repos.CheckIns.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		checkOuts = nil
		if err := s.claimPresence(txCtx, bookingID); err != nil {
			return err
		}

		presence, err := s.presence(txCtx, bookingID)
		if err != nil {
			return err
		}

		checkedOutAt := s.now().UTC().Truncate(time.Millisecond)
		for _, entry := range presence.present() {
			checkOuts = append(checkOuts, &model.CheckOut{
				BookingID:    bookingID,
				GuestID:      entry.guestID,
				GuestEmail:   entry.email,
				Reason:       reason,
				CheckedOutAt: checkedOutAt,
			})
		}
		if len(checkOuts) == 0 {
			return nil
		}

		if err := s.repos.CheckOuts.CreateMany(txCtx, checkOuts); err != nil {
			return apperrors.Internal("Failed to create check-outs", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to check out booking", "booking_id", bookingID, "reason", reason, "error", err)
		return 0, err
	}

	if len(checkOuts) > 0 {
		s.cfg.Log.Info("Guests checked out", "booking_id", bookingID, "reason", reason, "count", len(checkOuts))
	}
	return len(checkOuts), nil
}

func (s *checkInService) Remove(ctx context.Context, staffEmail, bookingID, guestEmail string) error {
	guestEmail = sanitizer.NormalizeEmail(guestEmail)

	staff, err := s.isStaff(ctx, sanitizer.NormalizeEmail(staffEmail))
	if err != nil {
		return err
	}
	if !staff {
		return apperrors.Forbidden("Only staff can remove a guest")
	}

	err = s.repos.CheckIns.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimPresence(txCtx, bookingID); err != nil {
			return err
		}

		deleted, err := s.repos.CheckIns.DeleteByBookingAndGuest(txCtx, bookingID, guestEmail)
		if err != nil {
			return apperrors.Internal("Failed to delete check-ins", err)
		}
		if deleted == 0 {
			return apperrors.NotFoundWithID("Check-in", guestEmail)
		}
		if _, err := s.repos.CheckOuts.DeleteByBookingAndGuest(txCtx, bookingID, guestEmail); err != nil {
			return apperrors.Internal("Failed to delete check-outs", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Guest removed from booking", "booking_id", bookingID, "guest_email", guestEmail, "staff_email", staffEmail)
	return nil
}

func (s *checkInService) OpenDoor(ctx context.Context, bookingID, guestEmail string) error {
	guestEmail = sanitizer.NormalizeEmail(guestEmail)

	booking, err := s.repos.Bookings.FindByID(ctx, bookingID)
	if err != nil {
		return mapBookingError(err, bookingID)
	}
	present, err := s.isPresent(ctx, booking.ID, guestEmail)
	if err != nil {
		return err
	}
	if !present {
		return apperrors.Forbidden("Only guests checked into the room can open the door")
	}

	room, err := s.repos.Rooms.FindByID(ctx, booking.RoomID)
	if err != nil {
		return mapRoomError(err, booking.RoomID)
	}
	if room.LockID == "" {
		return apperrors.NotFound("Smart lock")
	}

	reachable, err := s.locks.QueryLockReachable(ctx, room.LockID)
	if err != nil {
		s.cfg.Log.Error("Failed to query smart lock", "room_id", room.ID, "lock_id", room.LockID, "error", err)
		return apperrors.External("smart lock", err)
	}
	if !reachable {
		return apperrors.External("smart lock", errors.New("lock is not reachable"))
	}
	if err := s.locks.Unlock(ctx, room.LockID); err != nil {
		s.cfg.Log.Error("Failed to unlock smart lock", "room_id", room.ID, "lock_id", room.LockID, "error", err)
		return apperrors.External("smart lock", err)
	}

	s.cfg.Log.Info("Door opened", "booking_id", booking.ID, "room_id", room.ID, "guest_email", guestEmail)
	return nil
}

// --- Helpers ---

func (s *checkInService) today() time.Time {
	return dates.Day(s.now(), s.cfg.Location)
}

func (s *checkInService) isStaff(ctx context.Context, email string) (bool, error) {
	guest, err := s.repos.Guests.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, guestserrors.ErrNotFound) {
			return false, nil
		}
		return false, apperrors.Internal("Failed to retrieve guest", err)
	}
	return guest.IsStaff(), nil
}

func associatedData(bookingID, guestEmail string) []byte {
	return []byte(bookingID + ":" + guestEmail)
}
