package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingserrors "hotelops/internal/bookings/errors"
	"hotelops/internal/bookings/repository"
	"hotelops/internal/bookings/validator"
	guestserrors "hotelops/internal/guests/errors"
	guestsrepo "hotelops/internal/guests/repository"
	roomserrors "hotelops/internal/rooms/errors"
	roomsrepo "hotelops/internal/rooms/repository"
	"hotelops/pkg/config"
	"hotelops/pkg/dates"
	"hotelops/pkg/documents"
	apperrors "hotelops/pkg/errors"
	"hotelops/pkg/model"
	"hotelops/pkg/notify"
	"hotelops/pkg/payment"

	"github.com/google/uuid"
)

type BookingService interface {
	CreateBooking(ctx context.Context, ownerID string, req *model.CreateBookingRequest) (*model.Booking, error)
	UpdatePaymentStatus(ctx context.Context, bookingID string) (*model.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*model.Booking, error)
	MarkAsPaidManually(ctx context.Context, bookingID string) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error)
}

// Collaborators are the external systems a booking talks to.
type Collaborators struct {
	Payments  payment.Gateway
	Renderer  documents.Renderer
	Documents documents.Store
	Notifier  notify.Notifier
}

type bookingService struct {
	repo         repository.BookingRepository
	lockRepo     repository.RoomLockRepository
	roomRepo     roomsrepo.RoomRepository
	guestRepo    guestsrepo.GuestRepository
	availability AvailabilityChecker
	validator    *validator.BookingValidator
	ext          Collaborators
	cfg          *config.Config
	now          func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.RoomLockRepository,
	roomRepo roomsrepo.RoomRepository,
	guestRepo guestsrepo.GuestRepository,
	validator *validator.BookingValidator,
	ext Collaborators,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		lockRepo:     lockRepo,
		roomRepo:     roomRepo,
		guestRepo:    guestRepo,
		availability: NewAvailabilityChecker(repo),
		validator:    validator,
		ext:          ext,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, ownerID string, req *model.CreateBookingRequest) (*model.Booking, error) {
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))

	today := s.today()
	if err := s.validator.ValidateCreate(req, today); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			s.cfg.Log.Warn("Booking validation failed", "owner_id", ownerID, "error", err)
			return nil, apperrors.ValidationFields("Booking validation failed", validationErrs.Fields())
		}
		return nil, apperrors.Internal("Failed to validate booking", err)
	}
	start, _ := dates.Parse(req.StartDate)
	end, _ := dates.Parse(req.EndDate)

	owner, err := s.guestRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, mapGuestError(err, ownerID)
	}
	room, err := s.roomRepo.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, mapRoomError(err, req.RoomID)
	}

	lock, err := s.acquireRoomLock(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		if releaseErr := s.lockRepo.Release(ctx, lock); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release room lock", "lock_id", lock.ID, "error", releaseErr)
		}
	}
	defer release()

	// Past ExpiresAt another request may take the lock, so nothing below may outlive it.
	lockedCtx, cancel := context.WithDeadline(ctx, lock.ExpiresAt)
	defer cancel()

	booking := &model.Booking{
		BookingNumber: newBookingNumber(today),
		RoomID:        room.ID,
		OwnerID:       owner.ID,
		OwnerEmail:    owner.Email,
		StartDate:     start,
		EndDate:       end,
		Status:        model.BookingStatusPending,
		PaymentMethod: req.PaymentMethod,
		Currency:      s.currency(room),
	}
	booking.TotalAmount = int64(booking.Nights()) * room.PricePerNight

	// The room lock keeps competing creates out until release. Stripe is called
	// outside the transaction body, which may run more than once.
	if err := s.ensureAvailable(lockedCtx, room.ID, start, end); err != nil {
		return nil, err
	}
	if booking.PaymentMethod == model.PaymentMethodCard {
		session, err := s.ext.Payments.CreateCheckoutSession(lockedCtx, booking.BookingNumber, booking.TotalAmount, booking.Currency)
		if err != nil {
			s.cfg.Log.Error("Failed to open checkout session", "booking_number", booking.BookingNumber, "error", err)
			return nil, apperrors.External("payment", err)
		}
		booking.PaymentSessionID = session.ID
		booking.CheckoutURL = session.URL
	}

	err = s.repo.ExecuteTransaction(lockedCtx, func(txCtx context.Context) error {
		if err := s.ensureAvailable(txCtx, room.ID, start, end); err != nil {
			return err
		}
		if err := s.repo.Create(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "room_id", room.ID, "owner_id", ownerID, "error", err)
		return nil, err
	}
	release()

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"booking_number", booking.BookingNumber,
		"room_id", booking.RoomID,
		"start_date", req.StartDate,
		"end_date", req.EndDate,
		"payment_method", booking.PaymentMethod,
	)

	s.sendConfirmation(ctx, booking, room)
	return booking, nil
}

func (s *bookingService) ensureAvailable(ctx context.Context, roomID string, start, end time.Time) error {
	available, err := s.availability.IsRoomAvailable(ctx, roomID, start, end)
	if err != nil {
		return apperrors.Internal("Failed to check room availability", err)
	}
	if !available {
		return apperrors.Conflict("room is not available for the selected dates")
	}
	return nil
}

func (s *bookingService) UpdatePaymentStatus(ctx context.Context, bookingID string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentSessionID == "" {
		return nil, apperrors.Conflict("Booking has no payment session")
	}
	if booking.IsTerminal() {
		return booking, nil
	}

	status, err := s.ext.Payments.GetPaymentOutcome(ctx, booking.PaymentSessionID)
	if err != nil {
		s.cfg.Log.Error("Failed to fetch payment outcome", "id", bookingID, "session_id", booking.PaymentSessionID, "error", err)
		return nil, apperrors.External("payment", err)
	}
	if !status.Outcome.Settled() {
		s.cfg.Log.Info("Payment not settled", "id", bookingID, "outcome", status.Outcome)
		return booking, nil
	}

	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.repo.FindByID(txCtx, bookingID)
		if err != nil {
			return mapBookingError(err, bookingID)
		}
		booking = current
		if booking.IsTerminal() {
			return nil
		}

		changed := false
		if booking.Status == model.BookingStatusPending {
			booking.Status = model.BookingStatusActive
			changed = true
		}
		if !booking.Paid {
			booking.Paid = true
			changed = true
		}
		if status.PaymentIntentID != "" && booking.PaymentIntentID != status.PaymentIntentID {
			booking.PaymentIntentID = status.PaymentIntentID
			changed = true
		}
		if !changed {
			return nil
		}

		if err := s.repo.Update(txCtx, booking); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		s.cfg.Log.Info("Booking payment settled", "id", booking.ID, "status", booking.Status, "outcome", status.Outcome)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	var booking *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.repo.FindByID(txCtx, bookingID)
		if err != nil {
			return mapBookingError(err, bookingID)
		}

		switch current.Status {
		case model.BookingStatusCancelled:
			return apperrors.Conflict("Booking is already cancelled")
		case model.BookingStatusCompleted:
			return apperrors.Conflict("Completed bookings cannot be cancelled")
		}

		cancelledAt := s.now().UTC().Truncate(time.Millisecond)
		current.Status = model.BookingStatusCancelled
		current.CancellationDate = &cancelledAt
		if err := s.repo.Update(txCtx, current); err != nil {
			return apperrors.Internal("Failed to cancel booking", err)
		}
		booking = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled", "id", booking.ID, "paid", booking.Paid)

	switch {
	case !booking.Paid:
	case booking.PaymentIntentID == "":
		s.cfg.Log.Info("Cancelled booking was paid outside the gateway, refund is manual", "id", booking.ID)
	default:
		if err := s.ext.Payments.Refund(ctx, booking.PaymentIntentID); err != nil {
			s.cfg.Log.Error("Failed to refund cancelled booking", "id", booking.ID, "payment_intent_id", booking.PaymentIntentID, "error", err)
		}
	}
	s.sendCancellation(ctx, booking)

	return booking, nil
}

func (s *bookingService) MarkAsPaidManually(ctx context.Context, bookingID string) (*model.Booking, error) {
	var booking *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.repo.FindByID(txCtx, bookingID)
		if err != nil {
			return mapBookingError(err, bookingID)
		}
		if current.Paid {
			return apperrors.Conflict("Booking is already paid")
		}

		current.Paid = true
		if err := s.repo.Update(txCtx, current); err != nil {
			return apperrors.Internal("Failed to update booking", err)
		}
		booking = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking marked as paid", "id", booking.ID)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapBookingError(err, id)
	}
	return booking, nil
}

func (s *bookingService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	bookings, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

// --- Helpers ---

func (s *bookingService) today() time.Time {
	return dates.Day(s.now(), s.cfg.Location)
}

func (s *bookingService) currency(room *model.Room) string {
	if room.Currency != "" {
		return strings.ToLower(room.Currency)
	}
	return s.cfg.DefaultCurrency
}

func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (*model.RoomLock, error) {
	lock, err := s.lockRepo.Acquire(ctx, roomID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return nil, apperrors.Conflict("This room is currently being booked by another request. Please try again.")
		}
		return nil, apperrors.Internal("Failed to acquire room lock", err)
	}
	return lock, nil
}

// sendConfirmation runs after commit; failures are logged and never undo the booking.
func (s *bookingService) sendConfirmation(ctx context.Context, booking *model.Booking, room *model.Room) {
	var docs []*documents.Document

	confirmation, err := s.ext.Renderer.RenderBookingConfirmation(booking, room)
	if err != nil {
		s.cfg.Log.Error("Failed to render booking confirmation", "id", booking.ID, "error", err)
	} else {
		docs = append(docs, confirmation)
	}

	invoice, err := s.ext.Renderer.RenderInvoice(booking, room)
	if err != nil {
		s.cfg.Log.Error("Failed to render invoice", "id", booking.ID, "error", err)
	} else {
		docs = append(docs, invoice)
	}

	for _, doc := range docs {
		s.storeDocument(ctx, booking, doc)
	}

	if err := s.ext.Notifier.SendBookingConfirmation(ctx, booking, docs); err != nil {
		s.cfg.Log.Error("Failed to send booking confirmation", "id", booking.ID, "error", err)
	}
}

func (s *bookingService) sendCancellation(ctx context.Context, booking *model.Booking) {
	room, err := s.roomRepo.FindByID(ctx, booking.RoomID)
	if err != nil {
		s.cfg.Log.Error("Failed to load room for cancellation notice", "id", booking.ID, "room_id", booking.RoomID, "error", err)
		return
	}

	notice, err := s.ext.Renderer.RenderCancellationNotice(booking, room)
	if err != nil {
		s.cfg.Log.Error("Failed to render cancellation notice", "id", booking.ID, "error", err)
	} else {
		s.storeDocument(ctx, booking, notice)
	}

	if err := s.ext.Notifier.SendCancellationNotice(ctx, booking, notice); err != nil {
		s.cfg.Log.Error("Failed to send cancellation notice", "id", booking.ID, "error", err)
	}
}

func (s *bookingService) storeDocument(ctx context.Context, booking *model.Booking, doc *documents.Document) {
	if _, err := s.ext.Documents.StoreDocument(ctx, booking.ID, doc); err != nil {
		s.cfg.Log.Error("Failed to store document", "id", booking.ID, "type", doc.Type, "error", err)
	}
}

func newBookingNumber(day time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("BK-%s-%s", day.Format("20060102"), suffix)
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

func mapGuestError(err error, id string) error {
	switch {
	case errors.Is(err, guestserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Guest", id)
	case errors.Is(err, guestserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid guest ID format")
	}
	return apperrors.Internal("Failed to retrieve guest", err)
}
