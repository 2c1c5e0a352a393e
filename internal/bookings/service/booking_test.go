package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingserrors "hotelops/internal/bookings/errors"
	"hotelops/internal/bookings/validator"
	"hotelops/internal/testutil"
	"hotelops/pkg/documents"
	apperrors "hotelops/pkg/errors"
	"hotelops/pkg/model"
	"hotelops/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingDay = time.Date(2024, 5, 20, 14, 0, 0, 0, time.UTC)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store     *testutil.Store
	svc       *bookingService
	payments  *testutil.Payments
	documents *testutil.Documents
	notifier  *testutil.Notifier
	room      *model.Room
	owner     *model.Guest
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testutil.NewStore()
	cfg := testutil.Config()
	f := &fixture{
		store:     store,
		payments:  &testutil.Payments{},
		documents: &testutil.Documents{},
		notifier:  &testutil.Notifier{},
	}
	f.room = store.AddRoom("X", 2, 12000)
	f.owner = store.AddGuest("owner@example.com", model.RoleGuest)

	svc := NewBookingService(
		testutil.BookingRepo{Store: store},
		testutil.RoomLockRepo{Store: store},
		testutil.RoomRepo{Store: store},
		testutil.GuestRepo{Store: store},
		validator.NewBookingValidator(cfg.Log),
		Collaborators{
			Payments:  f.payments,
			Renderer:  &testutil.Renderer{},
			Documents: f.documents,
			Notifier:  f.notifier,
		},
		cfg,
	)
	f.svc = svc.(*bookingService)
	f.svc.now = func() time.Time { return bookingDay }
	return f
}

func (f *fixture) request(start, end, method string) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{RoomID: f.room.ID, StartDate: start, EndDate: end, PaymentMethod: method}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

// ─── CreateBooking ───────────────────────────────────────────────────────────

func TestCreateBooking_CardPayment(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), f.owner.ID, f.request("2024-06-01", "2024-06-05", "Card"))
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.False(t, booking.Paid)
	assert.Equal(t, model.PaymentMethodCard, booking.PaymentMethod)
	assert.Equal(t, int64(4*12000), booking.TotalAmount)
	assert.Equal(t, "usd", booking.Currency)
	assert.Equal(t, day(time.June, 1), booking.StartDate)
	assert.Equal(t, f.owner.Email, booking.OwnerEmail)
	assert.Regexp(t, `^BK-20240520-[0-9A-F]{8}$`, booking.BookingNumber)
	assert.NotEmpty(t, booking.PaymentSessionID)
	assert.NotEmpty(t, booking.CheckoutURL)
	assert.Equal(t, []string{booking.BookingNumber}, f.payments.Sessions)

	assert.Equal(t, []string{booking.ID}, f.notifier.Confirmations)
	assert.ElementsMatch(t, []documents.Type{documents.TypeConfirmation, documents.TypeInvoice}, f.documents.Stored[booking.ID])
	assert.Empty(t, f.store.Locks, "room lock must be released")
}

func TestCreateBooking_OnSiteSkipsPayment(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), f.owner.ID, f.request("2024-06-01", "2024-06-02", "on_site"))
	require.NoError(t, err)
	assert.Empty(t, booking.PaymentSessionID)
	assert.Empty(t, f.payments.Sessions)
}

func TestCreateBooking_RejectsOverlaps(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		start     string
		end       string
		available bool
	}{
		{"inside a pending stay", model.BookingStatusPending, "2024-06-03", "2024-06-04", false},
		{"starting on the last day", model.BookingStatusActive, "2024-06-05", "2024-06-07", false},
		{"ending on the first day", model.BookingStatusCompleted, "2024-05-28", "2024-06-01", false},
		{"after the stay", model.BookingStatusPending, "2024-06-06", "2024-06-08", true},
		{"cancelled stay does not block", model.BookingStatusCancelled, "2024-06-03", "2024-06-04", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.store.AddBooking(f.room, f.owner, day(time.June, 1), day(time.June, 5), tt.status)

			_, err := f.svc.CreateBooking(context.Background(), f.owner.ID, f.request(tt.start, tt.end, "on_site"))
			if tt.available {
				require.NoError(t, err)
				return
			}
			assertCode(t, err, apperrors.CodeConflict)
			assert.Contains(t, err.Error(), "room is not available for the selected dates")
			assert.Len(t, f.store.Bookings, 1)
		})
	}
}

func TestCreateBooking_ValidationReportsEveryField(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), f.owner.ID, f.request("2024-05-10", "2024-05-09", "crypto"))

	appErr := apperrors.AsAppError(err)
	require.Equal(t, apperrors.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "start_date")
	assert.Contains(t, appErr.Details, "end_date")
	assert.Contains(t, appErr.Details, "payment_method")
	assert.Empty(t, f.store.Bookings)
}

func TestCreateBooking_MissingOwnerOrRoom(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateBooking(context.Background(), "665f1f77bcf86cd799439011", f.request("2024-06-01", "2024-06-02", "card"))
	assertCode(t, err, apperrors.CodeNotFound)

	req := f.request("2024-06-01", "2024-06-02", "card")
	req.RoomID = "665f1f77bcf86cd799439012"
	_, err = f.svc.CreateBooking(context.Background(), f.owner.ID, req)
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestCreateBooking_LockHeld(t *testing.T) {
	f := newFixture(t)
	_, err := testutil.RoomLockRepo{Store: f.store}.Acquire(context.Background(), f.room.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateBooking(context.Background(), f.owner.ID, f.request("2024-06-01", "2024-06-02", "card"))
	assertCode(t, err, apperrors.CodeConflict)
	assert.Empty(t, f.store.Bookings)
}

func TestCreateBooking_PaymentFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.payments.CreateErr = errors.New("stripe: card_declined")

	_, err := f.svc.CreateBooking(context.Background(), f.owner.ID, f.request("2024-06-01", "2024-06-02", "card"))
	assertCode(t, err, apperrors.CodeExternal)
	assert.Empty(t, f.store.Bookings)
	assert.Empty(t, f.store.Locks)
	assert.Empty(t, f.notifier.Confirmations)
}

func TestCreateBooking_SideEffectFailuresAreSwallowed(t *testing.T) {
	f := newFixture(t)
	f.notifier.Err = errors.New("broker down")
	f.documents.Err = errors.New("bucket missing")

	booking, err := f.svc.CreateBooking(context.Background(), f.owner.ID, f.request("2024-06-01", "2024-06-02", "card"))
	require.NoError(t, err)
	assert.NotNil(t, f.store.Booking(booking.ID))
}

func TestCreateBooking_ConcurrentRequestsNeverOverlap(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CreateBooking(context.Background(), f.owner.ID, f.request("2024-06-01", "2024-06-03", "on_site"))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Len(t, f.store.Bookings, 1)
}

func TestCreateBooking_ExpiredLockStaysWithNewHolder(t *testing.T) {
	f := newFixture(t)
	locks := testutil.RoomLockRepo{Store: f.store}

	var takeover *model.RoomLock
	f.payments.OnCreate = func(ctx context.Context) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok, "checkout session must be bounded by the lock expiry")
		assert.WithinDuration(t, time.Now().Add(f.store.LockTTL), deadline, time.Second)

		f.store.ExpireLock(f.room.ID)
		lock, err := locks.Acquire(ctx, f.room.ID)
		require.NoError(t, err)
		takeover = lock
	}

	_, err := f.svc.CreateBooking(context.Background(), f.owner.ID, f.request("2024-06-01", "2024-06-02", "card"))
	require.NoError(t, err)
	require.NotNil(t, takeover)

	require.Contains(t, f.store.Locks, takeover.ID)
	assert.Equal(t, takeover.Owner, f.store.Locks[takeover.ID].Owner)

	_, err = locks.Acquire(context.Background(), f.room.ID)
	assert.ErrorIs(t, err, bookingserrors.ErrLockHeld)

	require.NoError(t, locks.Release(context.Background(), takeover))
	assert.Empty(t, f.store.Locks)
}

func TestRoomLock_ReleaseRequiresOwnership(t *testing.T) {
	store := testutil.NewStore()
	locks := testutil.RoomLockRepo{Store: store}
	ctx := context.Background()

	first, err := locks.Acquire(ctx, "room1")
	require.NoError(t, err)

	store.ExpireLock("room1")
	second, err := locks.Acquire(ctx, "room1")
	require.NoError(t, err)
	assert.NotEqual(t, first.Owner, second.Owner)

	assert.ErrorIs(t, locks.Release(ctx, first), bookingserrors.ErrLockLost)

	_, err = locks.Acquire(ctx, "room1")
	assert.ErrorIs(t, err, bookingserrors.ErrLockHeld)
}

// ─── UpdatePaymentStatus ─────────────────────────────────────────────────────

func (f *fixture) cardBooking(t *testing.T) *model.Booking {
	t.Helper()
	booking, err := f.svc.CreateBooking(context.Background(), f.owner.ID, f.request("2024-06-01", "2024-06-05", "card"))
	require.NoError(t, err)
	return booking
}

func TestUpdatePaymentStatus_Settles(t *testing.T) {
	for _, outcome := range []payment.Outcome{payment.OutcomeSucceeded, payment.OutcomeProcessing} {
		t.Run(string(outcome), func(t *testing.T) {
			f := newFixture(t)
			booking := f.cardBooking(t)
			f.payments.Status = payment.Status{Outcome: outcome, PaymentIntentID: "pi_123"}

			updated, err := f.svc.UpdatePaymentStatus(context.Background(), booking.ID)
			require.NoError(t, err)
			assert.Equal(t, model.BookingStatusActive, updated.Status)
			assert.True(t, updated.Paid)
			assert.Equal(t, "pi_123", updated.PaymentIntentID)

			stored := f.store.Booking(booking.ID)
			assert.Equal(t, model.BookingStatusActive, stored.Status)
		})
	}
}

func TestUpdatePaymentStatus_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	booking := f.cardBooking(t)
	f.payments.Status = payment.Status{Outcome: payment.OutcomeSucceeded, PaymentIntentID: "pi_1"}

	_, err := f.svc.UpdatePaymentStatus(context.Background(), booking.ID)
	require.NoError(t, err)

	f.store.Errors["Bookings.Update"] = errors.New("no write expected")
	again, err := f.svc.UpdatePaymentStatus(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusActive, again.Status)
}

func TestUpdatePaymentStatus_LeavesStateAlone(t *testing.T) {
	t.Run("payment not settled", func(t *testing.T) {
		f := newFixture(t)
		booking := f.cardBooking(t)
		f.payments.Status = payment.Status{Outcome: payment.OutcomeFailed}

		updated, err := f.svc.UpdatePaymentStatus(context.Background(), booking.ID)
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusPending, updated.Status)
		assert.False(t, f.store.Booking(booking.ID).Paid)
	})

	t.Run("provider failure", func(t *testing.T) {
		f := newFixture(t)
		booking := f.cardBooking(t)
		f.payments.OutcomeErr = errors.New("timeout")

		_, err := f.svc.UpdatePaymentStatus(context.Background(), booking.ID)
		assertCode(t, err, apperrors.CodeExternal)
		assert.Equal(t, model.BookingStatusPending, f.store.Booking(booking.ID).Status)
	})

	t.Run("cancelled booking", func(t *testing.T) {
		f := newFixture(t)
		booking := f.cardBooking(t)
		_, err := f.svc.CancelBooking(context.Background(), booking.ID)
		require.NoError(t, err)
		f.payments.Status = payment.Status{Outcome: payment.OutcomeSucceeded}

		updated, err := f.svc.UpdatePaymentStatus(context.Background(), booking.ID)
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusCancelled, updated.Status)
		assert.Zero(t, f.payments.OutcomeCalls)
	})

	t.Run("no payment session", func(t *testing.T) {
		f := newFixture(t)
		booking := f.store.AddBooking(f.room, f.owner, day(time.June, 1), day(time.June, 2), model.BookingStatusPending)

		_, err := f.svc.UpdatePaymentStatus(context.Background(), booking.ID)
		assertCode(t, err, apperrors.CodeConflict)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.UpdatePaymentStatus(context.Background(), "665f1f77bcf86cd799439011")
		assertCode(t, err, apperrors.CodeNotFound)
	})
}

// ─── CancelBooking ───────────────────────────────────────────────────────────

func TestCancelBooking_SecondCancelConflicts(t *testing.T) {
	f := newFixture(t)
	booking := f.store.AddBooking(f.room, f.owner, day(time.June, 1), day(time.June, 5), model.BookingStatusPending)

	cancelled, err := f.svc.CancelBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationDate)
	assert.Equal(t, bookingDay, *cancelled.CancellationDate)
	assert.Equal(t, []string{booking.ID}, f.notifier.Cancellations)
	assert.Empty(t, f.payments.Refunds)

	before := f.store.Booking(booking.ID)
	_, err = f.svc.CancelBooking(context.Background(), booking.ID)
	assertCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, before, f.store.Booking(booking.ID))
}

func TestCancelBooking_RefundsPaidBookings(t *testing.T) {
	f := newFixture(t)
	booking := f.cardBooking(t)
	f.payments.Status = payment.Status{Outcome: payment.OutcomeSucceeded, PaymentIntentID: "pi_paid"}
	_, err := f.svc.UpdatePaymentStatus(context.Background(), booking.ID)
	require.NoError(t, err)
	f.payments.RefundErr = errors.New("refund window closed")

	cancelled, err := f.svc.CancelBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, []string{"pi_paid"}, f.payments.Refunds)
	assert.Contains(t, f.documents.Stored[booking.ID], documents.TypeCancellation)
}

func TestCancelBooking_ManuallyPaidSkipsRefund(t *testing.T) {
	f := newFixture(t)
	booking := f.store.AddBooking(f.room, f.owner, day(time.June, 1), day(time.June, 5), model.BookingStatusPending)
	_, err := f.svc.MarkAsPaidManually(context.Background(), booking.ID)
	require.NoError(t, err)

	cancelled, err := f.svc.CancelBooking(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, cancelled.Paid)
	assert.Empty(t, f.payments.Refunds)
}

func TestCancelBooking_CompletedConflicts(t *testing.T) {
	f := newFixture(t)
	booking := f.store.AddBooking(f.room, f.owner, day(time.May, 1), day(time.May, 3), model.BookingStatusCompleted)

	_, err := f.svc.CancelBooking(context.Background(), booking.ID)
	assertCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, model.BookingStatusCompleted, f.store.Booking(booking.ID).Status)
}

// ─── MarkAsPaidManually ──────────────────────────────────────────────────────

func TestMarkAsPaidManually(t *testing.T) {
	f := newFixture(t)
	booking := f.store.AddBooking(f.room, f.owner, day(time.June, 1), day(time.June, 5), model.BookingStatusPending)

	paid, err := f.svc.MarkAsPaidManually(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, model.BookingStatusPending, paid.Status)
	assert.True(t, f.store.Booking(booking.ID).Paid)

	_, err = f.svc.MarkAsPaidManually(context.Background(), booking.ID)
	assertCode(t, err, apperrors.CodeConflict)
}

// ─── Lookups ─────────────────────────────────────────────────────────────────

func TestGetByIDAndListByOwner(t *testing.T) {
	f := newFixture(t)
	booking := f.store.AddBooking(f.room, f.owner, day(time.June, 1), day(time.June, 5), model.BookingStatusPending)

	got, err := f.svc.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.BookingNumber, got.BookingNumber)

	_, err = f.svc.GetByID(context.Background(), "")
	assertCode(t, err, apperrors.CodeInvalidInput)
	_, err = f.svc.GetByID(context.Background(), "not-an-id")
	assertCode(t, err, apperrors.CodeInvalidInput)

	list, err := f.svc.ListByOwner(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	empty, err := f.svc.ListByOwner(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
