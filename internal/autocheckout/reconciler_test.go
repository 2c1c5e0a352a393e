package autocheckout

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	checkinsservice "hotelops/internal/checkins/service"
	"hotelops/internal/checkins/validator"
	"hotelops/internal/testutil"
	"hotelops/pkg/config"
	"hotelops/pkg/dates"
	"hotelops/pkg/model"
	"hotelops/pkg/sealer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCheckInService(t *testing.T, store *testutil.Store, cfg *config.Config) checkinsservice.CheckInService {
	t.Helper()

	docSealer, err := sealer.New(base64.StdEncoding.EncodeToString(make([]byte, 32)))
	require.NoError(t, err)

	return checkinsservice.NewCheckInService(
		checkinsservice.Repositories{
			CheckIns:  testutil.CheckInRepo{Store: store},
			CheckOuts: testutil.CheckOutRepo{Store: store},
			Invites:   testutil.InviteRepo{Store: store},
			Bookings:  testutil.BookingRepo{Store: store},
			Rooms:     testutil.RoomRepo{Store: store},
			Guests:    testutil.GuestRepo{Store: store},
		},
		validator.NewCheckInValidator(cfg.Log, cfg.Location, cfg.MaxDocumentSize),
		docSealer,
		&testutil.Notifier{},
		&testutil.Locks{},
		cfg,
	)
}

func checkIn(t *testing.T, svc checkinsservice.CheckInService, booking *model.Booking, email string) {
	t.Helper()
	_, err := svc.CheckIn(context.Background(), &model.CheckInRequest{
		BookingID:  booking.ID,
		GuestEmail: email,
		Profile: model.GuestProfile{
			FirstName:      "Guest",
			LastName:       "Example",
			BirthDate:      "1988-08-08",
			Nationality:    "IT",
			DocumentType:   model.DocumentTypeIDCard,
			DocumentNumber: "CA00000AA",
		},
		Document: []byte("scan"),
	})
	require.NoError(t, err)
}

func TestRun_SecondSweepIsNoop(t *testing.T) {
	store := testutil.NewStore()
	cfg := testutil.Config()
	checkIns := newCheckInService(t, store, cfg)
	reconciler := NewReconciler(testutil.BookingRepo{Store: store}, checkIns, cfg)

	now := time.Now()
	today := dates.Day(now, cfg.Location)
	room := store.AddRoom("12", 2, 10000)
	other := store.AddRoom("14", 2, 10000)
	ann := store.AddGuest("ann@example.com", model.RoleGuest)
	ben := store.AddGuest("ben@example.com", model.RoleGuest)

	endingToday := store.AddBooking(room, ann, dates.AddDays(today, -2), today, model.BookingStatusActive)
	endingLater := store.AddBooking(other, ben, dates.AddDays(today, -1), dates.AddDays(today, 1), model.BookingStatusActive)
	checkIn(t, checkIns, endingToday, ann.Email)
	checkIn(t, checkIns, endingLater, ben.Email)

	first, err := reconciler.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, Result{Bookings: 1, CheckOuts: 1}, first)

	second, err := reconciler.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, Result{Bookings: 1, CheckOuts: 0}, second)

	occupied, err := checkIns.IsBookingOccupied(context.Background(), endingLater.ID)
	require.NoError(t, err)
	assert.True(t, occupied)

	require.Len(t, store.CheckOuts, 1)
	assert.Equal(t, model.CheckOutReasonAuto, store.CheckOuts[0].Reason)
}

type scriptedCloser struct {
	failures map[string]error
	counts   map[string]int
	calls    []string
}

func (c *scriptedCloser) CloseOutBooking(_ context.Context, bookingID, reason string) (int, error) {
	c.calls = append(c.calls, bookingID)
	if err, ok := c.failures[bookingID]; ok {
		return 0, err
	}
	return c.counts[bookingID], nil
}

func TestRun_ContinuesPastFailures(t *testing.T) {
	store := testutil.NewStore()
	cfg := testutil.Config()

	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	room := store.AddRoom("1", 2, 100)
	guest := store.AddGuest("g@example.com", model.RoleGuest)
	a := store.AddBooking(room, guest, day.AddDate(0, 0, -3), day, model.BookingStatusActive)
	b := store.AddBooking(room, guest, day.AddDate(0, 0, -4), day, model.BookingStatusActive)

	closer := &scriptedCloser{
		failures: map[string]error{a.ID: errors.New("write conflict")},
		counts:   map[string]int{b.ID: 2},
	}
	reconciler := NewReconciler(testutil.BookingRepo{Store: store}, closer, cfg)

	result, err := reconciler.Run(context.Background(), day.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, Result{Bookings: 2, CheckOuts: 2, Failed: 1}, result)
	assert.Len(t, closer.calls, 2)
}

func TestRun_ListFailureAborts(t *testing.T) {
	store := testutil.NewStore()
	store.Errors["Bookings.FindEndingBetween"] = errors.New("no primary")
	closer := &scriptedCloser{}
	reconciler := NewReconciler(testutil.BookingRepo{Store: store}, closer, testutil.Config())

	_, err := reconciler.Run(context.Background(), time.Now())
	assert.Error(t, err)
	assert.Empty(t, closer.calls)
}

func TestWindow(t *testing.T) {
	now := time.Date(2024, 6, 5, 22, 30, 0, 0, time.UTC)
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	t.Run("today", func(t *testing.T) {
		r := NewReconciler(nil, nil, testutil.Config())
		from, to := r.Window(now)
		assert.Equal(t, day, from)
		assert.Equal(t, day, to)
	})

	t.Run("overdue", func(t *testing.T) {
		cfg := testutil.Config()
		cfg.AutoCheckoutWindow = config.AutoCheckoutWindowOverdue
		cfg.AutoCheckoutLookbackDays = 3
		from, to := NewReconciler(nil, nil, cfg).Window(now)
		assert.Equal(t, day.AddDate(0, 0, -3), from)
		assert.Equal(t, day, to)
	})

	t.Run("hotel time zone", func(t *testing.T) {
		cfg := testutil.Config()
		tokyo, err := time.LoadLocation("Asia/Tokyo")
		require.NoError(t, err)
		cfg.Location = tokyo
		from, _ := NewReconciler(nil, nil, cfg).Window(now)
		assert.Equal(t, day.AddDate(0, 0, 1), from)
	})
}
