// Package autocheckout closes out guests who are still checked in when their
// stay ends.
package autocheckout

import (
	"context"
	"time"

	"hotelops/pkg/config"
	"hotelops/pkg/dates"
	"hotelops/pkg/logger"
	"hotelops/pkg/model"
)

// BookingFinder lists bookings by end date.
type BookingFinder interface {
	FindEndingBetween(ctx context.Context, from, to time.Time) ([]*model.Booking, error)
}

// Closer checks out every guest still present on a booking.
type Closer interface {
	CloseOutBooking(ctx context.Context, bookingID, reason string) (int, error)
}

type Result struct {
	Bookings  int `json:"bookings"`
	CheckOuts int `json:"checkouts"`
	Failed    int `json:"failed"`
}

type Reconciler struct {
	bookings BookingFinder
	closer   Closer
	cfg      *config.Config
	log      *logger.Logger
}

func NewReconciler(bookings BookingFinder, closer Closer, cfg *config.Config) *Reconciler {
	return &Reconciler{
		bookings: bookings,
		closer:   closer,
		cfg:      cfg,
		log:      cfg.Log.Component("autocheckout"),
	}
}

// Window returns the inclusive range of end dates swept on the day of now.
func (r *Reconciler) Window(now time.Time) (time.Time, time.Time) {
	today := dates.Day(now, r.cfg.Location)
	if r.cfg.AutoCheckoutWindow == config.AutoCheckoutWindowOverdue {
		return dates.AddDays(today, -r.cfg.AutoCheckoutLookbackDays), today
	}
	return today, today
}

// Run sweeps every booking ending inside the window. A failing booking is
// logged and counted; only a failure to list bookings aborts the sweep.
func (r *Reconciler) Run(ctx context.Context, now time.Time) (Result, error) {
	var result Result

	from, to := r.Window(now)
	bookings, err := r.bookings.FindEndingBetween(ctx, from, to)
	if err != nil {
		r.log.Error("Failed to list bookings for auto-checkout", "from", dates.Format(from), "to", dates.Format(to), "error", err)
		return result, err
	}

	r.log.Info("Auto-checkout started",
		"window", r.cfg.AutoCheckoutWindow,
		"from", dates.Format(from),
		"to", dates.Format(to),
		"bookings", len(bookings),
	)

	for _, booking := range bookings {
		if err := ctx.Err(); err != nil {
			r.log.Warn("Auto-checkout interrupted", "bookings", result.Bookings, "checkouts", result.CheckOuts, "failed", result.Failed)
			return result, err
		}

		result.Bookings++
		count, err := r.closer.CloseOutBooking(ctx, booking.ID, model.CheckOutReasonAuto)
		if err != nil {
			result.Failed++
			r.log.Error("Auto-checkout failed for booking",
				"booking_id", booking.ID,
				"error", err,
				"bookings", result.Bookings,
				"checkouts", result.CheckOuts,
				"failed", result.Failed,
			)
			continue
		}
		result.CheckOuts += count
	}

	r.log.Info("Auto-checkout finished", "bookings", result.Bookings, "checkouts", result.CheckOuts, "failed", result.Failed)
	return result, nil
}
