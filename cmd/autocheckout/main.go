package main

import (
	"context"
	"os"
	"time"

	"hotelops/internal/autocheckout"
	bookingsrepo "hotelops/internal/bookings/repository"
	checkinsrepo "hotelops/internal/checkins/repository"
	checkinsservice "hotelops/internal/checkins/service"
	checkinsvalidator "hotelops/internal/checkins/validator"
	guestsrepo "hotelops/internal/guests/repository"
	roomsrepo "hotelops/internal/rooms/repository"
	"hotelops/pkg/config"
	"hotelops/pkg/logger"
)

const JobName = "auto-checkout"

type sweeper interface {
	Run(ctx context.Context, now time.Time) (autocheckout.Result, error)
}

// Runs a single sweep and exits, for hosts that schedule jobs externally.
// Shutdown runs before os.Exit, which skips deferred calls.
func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()

	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	// closing out stays needs neither sealing, notifications nor door locks
	checkIns := checkinsservice.NewCheckInService(
		checkinsservice.Repositories{
			CheckIns:  checkinsrepo.NewMongoCheckInRepository(cfg),
			CheckOuts: checkinsrepo.NewMongoCheckOutRepository(cfg),
			Invites:   checkinsrepo.NewMongoInviteRepository(cfg),
			Bookings:  bookingRepo,
			Rooms:     roomsrepo.NewMongoRoomRepository(cfg),
			Guests:    guestsrepo.NewMongoGuestRepository(cfg),
		},
		checkinsvalidator.NewCheckInValidator(cfg.Log, cfg.Location, cfg.MaxDocumentSize),
		nil,
		nil,
		nil,
		cfg,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	code := sweep(ctx, autocheckout.NewReconciler(bookingRepo, checkIns, cfg), time.Now(), cfg.Log)
	cancel()

	cfg.GracefulShutdown()
	os.Exit(code)
}

// sweep runs one reconciliation and returns the process exit code.
func sweep(ctx context.Context, reconciler sweeper, now time.Time, log *logger.Logger) int {
	result, err := reconciler.Run(ctx, now)
	if err != nil {
		log.Error("Auto-checkout sweep failed", "error", err)
		return 1
	}
	if result.Failed > 0 {
		log.Error("Auto-checkout sweep finished with failures",
			"bookings", result.Bookings,
			"check_outs", result.CheckOuts,
			"failed", result.Failed,
		)
		return 1
	}
	log.Info("Auto-checkout sweep completed", "bookings", result.Bookings, "check_outs", result.CheckOuts)
	return 0
}
