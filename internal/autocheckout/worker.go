package autocheckout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hotelops/pkg/config"
	"hotelops/pkg/logger"

	"github.com/go-co-op/gocron/v2"
)

const JobName = "auto-checkout"

// Worker runs the reconciler once a day at the configured hotel-local time.
type Worker struct {
	scheduler  gocron.Scheduler
	job        gocron.Job
	reconciler *Reconciler
	timeout    time.Duration
	log        *logger.Logger
}

func NewWorker(ctx context.Context, reconciler *Reconciler, cfg *config.Config) (*Worker, error) {
	hour, minute, err := parseClock(cfg.AutoCheckoutAt)
	if err != nil {
		return nil, err
	}

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(cfg.Location))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	w := &Worker{
		scheduler:  scheduler,
		reconciler: reconciler,
		timeout:    time.Hour,
		log:        cfg.Log.Component("autocheckout-worker"),
	}

	w.job, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(hour, minute, 0))),
		gocron.NewTask(w.sweep, ctx),
		gocron.WithName(JobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule %s job: %w", JobName, err)
	}

	return w, nil
}

func (w *Worker) Start() {
	w.scheduler.Start()
	next, err := w.job.NextRun()
	if err != nil {
		w.log.Warn("Auto-checkout scheduled, next run unknown", "error", err)
		return
	}
	w.log.Info("Auto-checkout scheduled", "job", JobName, "next_run", next)
}

func (w *Worker) Stop() error {
	return w.scheduler.Shutdown()
}

func (w *Worker) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if _, err := w.reconciler.Run(ctx, time.Now()); err != nil {
		w.log.Error("Auto-checkout sweep failed", "error", err)
	}
}

// parseClock reads an HH:MM wall-clock time.
func parseClock(value string) (uint, uint, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return uint(hour), uint(minute), nil
}
