package main

import (
	"context"

	"hotelops/internal/autocheckout"
	bookingshandler "hotelops/internal/bookings/handler"
	bookingsrepo "hotelops/internal/bookings/repository"
	bookingsservice "hotelops/internal/bookings/service"
	bookingsvalidator "hotelops/internal/bookings/validator"
	checkinshandler "hotelops/internal/checkins/handler"
	checkinsrepo "hotelops/internal/checkins/repository"
	checkinsservice "hotelops/internal/checkins/service"
	checkinsvalidator "hotelops/internal/checkins/validator"
	guestsrepo "hotelops/internal/guests/repository"
	guestsservice "hotelops/internal/guests/service"
	"hotelops/internal/health"
	occupancyhandler "hotelops/internal/occupancy/handler"
	occupancyservice "hotelops/internal/occupancy/service"
	roomsrepo "hotelops/internal/rooms/repository"
	"hotelops/pkg/app"
	"hotelops/pkg/config"
	"hotelops/pkg/documents"
	"hotelops/pkg/kafka"
	kafka_config "hotelops/pkg/kafka/config"
	kafka_middleware "hotelops/pkg/kafka/middleware"
	"hotelops/pkg/notify"
	"hotelops/pkg/payment"
	"hotelops/pkg/sealer"
	"hotelops/pkg/smartlock"
)

const ServiceName = "hotel"

type services struct {
	bookings  bookingsservice.BookingService
	checkIns  checkinsservice.CheckInService
	occupancy occupancyservice.OccupancyService
	guests    guestsservice.GuestService
	bookRepo  bookingsrepo.BookingRepository
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()
	cfg.SetS3(ctx)
	cfg.SetStripe()

	producer := initProducer(cfg)
	svc := initServices(cfg, notify.NewKafkaNotifier(producer, cfg.Log))

	worker, err := autocheckout.NewWorker(ctx, autocheckout.NewReconciler(svc.bookRepo, svc.checkIns, cfg), cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create auto-checkout worker", "error", err)
	}
	worker.Start()

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func() {
		cancel()
		if err := worker.Stop(); err != nil {
			cfg.Log.Error("Failed to stop auto-checkout worker", "error", err)
		}
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close kafka producer", "error", err)
		}
	})
	serverApp.SetApp(
		health.NewHandler(cfg.Client.Mongo, cfg.Log),
		bookingshandler.NewBookingHandler(svc.bookings, svc.guests, cfg.Log),
		checkinshandler.NewCheckInHandler(svc.checkIns, cfg.Log),
		occupancyhandler.NewOccupancyHandler(svc.occupancy, cfg.Log),
	)
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.NotificationsTopic, kafkaCfg.NotificationsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	return producer
}

func initServices(cfg *config.Config, notifier notify.Notifier) services {
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	roomRepo := roomsrepo.NewMongoRoomRepository(cfg)
	guestRepo := guestsrepo.NewMongoGuestRepository(cfg)

	docSealer, err := sealer.New(cfg.DocumentSealKey)
	if err != nil {
		cfg.Log.Fatal("Identity documents cannot be sealed", "error", err)
	}

	bookingService := bookingsservice.NewBookingService(
		bookingRepo,
		bookingsrepo.NewMongoRoomLockRepository(cfg),
		roomRepo,
		guestRepo,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		bookingsservice.Collaborators{
			Payments:  payment.NewStripeGateway(cfg.Client.Stripe, cfg.PaymentSuccessURL, cfg.PaymentCancelURL, cfg.ExternalCallTimeout, cfg.Log),
			Renderer:  documents.NewHTMLRenderer(),
			Documents: documents.NewS3Store(cfg.Client.S3, cfg.DocumentsBucket, cfg.ExternalCallTimeout, cfg.Log),
			Notifier:  notifier,
		},
		cfg,
	)

	checkInService := checkinsservice.NewCheckInService(
		checkinsservice.Repositories{
			CheckIns:  checkinsrepo.NewMongoCheckInRepository(cfg),
			CheckOuts: checkinsrepo.NewMongoCheckOutRepository(cfg),
			Invites:   checkinsrepo.NewMongoInviteRepository(cfg),
			Bookings:  bookingRepo,
			Rooms:     roomRepo,
			Guests:    guestRepo,
		},
		checkinsvalidator.NewCheckInValidator(cfg.Log, cfg.Location, cfg.MaxDocumentSize),
		docSealer,
		notifier,
		smartlock.NewClient(cfg.SmartLockBaseURL, cfg.SmartLockAPIKey, cfg.SmartLockTimeout),
		cfg,
	)

	cfg.Log.Info("Hotel services initialized", "database", cfg.MongoDatabaseName)
	return services{
		bookings:  bookingService,
		checkIns:  checkInService,
		occupancy: occupancyservice.NewOccupancyService(roomRepo, bookingRepo, checkInService, cfg),
		guests:    guestsservice.NewGuestService(guestRepo, cfg.Log),
		bookRepo:  bookingRepo,
	}
}
