package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hotelops"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 8 * 1024 * 1024 // 8MB, check-in carries the identity document

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultHotelTimezone   = "UTC"
	DefaultDefaultCurrency = "usd"
	DefaultRoomLockTTL     = 90 * time.Second

	DefaultExternalCallTimeout = 10 * time.Second

	DefaultSMTPPort = 587
	DefaultMailFrom = "reservations@hotelops.local"

	DefaultSmartLockTimeout = 5 * time.Second

	DefaultMaxDocumentSize = 5 * 1024 * 1024

	DefaultAutoCheckoutAt           = "23:00"
	DefaultAutoCheckoutWindow       = AutoCheckoutWindowToday
	DefaultAutoCheckoutLookbackDays = 1
)

const (
	// AutoCheckoutWindowToday sweeps bookings whose end date is today.
	AutoCheckoutWindowToday = "today"
	// AutoCheckoutWindowOverdue also sweeps bookings that ended in the lookback window.
	AutoCheckoutWindowOverdue = "overdue"
)
