package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvRedisURL = "REDIS_URL"

	EnvHotelTimezone   = "HOTEL_TIMEZONE"
	EnvDefaultCurrency = "DEFAULT_CURRENCY"
	EnvRoomLockTTL     = "ROOM_LOCK_TTL"

	EnvStripeSecretKey   = "STRIPE_SECRET_KEY"
	EnvPaymentSuccessURL = "PAYMENT_SUCCESS_URL"
	EnvPaymentCancelURL  = "PAYMENT_CANCEL_URL"

	EnvDocumentsBucket = "S3_DOCUMENTS_BUCKET"

	EnvExternalCallTimeout = "EXTERNAL_CALL_TIMEOUT"

	EnvSMTPHost     = "SMTP_HOST"
	EnvSMTPPort     = "SMTP_PORT"
	EnvSMTPUsername = "SMTP_USERNAME"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvMailFrom     = "MAIL_FROM"

	EnvSmartLockBaseURL = "SMART_LOCK_BASE_URL"
	EnvSmartLockAPIKey  = "SMART_LOCK_API_KEY"
	EnvSmartLockTimeout = "SMART_LOCK_TIMEOUT"

	EnvDocumentSealKey = "DOCUMENT_SEAL_KEY"
	EnvMaxDocumentSize = "MAX_DOCUMENT_SIZE"

	EnvAutoCheckoutAt           = "AUTO_CHECKOUT_AT"
	EnvAutoCheckoutWindow       = "AUTO_CHECKOUT_WINDOW"
	EnvAutoCheckoutLookbackDays = "AUTO_CHECKOUT_LOOKBACK_DAYS"
)
