package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"hotelops/pkg/client"
	"hotelops/pkg/logger"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	clockRegex    = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	mongoURIRegex = regexp.MustCompile(`^mongodb(\+srv)?://`)
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	RedisURL string

	HotelTimezone   string
	Location        *time.Location
	DefaultCurrency string
	RoomLockTTL     time.Duration

	StripeSecretKey   string
	PaymentSuccessURL string
	PaymentCancelURL  string

	DocumentsBucket string

	ExternalCallTimeout time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	SmartLockBaseURL string
	SmartLockAPIKey  string
	SmartLockTimeout time.Duration

	DocumentSealKey string
	MaxDocumentSize int

	AutoCheckoutAt           string
	AutoCheckoutWindow       string
	AutoCheckoutLookbackDays int

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		RedisURL: getEnvStr(EnvRedisURL, ""),

		HotelTimezone:   getEnvStr(EnvHotelTimezone, DefaultHotelTimezone),
		DefaultCurrency: strings.ToLower(getEnvStr(EnvDefaultCurrency, DefaultDefaultCurrency)),
		RoomLockTTL:     getEnvDuration(EnvRoomLockTTL, DefaultRoomLockTTL),

		StripeSecretKey:   getEnvStr(EnvStripeSecretKey, ""),
		PaymentSuccessURL: getEnvStr(EnvPaymentSuccessURL, ""),
		PaymentCancelURL:  getEnvStr(EnvPaymentCancelURL, ""),

		DocumentsBucket: getEnvStr(EnvDocumentsBucket, ""),

		ExternalCallTimeout: getEnvDuration(EnvExternalCallTimeout, DefaultExternalCallTimeout),

		SMTPHost:     getEnvStr(EnvSMTPHost, ""),
		SMTPPort:     getEnvNum(EnvSMTPPort, DefaultSMTPPort),
		SMTPUsername: getEnvStr(EnvSMTPUsername, ""),
		SMTPPassword: getEnvStr(EnvSMTPPassword, ""),
		MailFrom:     getEnvStr(EnvMailFrom, DefaultMailFrom),

		SmartLockBaseURL: getEnvStr(EnvSmartLockBaseURL, ""),
		SmartLockAPIKey:  getEnvStr(EnvSmartLockAPIKey, ""),
		SmartLockTimeout: getEnvDuration(EnvSmartLockTimeout, DefaultSmartLockTimeout),

		DocumentSealKey: getEnvStr(EnvDocumentSealKey, ""),
		MaxDocumentSize: getEnvNum(EnvMaxDocumentSize, DefaultMaxDocumentSize),

		AutoCheckoutAt:           getEnvStr(EnvAutoCheckoutAt, DefaultAutoCheckoutAt),
		AutoCheckoutWindow:       getEnvStr(EnvAutoCheckoutWindow, DefaultAutoCheckoutWindow),
		AutoCheckoutLookbackDays: getEnvNum(EnvAutoCheckoutLookbackDays, DefaultAutoCheckoutLookbackDays),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the shared Redis client when REDIS_URL is configured.
func (cfg *Config) SetRedis() {
	if cfg.RedisURL == "" {
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisURL, cfg.MongoConnTimeout)
}

func (cfg *Config) SetS3(ctx context.Context) {
	if cfg.DocumentsBucket == "" {
		cfg.Log.Warn("S3 documents bucket not configured, documents will not be stored")
		return
	}
	cfg.Client.SetS3(ctx, cfg.Log)
}

func (cfg *Config) SetStripe() {
	cfg.Client.SetStripe(cfg.Log, cfg.StripeSecretKey)
}

// BookingCreateBudget is the longest a booking create can hold its room lock:
// the availability read, the checkout session call and the insert transaction.
func (cfg *Config) BookingCreateBudget() time.Duration {
	return 2*cfg.ReadTimeout + cfg.ExternalCallTimeout + cfg.WriteTimeout
}

// Validate collects every configuration problem and reports them together.
func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"RoomLockTTL", cfg.RoomLockTTL},
		{"SmartLockTimeout", cfg.SmartLockTimeout},
		{"ExternalCallTimeout", cfg.ExternalCallTimeout},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.RoomLockTTL > 0 && cfg.RoomLockTTL <= cfg.BookingCreateBudget() {
		errors = append(errors, fmt.Sprintf("RoomLockTTL (%s) must exceed the booking create path (%s)", cfg.RoomLockTTL, cfg.BookingCreateBudget()))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.MaxDocumentSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxDocumentSize must be positive, got: %d", cfg.MaxDocumentSize))
	} else if cfg.MaxDocumentSize >= cfg.MaxRequestSize {
		errors = append(errors, fmt.Sprintf("MaxDocumentSize (%d) must be smaller than MaxRequestSize (%d)", cfg.MaxDocumentSize, cfg.MaxRequestSize))
	}

	loc, err := time.LoadLocation(cfg.HotelTimezone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("HotelTimezone must be a valid IANA time zone, got: %s", cfg.HotelTimezone))
	} else {
		cfg.Location = loc
	}

	if len(cfg.DefaultCurrency) != 3 {
		errors = append(errors, fmt.Sprintf("DefaultCurrency must be a 3-letter ISO code, got: %s", cfg.DefaultCurrency))
	}

	if cfg.SMTPPort < 1 || cfg.SMTPPort > 65535 {
		errors = append(errors, fmt.Sprintf("SMTPPort must be between 1 and 65535, got: %d", cfg.SMTPPort))
	}

	if cfg.DocumentSealKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.DocumentSealKey)
		if err != nil || len(key) != 32 {
			errors = append(errors, "DocumentSealKey must be a base64-encoded 32-byte key")
		}
	}

	if !clockRegex.MatchString(cfg.AutoCheckoutAt) {
		errors = append(errors, fmt.Sprintf("AutoCheckoutAt must be in HH:MM format (00:00-23:59), got: %s", cfg.AutoCheckoutAt))
	}
	if cfg.AutoCheckoutWindow != AutoCheckoutWindowToday && cfg.AutoCheckoutWindow != AutoCheckoutWindowOverdue {
		errors = append(errors, fmt.Sprintf("AutoCheckoutWindow must be '%s' or '%s', got: %s", AutoCheckoutWindowToday, AutoCheckoutWindowOverdue, cfg.AutoCheckoutWindow))
	}
	if cfg.AutoCheckoutLookbackDays < 0 {
		errors = append(errors, fmt.Sprintf("AutoCheckoutLookbackDays cannot be negative, got: %d", cfg.AutoCheckoutLookbackDays))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"redis_enabled", cfg.RedisURL != "",
		"hotel_timezone", cfg.HotelTimezone,
		"default_currency", cfg.DefaultCurrency,
		"room_lock_ttl", cfg.RoomLockTTL,
		"stripe_key_set", cfg.StripeSecretKey != "",
		"documents_bucket", cfg.DocumentsBucket,
		"external_call_timeout", cfg.ExternalCallTimeout,
		"smtp_host", cfg.SMTPHost,
		"smtp_port", cfg.SMTPPort,
		"mail_from", cfg.MailFrom,
		"smart_lock_base_url", cfg.SmartLockBaseURL,
		"smart_lock_timeout", cfg.SmartLockTimeout,
		"document_seal_key_set", cfg.DocumentSealKey != "",
		"max_document_size", cfg.MaxDocumentSize,
		"auto_checkout_at", cfg.AutoCheckoutAt,
		"auto_checkout_window", cfg.AutoCheckoutWindow,
		"auto_checkout_lookback_days", cfg.AutoCheckoutLookbackDays,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
