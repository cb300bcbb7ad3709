package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "vaxbook"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultMongoTransactions = false

	// Empty keeps idempotency keys in process memory.
	DefaultRedisURL = ""

	DefaultPort      = "3000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotCapacity = 10
	DefaultTimezone     = "UTC"
	DefaultPhoneRegion  = "IN"

	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "adminpassword"

	DefaultKafkaEnabled       = false
	DefaultKafkaBookingsTopic = "vaccination-bookings"
	DefaultKafkaBookingsDLQ   = "dlq-vaccination-bookings"
	DefaultKafkaNotifierGroup = "vaxbook-notifier"
)
