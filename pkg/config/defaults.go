package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tutorly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultPort = "8080"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// The lock wait bounds how long a booking attempt queues behind a
	// competitor; the lease bounds how long a crashed holder can block
	// everyone else.
	DefaultLockWaitTimeout  = 3 * time.Second
	DefaultLockLeaseTimeout = 5 * time.Second

	DefaultLessonEventsTopic = "lesson.events"
)
