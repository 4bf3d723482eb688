package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "udesc_quadras"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultLogLevel = "info"

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultStoreBackend = BackendMongo
	DefaultLockBackend  = LockLocal
	DefaultLockTTL      = 10 * time.Second
	DefaultLockWait     = 2 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultTimeZone   = "America/Sao_Paulo"
	DefaultBcryptCost = 10

	DefaultKafkaEnabled = false
	DefaultKafkaTopic   = "facility.events"

	DefaultPaginationLimit = 100
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"

	LockLocal = "local"
	LockMongo = "mongo"
	LockRedis = "redis"
)
