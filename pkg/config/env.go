package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvLogLevel = "LOG_LEVEL"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvStoreBackend = "STORE_BACKEND"
	EnvLockBackend  = "LOCK_BACKEND"
	EnvLockTTL      = "LOCK_TTL"
	EnvLockWait     = "LOCK_WAIT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvTimeZone   = "TIME_ZONE"
	EnvBcryptCost = "BCRYPT_COST"

	EnvKafkaEnabled = "KAFKA_ENABLED"
	EnvKafkaTopic   = "KAFKA_TOPIC"
	EnvKafkaDLQ     = "KAFKA_DLQ_TOPIC"
)
