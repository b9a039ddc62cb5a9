package config

import "time"

// Storage backends selectable with STORAGE_TYPE
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StorageMySQL    = "mysql"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Cache write modes selectable with CACHE_WRITE_MODE
const (
	WriteModeThrough = "write-through"
	WriteModeBack    = "write-back"
)

// Default values
const (
	DefaultPort                = 8080
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
	DefaultEnvironment         = "dev"
	DefaultShutdownTimeout     = 30 * time.Second
	DefaultStorageType         = StorageSQLite
	DefaultDataDir             = "data"
	DefaultSQLiteFile          = "flight.db"
	DefaultDBHost              = "localhost"
	DefaultDBUser              = "flight"
	DefaultDBName              = "flight"
	DefaultMySQLPort           = "3306"
	DefaultPostgresPort        = "5432"
	DefaultDBPoolSize          = 10
	DefaultDBAcquireTimeout    = 5 * time.Second
	DefaultDBValidationTimeout = 2 * time.Second
	DefaultRedisAddr           = "localhost:6379"
	DefaultRedisPrefix         = "flight"

	DefaultRetryMaxRetries    = 3
	DefaultRetryBaseDelay     = 100 * time.Millisecond
	DefaultRetryMaxDelay      = 5 * time.Second
	DefaultRetryMultiplier    = 2.0
	DefaultRetryJitterPercent = 25

	DefaultBreakerThreshold = 5
	DefaultBreakerRecovery  = 30 * time.Second

	DefaultCacheMaxSize         = 1000
	DefaultCacheTTL             = 30 * time.Minute
	DefaultCacheCleanupInterval = 5 * time.Minute
	DefaultCacheWriteMode       = WriteModeThrough

	DefaultTickInterval              = time.Second
	DefaultCountdownShowBefore       = 5 * time.Minute
	DefaultCountdownWarnBefore       = time.Minute
	DefaultCountdownReminderInterval = 15 * time.Second

	DefaultPricePerMinute  int64 = 10
	DefaultPricePermanent  int64 = 50000
	DefaultStartingBalance int64 = 1000

	DefaultWorkerCount     = 4
	DefaultWorkerQueueSize = 1024
)

// Error messages
const (
	ErrMsgAPIKeyMissing = "API_KEY environment variable must be set for security"
	ErrMsgInvalidPort   = "invalid PORT value"
	ErrMsgInvalidConfig = "invalid configuration"
)
