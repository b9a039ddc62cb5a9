package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int    `env:"PORT" validate:"min=1,max=65535"`
	APIKey      string `env:"API_KEY" validate:"required"`
	LogLevel    string `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	LogFormat   string `env:"LOG_FORMAT" validate:"oneof=text json"`
	LogDir      string `env:"LOG_DIR"`
	Environment string `env:"ENVIRONMENT" validate:"required"`

	// HTTP
	TrustedProxies  []string      `env:"TRUSTED_PROXIES" validate:"dive,ip"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" validate:"gt=0"`

	// Storage
	StorageType         string        `env:"STORAGE_TYPE" validate:"oneof=file sqlite mysql postgres redis"`
	DataDir             string        `env:"DATA_DIR" validate:"required"`
	SQLiteFile          string        `env:"SQLITE_FILE" validate:"required"`
	DBHost              string        `env:"DB_HOST"`
	DBPort              string        `env:"DB_PORT"`
	DBUser              string        `env:"DB_USER"`
	DBPassword          string        `env:"DB_PASSWORD"`
	DBName              string        `env:"DB_NAME"`
	DBPoolSize          int           `env:"DB_POOL_SIZE" validate:"min=1"`
	DBAcquireTimeout    time.Duration `env:"DB_ACQUIRE_TIMEOUT" validate:"gt=0"`
	DBValidationTimeout time.Duration `env:"DB_VALIDATION_TIMEOUT" validate:"gt=0"`
	RedisAddr           string        `env:"REDIS_ADDR" validate:"required_if=StorageType redis"`
	RedisPassword       string        `env:"REDIS_PASSWORD"`
	RedisDB             int           `env:"REDIS_DB" validate:"min=0"`
	RedisPrefix         string        `env:"REDIS_PREFIX"`

	// Retry policy for networked backends
	RetryMaxRetries    int           `env:"RETRY_MAX_RETRIES" validate:"min=0"`
	RetryBaseDelay     time.Duration `env:"RETRY_BASE_DELAY" validate:"gt=0"`
	RetryMaxDelay      time.Duration `env:"RETRY_MAX_DELAY" validate:"gtefield=RetryBaseDelay"`
	RetryMultiplier    float64       `env:"RETRY_MULTIPLIER" validate:"gte=1"`
	RetryJitterPercent int           `env:"RETRY_JITTER_PERCENT" validate:"min=0,max=100"`
	BreakerEnabled     bool          `env:"BREAKER_ENABLED"`
	BreakerThreshold   int           `env:"BREAKER_THRESHOLD" validate:"min=1"`
	BreakerRecovery    time.Duration `env:"BREAKER_RECOVERY" validate:"gt=0"`

	// Entitlement cache
	CacheMaxSize         int           `env:"CACHE_MAX_SIZE" validate:"min=1"`
	CacheTTL             time.Duration `env:"CACHE_TTL" validate:"gt=0"`
	CacheCleanupInterval time.Duration `env:"CACHE_CLEANUP_INTERVAL" validate:"gt=0"`
	CacheWriteMode       string        `env:"CACHE_WRITE_MODE" validate:"oneof=write-through write-back"`
	CachePreload         bool          `env:"CACHE_PRELOAD"`

	// Countdown display
	TickInterval              time.Duration `env:"TICK_INTERVAL" validate:"gt=0"`
	CountdownShowBefore       time.Duration `env:"COUNTDOWN_SHOW_BEFORE" validate:"gte=0"`
	CountdownWarnBefore       time.Duration `env:"COUNTDOWN_WARN_BEFORE" validate:"gte=0"`
	CountdownReminderInterval time.Duration `env:"COUNTDOWN_REMINDER_INTERVAL" validate:"gt=0"`

	// Economy
	PricePerMinute  int64 `env:"PRICE_PER_MINUTE" validate:"min=0"`
	PricePermanent  int64 `env:"PRICE_PERMANENT" validate:"min=0"`
	StartingBalance int64 `env:"STARTING_BALANCE" validate:"min=0"`

	// Workers
	WorkerCount     int `env:"WORKER_COUNT" validate:"min=1"`
	WorkerQueueSize int `env:"WORKER_QUEUE_SIZE" validate:"min=1"`
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:   getEnv("LOG_FORMAT", DefaultLogFormat),
		LogDir:      getEnv("LOG_DIR", ""),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),
		APIKey:      getEnv("API_KEY", ""),

		TrustedProxies:  getEnvAsList("TRUSTED_PROXIES"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),

		StorageType:         getEnv("STORAGE_TYPE", DefaultStorageType),
		DataDir:             getEnv("DATA_DIR", DefaultDataDir),
		SQLiteFile:          getEnv("SQLITE_FILE", DefaultSQLiteFile),
		DBHost:              getEnv("DB_HOST", DefaultDBHost),
		DBPort:              getEnv("DB_PORT", ""),
		DBUser:              getEnv("DB_USER", DefaultDBUser),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBName:              getEnv("DB_NAME", DefaultDBName),
		DBPoolSize:          getEnvAsInt("DB_POOL_SIZE", DefaultDBPoolSize),
		DBAcquireTimeout:    getEnvAsDuration("DB_ACQUIRE_TIMEOUT", DefaultDBAcquireTimeout),
		DBValidationTimeout: getEnvAsDuration("DB_VALIDATION_TIMEOUT", DefaultDBValidationTimeout),
		RedisAddr:           getEnv("REDIS_ADDR", DefaultRedisAddr),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		RedisPrefix:         getEnv("REDIS_PREFIX", DefaultRedisPrefix),

		RetryMaxRetries:    getEnvAsInt("RETRY_MAX_RETRIES", DefaultRetryMaxRetries),
		RetryBaseDelay:     getEnvAsDuration("RETRY_BASE_DELAY", DefaultRetryBaseDelay),
		RetryMaxDelay:      getEnvAsDuration("RETRY_MAX_DELAY", DefaultRetryMaxDelay),
		RetryMultiplier:    getEnvAsFloat("RETRY_MULTIPLIER", DefaultRetryMultiplier),
		RetryJitterPercent: getEnvAsInt("RETRY_JITTER_PERCENT", DefaultRetryJitterPercent),
		BreakerEnabled:     getEnvAsBool("BREAKER_ENABLED", false),
		BreakerThreshold:   getEnvAsInt("BREAKER_THRESHOLD", DefaultBreakerThreshold),
		BreakerRecovery:    getEnvAsDuration("BREAKER_RECOVERY", DefaultBreakerRecovery),

		CacheMaxSize:         getEnvAsInt("CACHE_MAX_SIZE", DefaultCacheMaxSize),
		CacheTTL:             getEnvAsDuration("CACHE_TTL", DefaultCacheTTL),
		CacheCleanupInterval: getEnvAsDuration("CACHE_CLEANUP_INTERVAL", DefaultCacheCleanupInterval),
		CacheWriteMode:       getEnv("CACHE_WRITE_MODE", DefaultCacheWriteMode),
		CachePreload:         getEnvAsBool("CACHE_PRELOAD", true),

		TickInterval:              getEnvAsDuration("TICK_INTERVAL", DefaultTickInterval),
		CountdownShowBefore:       getEnvAsDuration("COUNTDOWN_SHOW_BEFORE", DefaultCountdownShowBefore),
		CountdownWarnBefore:       getEnvAsDuration("COUNTDOWN_WARN_BEFORE", DefaultCountdownWarnBefore),
		CountdownReminderInterval: getEnvAsDuration("COUNTDOWN_REMINDER_INTERVAL", DefaultCountdownReminderInterval),

		PricePerMinute:  getEnvAsInt64("PRICE_PER_MINUTE", DefaultPricePerMinute),
		PricePermanent:  getEnvAsInt64("PRICE_PERMANENT", DefaultPricePermanent),
		StartingBalance: getEnvAsInt64("STARTING_BALANCE", DefaultStartingBalance),

		WorkerCount:     getEnvAsInt("WORKER_COUNT", DefaultWorkerCount),
		WorkerQueueSize: getEnvAsInt("WORKER_QUEUE_SIZE", DefaultWorkerQueueSize),
	}

	port, err := strconv.Atoi(getEnv("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidPort, err)
	}
	cfg.Port = port

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s", ErrMsgAPIKeyMissing)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in a production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

// DBAddr returns host:port of the networked SQL server, defaulting the port by storage type.
func (c *Config) DBAddr() string {
	port := c.DBPort
	if port == "" {
		port = DefaultMySQLPort
		if c.StorageType == StoragePostgres {
			port = DefaultPostgresPort
		}
	}
	return net.JoinHostPort(c.DBHost, port)
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBAddr(),
		c.DBName,
	)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if v, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
