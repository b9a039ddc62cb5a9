package bootstrap

import (
	"fmt"
	"path/filepath"

	"github.com/osse101/FlightShop_Go/internal/cache"
	"github.com/osse101/FlightShop_Go/internal/config"
	"github.com/osse101/FlightShop_Go/internal/database"
	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/retry"
	"github.com/osse101/FlightShop_Go/internal/storage"
	"github.com/osse101/FlightShop_Go/internal/storage/cached"
	"github.com/osse101/FlightShop_Go/internal/storage/file"
	"github.com/osse101/FlightShop_Go/internal/storage/redisstore"
	"github.com/osse101/FlightShop_Go/internal/storage/sqlite"
	"github.com/osse101/FlightShop_Go/internal/storage/sqlnet"
)

// NewExecutor builds the retry executor shared by the networked backends, guarded by a
// circuit breaker when enabled.
func NewExecutor(cfg *config.Config) *retry.Executor {
	jitter := cfg.RetryJitterPercent
	if jitter < 0 {
		jitter = 0
	}
	policy := retry.Policy{
		MaxRetries:    cfg.RetryMaxRetries,
		BaseDelay:     cfg.RetryBaseDelay,
		MaxDelay:      cfg.RetryMaxDelay,
		Multiplier:    cfg.RetryMultiplier,
		JitterPercent: uint64(jitter),
	}

	var opts []retry.Option
	if cfg.BreakerEnabled {
		logger.Info(LogMsgBreakerEnabled, "threshold", cfg.BreakerThreshold, "recovery", cfg.BreakerRecovery)
		opts = append(opts, retry.WithBreaker(retry.NewBreaker(cfg.BreakerThreshold, cfg.BreakerRecovery)))
	}
	return retry.NewExecutor(policy, opts...)
}

// NewBackend selects the durable backend named by STORAGE_TYPE. File and SQLite run
// without retry; the networked backends share exec.
func NewBackend(cfg *config.Config, exec *retry.Executor) (storage.Backend, error) {
	logger.Info(LogMsgBackendSelected, "type", cfg.StorageType)

	switch storage.Type(cfg.StorageType) {
	case storage.TypeFile:
		return file.New(cfg.DataDir), nil
	case storage.TypeSQLite:
		return sqlite.New(filepath.Join(cfg.DataDir, cfg.SQLiteFile)), nil
	case storage.TypeMySQL:
		return sqlnet.New(sqlnet.Config{
			Pool: poolConfig(cfg, database.DialectMySQL,
				sqlnet.MySQLDSN(cfg.DBAddr(), cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBAcquireTimeout)),
			Executor: exec,
		})
	case storage.TypePostgres:
		return sqlnet.New(sqlnet.Config{
			Pool:     poolConfig(cfg, database.DialectPostgres, cfg.GetDBConnString()),
			Executor: exec,
		})
	case storage.TypeRedis:
		return redisstore.New(redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			Executor: exec,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedStorage, cfg.StorageType)
	}
}

func poolConfig(cfg *config.Config, d database.Dialect, dsn string) database.Config {
	return database.Config{
		Dialect:           d,
		DSN:               dsn,
		MaxConnections:    cfg.DBPoolSize,
		AcquireTimeout:    cfg.DBAcquireTimeout,
		ValidationTimeout: cfg.DBValidationTimeout,
	}
}

// NewCachedStore wraps backend in the entitlement cache. dispatch runs write-back writes
// and the startup preload.
func NewCachedStore(cfg *config.Config, backend storage.Backend, dispatch cached.Dispatcher) (*cached.Store, error) {
	mode, err := cached.ParseMode(cfg.CacheWriteMode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidWriteMode, err)
	}
	return cached.New(backend, cached.Config{
		Mode:    mode,
		Preload: cfg.CachePreload,
		Cache: cache.Config{
			MaxSize:         cfg.CacheMaxSize,
			TTL:             cfg.CacheTTL,
			CleanupInterval: cfg.CacheCleanupInterval,
		},
	}, cached.WithDispatcher(dispatch)), nil
}
