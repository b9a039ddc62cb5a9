package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/osse101/FlightShop_Go/internal/config"
	"github.com/osse101/FlightShop_Go/internal/handler"
	"github.com/osse101/FlightShop_Go/internal/logger"
)

// SetupLogger installs the default logger. With LOG_DIR set, records also go to a
// timestamped session file and older session files beyond the retention count are removed.
// The returned file, if any, must be closed by the caller.
func SetupLogger(cfg *config.Config) (*os.File, error) {
	var (
		w       io.Writer = os.Stdout
		logFile *os.File
	)

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, DirPermission); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateLogsDir, err)
		}
		cleanupLogs(cfg.LogDir, LogFileRetentionCount-1)

		name := filepath.Join(cfg.LogDir, fmt.Sprintf(LogFileNamePattern, time.Now().Format(LogFileTimestampFormat)))
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermission)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenLogFile, err)
		}
		logFile = f
		w = io.MultiWriter(os.Stdout, f)
	}

	logCfg := logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		logger.DefaultServiceName,
		handler.Version,
		cfg.Environment,
		!cfg.IsProduction(),
	)
	logger.InitLoggerWithWriter(logCfg, w)

	logger.Info(LogMsgLoggingInitialized, "level", logCfg.LogLevel(), "file", logFile != nil)
	logger.Info(LogMsgStarting,
		"environment", cfg.Environment,
		"storage", cfg.StorageType,
		"cache_write_mode", cfg.CacheWriteMode)
	logger.Debug(LogMsgConfigurationLoaded,
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
		"db_addr", cfg.DBAddr(),
		"worker_count", cfg.WorkerCount)

	return logFile, nil
}

// cleanupLogs removes the oldest session logs so at most keep remain. Session file names
// sort chronologically.
func cleanupLogs(logDir string, keep int) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), LogFileExtension) {
			names = append(names, entry.Name())
		}
	}
	if len(names) <= keep {
		return
	}

	slices.Sort(names)
	for _, name := range names[:len(names)-keep] {
		if err := os.Remove(filepath.Join(logDir, name)); err != nil {
			logger.Warn(LogMsgFailedDeleteOldLog, "file", name, "error", err)
		}
	}
}
