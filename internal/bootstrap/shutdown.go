package bootstrap

import (
	"context"

	"github.com/osse101/FlightShop_Go/internal/logger"
)

// GracefulShutdown stops the app in dependency order:
//  1. HTTP server, so no new commands arrive
//  2. countdowns, so no more expiry revokes are issued
//  3. tick scheduler, draining game updates already queued
//  4. storage, flushing pending write-back writes before the cache and backend close
//  5. worker pool, once nothing can submit to it
//
// Errors are logged and do not stop the sequence.
func GracefulShutdown(ctx context.Context, app *App) {
	if app.Server != nil {
		logger.Info(LogMsgShuttingDownServer)
		if err := app.Server.Stop(ctx); err != nil {
			logger.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if app.Countdowns != nil {
		app.Countdowns.Shutdown()
		logger.Info(LogMsgCountdownsStopped)
	}

	if err := app.Scheduler.Stop(ctx); err != nil {
		logger.Error(LogMsgSchedulerStopFailed, "error", err)
	}

	if app.Store != nil {
		if err := app.Store.Close(ctx); err != nil {
			logger.Error(LogMsgStorageCloseFailed, "error", err)
		}
	}

	if err := app.Workers.Stop(ctx); err != nil {
		logger.Error(LogMsgWorkerPoolStopFailed, "error", err)
	}

	logger.Info(LogMsgServerStopped)
}
