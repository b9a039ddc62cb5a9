package bootstrap

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/config"
	"github.com/osse101/FlightShop_Go/internal/countdown"
	"github.com/osse101/FlightShop_Go/internal/economy"
	"github.com/osse101/FlightShop_Go/internal/flight"
	"github.com/osse101/FlightShop_Go/internal/game"
	"github.com/osse101/FlightShop_Go/internal/handler"
	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/scheduler"
	"github.com/osse101/FlightShop_Go/internal/server"
	"github.com/osse101/FlightShop_Go/internal/storage/cached"
	"github.com/osse101/FlightShop_Go/internal/worker"
)

// App holds every long-lived component, in start order.
type App struct {
	Workers    *worker.Pool
	Scheduler  *scheduler.Scheduler
	Store      *cached.Store
	World      *game.World
	Economy    *economy.Ledger
	Countdowns *countdown.Manager
	Flight     flight.Service
	Server     *server.Server
}

// Build starts the worker pool and tick scheduler, initialises storage and wires the
// flight service behind the HTTP server. A storage Init failure is fatal and everything
// started so far is stopped again.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		Workers: worker.NewPool(cfg.WorkerCount, cfg.WorkerQueueSize),
	}
	app.Workers.Start()
	app.Scheduler = scheduler.New(app.Workers)
	app.Scheduler.Start()

	backend, err := NewBackend(cfg, NewExecutor(cfg))
	if err != nil {
		app.abort(ctx)
		return nil, fmt.Errorf("%s: %w", ErrMsgBuildBackend, err)
	}

	store, err := NewCachedStore(cfg, backend, app.Scheduler.RunAsync)
	if err != nil {
		app.abort(ctx)
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		app.abort(ctx)
		return nil, fmt.Errorf("%s: %w", ErrMsgInitStorage, err)
	}
	app.Store = store
	logger.Info(LogMsgStorageReady, "backend", store.Diagnostics().Backend, "mode", store.Mode())

	app.World = game.NewWorld()
	app.Economy = economy.NewLedger(cfg.StartingBalance)
	app.Countdowns = countdown.NewManager(countdown.Config{
		TickInterval:     cfg.TickInterval,
		ShowBefore:       cfg.CountdownShowBefore,
		WarnBefore:       cfg.CountdownWarnBefore,
		ReminderInterval: cfg.CountdownReminderInterval,
	}, app.World, countdown.RevokerFunc(func(ctx context.Context, owner uuid.UUID) error {
		// app.Flight is set below, before the first tick can run
		return app.Flight.RevokeExpired(ctx, owner)
	}), app.Scheduler)

	app.Flight = flight.NewService(store, app.Economy, app.World, app.Countdowns, app.Scheduler, flight.Pricing{
		PerMinute: cfg.PricePerMinute,
		Permanent: cfg.PricePermanent,
	})

	app.Scheduler.Schedule(DiagnosticsInterval, diagnosticsJob(app.Flight))

	app.Server = server.NewServer(server.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
	}, app.Flight, handler.HealthCheckFunc(store.WaitForPreload))

	return app, nil
}

// abort unwinds a partially built app.
func (a *App) abort(ctx context.Context) {
	_ = a.Scheduler.Stop(ctx)
	_ = a.Workers.Stop(ctx)
}

// diagnosticsJob logs cache and countdown state for operators tailing logs.
func diagnosticsJob(svc flight.Service) worker.Job {
	return worker.JobFunc(func(ctx context.Context) error {
		d := svc.Diagnostics(ctx)
		logger.Debug(LogMsgDiagnostics,
			"backend", d.Storage.Backend,
			"cache_size", d.Cache.Size,
			"cache_hit_rate", d.Cache.HitRate,
			"active_countdowns", d.ActiveCountdowns)
		return nil
	})
}
