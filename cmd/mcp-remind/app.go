// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jolks/mcp-remind/internal/clock"
	"github.com/jolks/mcp-remind/internal/config"
	"github.com/jolks/mcp-remind/internal/errors"
	"github.com/jolks/mcp-remind/internal/logging"
	"github.com/jolks/mcp-remind/internal/notify"
	"github.com/jolks/mcp-remind/internal/scheduler"
	"github.com/jolks/mcp-remind/internal/server"
	"github.com/jolks/mcp-remind/internal/storage"
	"github.com/jolks/mcp-remind/internal/store"
)

// Application represents the running application
type Application struct {
	config    *config.Config
	backend   *storage.JSONStorage
	store     *store.TaskStore
	scheduler *scheduler.ReminderScheduler
	server    *server.MCPServer
	logger    *logging.Logger
}

// createApp opens the task file and wires the scheduler. extra notifiers are
// delivered to alongside the configured ones.
func createApp(ctx context.Context, cfg *config.Config, clk clock.Clock, extra ...notify.Notifier) (*Application, error) {
	logger := logging.GetDefaultLogger()

	backend, err := storage.NewJSONStorage(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	ts := store.New(backend, store.WithLogger(logger))
	if err := ts.Load(ctx); err != nil {
		if !errors.IsDataCorruption(err) {
			backend.Close()
			return nil, err
		}
		// start empty; the corrupt file is only replaced by the next save
		logger.Errorf("Starting with no tasks: %v", err)
	}

	notifiers := append(buildNotifiers(cfg, logger), extra...)
	sched := scheduler.NewScheduler(ts, notify.Multi(notifiers), buildAlert(cfg), clk,
		scheduler.WithInterval(cfg.Scheduler.Interval.Duration),
		scheduler.WithSound(cfg.Scheduler.Sound),
		scheduler.WithWatch(cfg.Store.Watch),
		scheduler.WithLogger(logger),
	)

	return &Application{
		config:    cfg,
		backend:   backend,
		store:     ts,
		scheduler: sched,
		logger:    logger,
	}, nil
}

// buildNotifiers returns the notifiers enabled in cfg. Reminders are always logged.
func buildNotifiers(cfg *config.Config, logger *logging.Logger) []notify.Notifier {
	notifiers := []notify.Notifier{notify.LogNotifier{Logger: logger}}
	if cfg.Notify.Desktop {
		notifiers = append(notifiers, notify.NewDesktopNotifier())
	}
	if wh := cfg.Notify.Webhook; wh.Enabled {
		notifiers = append(notifiers, notify.NewWebhookNotifier(wh.Host, wh.Port, wh.Room, wh.Sender))
	}
	return notifiers
}

// buildAlert returns the audio alert described by cfg
func buildAlert(cfg *config.Config) notify.AudioAlert {
	var alerts notify.MultiAlert
	if cfg.Notify.Bell {
		alerts = append(alerts, notify.NewBellAlert())
	}
	if cfg.Scheduler.Sound != "" {
		alerts = append(alerts, notify.NewCommandAlert(cfg.Notify.SoundCommand))
	}
	if len(alerts) == 0 {
		return notify.NopAlert{}
	}
	return alerts
}

// enableServer attaches the MCP tool server
func (a *Application) enableServer() error {
	mcpServer, err := server.NewMCPServer(a.config, a.store, a.scheduler)
	if err != nil {
		return err
	}
	a.server = mcpServer
	return nil
}

// Start starts the application
func (a *Application) Start(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}
	a.logger.Infof("Reminder scheduler started")

	if a.server != nil {
		if err := a.server.Start(ctx); err != nil {
			return err
		}
		a.logger.Infof("MCP server started")
	}

	return nil
}

// Stop stops the application
func (a *Application) Stop() error {
	if err := a.scheduler.Stop(); err != nil {
		return err
	}
	a.logger.Infof("Reminder scheduler stopped")

	if a.server != nil {
		if err := a.server.Stop(); err != nil {
			a.logger.Errorf("Error stopping MCP server: %v", err)
			return err
		}
		a.logger.Infof("MCP server stopped")
	}

	return a.Close()
}

// Close releases the task file
func (a *Application) Close() error {
	return a.backend.Close()
}

// waitForSignal waits for a termination signal or ctx, then shuts the app down
func waitForSignal(ctx context.Context, cancel context.CancelFunc, app *Application) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case <-signalCh:
		app.logger.Infof("Received termination signal, shutting down...")
	case <-ctx.Done():
	}

	// Cancel the context to initiate shutdown
	cancel()

	// Stop the application with a timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	shutdownDone := make(chan struct{})
	go func() {
		if err := app.Stop(); err != nil {
			app.logger.Errorf("Error during shutdown: %v", err)
		}
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		app.logger.Infof("Graceful shutdown completed")
	case <-shutdownCtx.Done():
		app.logger.Warnf("Shutdown timed out")
	}
}
