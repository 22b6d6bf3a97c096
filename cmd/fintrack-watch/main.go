package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	"fintrack/internal/sheets"
	gsheet "fintrack/internal/sheets/google"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	logger, closer, err := cli.SetupLogger(cfg, os.Stdout)
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Failed to set up logging", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer closer.Close()
	logger = logger.WithComponent(applog.ComponentWatch)

	logger.Info("Starting fintrack-watch")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required to watch mutation events")
		os.Exit(1)
	}

	app, err := cli.NewApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer app.Close()

	if err := app.RequireSession(); err != nil {
		logger.Error("No session", applog.FieldError, err.Error())
		os.Exit(1)
	}

	// Initialize Google Sheets client for sync operations (optional)
	var writer sheets.TableWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.NewClient(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		writer = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// The publisher in app is best effort; the consumer must connect.
	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer consumer.Close()

	syncWorker := worker.NewSyncWorker(app.Client, app.Resources, writer, app.Lookups, 100, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// On startup, catch up on anything missed while the worker was down
	if err := syncWorker.SyncAll(ctx); err != nil {
		logger.Error("Failed startup sync", applog.FieldError, err.Error())
	}
	if err := syncWorker.RefreshStats(ctx); err != nil {
		logger.Error("Failed to load dashboard totals", applog.FieldError, err.Error())
	}
	if _, err := syncWorker.Reminders(ctx, time.Now(), cfg.ReminderDays); err != nil {
		logger.Error("Failed to list reminders", applog.FieldError, err.Error())
	}

	go func() {
		if err := consumer.ConsumeMutations(ctx, syncWorker.HandleMutation); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err.Error())
		}
	}()

	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		reminders := time.NewTicker(24 * time.Hour)
		defer reminders.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := syncWorker.SyncAll(ctx); err != nil {
					logger.Error("Periodic sync failed", applog.FieldError, err.Error())
				}
			case <-reminders.C:
				if _, err := syncWorker.Reminders(ctx, time.Now(), cfg.ReminderDays); err != nil {
					logger.Error("Periodic reminder check failed", applog.FieldError, err.Error())
				}
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped", "events_handled", syncWorker.Handled())
}
