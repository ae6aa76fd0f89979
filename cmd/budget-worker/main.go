package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/export"
	"budget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	logger.Info("Starting budget-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the archive worker")
		os.Exit(1)
	}

	var (
		archive export.RowAppender
		err     error
	)
	switch cfg.ExportBackend {
	case "sheets":
		archive, err = export.NewSheetsArchiveFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets archive", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets archive initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		archive, err = export.NewCSVArchive(cfg.CSVArchivePath)
		if err != nil {
			logger.Error("Failed to initialize CSV archive", "error", err, "path", cfg.CSVArchivePath)
			os.Exit(1)
		}
		logger.Info("CSV archive initialized", "path", cfg.CSVArchivePath)
	}

	archiveWorker := worker.NewArchiveWorker(archive)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	g.Go(func() error {
		// Consume with reconnect: a connection-level failure tears down
		// the client, so rebuild it and resume after a short pause.
		for {
			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				logger.Error("Failed to connect to AMQP", "error", err)
				select {
				case <-gctx.Done():
					return nil
				case <-time.After(5 * time.Second):
					continue
				}
			}
			logger.Info("Consuming transaction events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

			err = client.ConsumeTransactionEvents(gctx, func(evt *amqp.TransactionEvent) error {
				return archiveWorker.HandleEvent(gctx, evt)
			})
			_ = client.Close()

			if errors.Is(err, context.Canceled) || gctx.Err() != nil {
				return nil
			}
			if err != nil {
				logger.Error("Event consumption failed, reconnecting", "error", err)
			}
			select {
			case <-gctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
