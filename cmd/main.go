package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"dinehall/internal/audit"
	"dinehall/internal/catalog"
	"dinehall/internal/config"
	"dinehall/internal/database"
	"dinehall/internal/logger"
	"dinehall/internal/messaging"
	"dinehall/internal/services/auditlog"
	"dinehall/internal/services/pos"
)

func main() {
	// Parse command line flags
	var (
		mode          = flag.String("mode", "", "Service mode (pos-service, audit-writer)")
		port          = flag.Int("port", 3000, "HTTP port")
		maxConcurrent = flag.Int("max-concurrent", 50, "Maximum concurrent order mutations")
		prefetch      = flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":           *mode,
		"port":           *port,
		"max_concurrent": *maxConcurrent,
	})

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	switch *mode {
	case "pos-service":
		if err := runPOSService(ctx, cfg, log, *port, *maxConcurrent); err != nil {
			log.Error("service_failed", "POS service failed", requestID, err, nil)
			os.Exit(1)
		}
	case "audit-writer":
		if err := runAuditWriter(ctx, cfg, log, *prefetch); err != nil {
			log.Error("service_failed", "Audit writer failed", requestID, err, nil)
			os.Exit(1)
		}
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runPOSService runs the front-of-house HTTP service.
func runPOSService(ctx context.Context, cfg *config.Config, log *logger.Logger, port, maxConcurrent int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)
	emitter := audit.NewAsyncEmitter(publisher, log, cfg.Billing.AuditBuffer)
	defer emitter.Close()

	store := pos.NewPostgresStore(db)
	menu := catalog.NewPostgresCatalog(db)
	service := pos.NewService(store, menu, emitter, log, cfg.Billing, maxConcurrent)
	handler := pos.NewHandler(service, log, db.Ping)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler.Routes(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("service_started", fmt.Sprintf("POS service started on port %d", port), requestID, map[string]interface{}{
			"port":           port,
			"max_concurrent": maxConcurrent,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runAuditWriter runs the audit event consumer.
func runAuditWriter(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	writer := auditlog.NewWriter(db, conn, log, prefetch)
	defer writer.Close()

	if err := writer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer failed: %w", err)
	}
	return nil
}
