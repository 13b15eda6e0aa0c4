package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edunest/admin-ledger/internal/config"
	"github.com/edunest/admin-ledger/internal/handler"
	"github.com/edunest/admin-ledger/internal/ledger"
	"github.com/edunest/admin-ledger/internal/logging"
	"github.com/edunest/admin-ledger/internal/middleware"
	"github.com/edunest/admin-ledger/internal/notify"
	"github.com/edunest/admin-ledger/internal/repository"
	"github.com/edunest/admin-ledger/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("admin-ledger-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	notifiers := notify.Multi{notify.LogNotifier{}}
	if cfg.AMQPURL != "" {
		publisher, err := notify.NewPublisher(cfg.AMQPURL, cfg.NotificationsExchange, cfg.NotificationsQueue)
		if err != nil {
			slog.Error("failed to connect to broker", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		notifiers = append(notifiers, publisher)
	}

	client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout())
	journal := repository.NewJournalRepository(db)
	manager := ledger.NewManager(client, notifiers, journal, nil)

	operators := repository.NewOperatorRepository(db)
	idempotency := repository.NewIdempotencyRepository(db)

	authHandler := handler.NewAuthHandler(operators, cfg.JWTSecret, cfg.JWTExpiry())
	ledgerHandler := handler.NewLedgerHandler(manager)
	healthHandler := handler.NewHealthHandler(db)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/v1/ledgers/{participantID}/months", ledgerHandler.Months)
	protected.HandleFunc("GET /api/v1/ledgers/{participantID}/transactions", ledgerHandler.Transactions)
	protected.HandleFunc("GET /api/v1/ledgers/{participantID}/transactions/{transactionID}/logs", ledgerHandler.RecordLogs)
	protected.HandleFunc("POST /api/v1/ledgers/{participantID}/refresh", ledgerHandler.Refresh)

	idem := middleware.Idempotency(idempotency, cfg.IdempotencyTTL())
	protected.Handle("POST /api/v1/ledgers/{participantID}/payments", idem(http.HandlerFunc(ledgerHandler.SubmitPayment)))
	protected.Handle("POST /api/v1/participants/{participantID}/close", idem(http.HandlerFunc(ledgerHandler.CloseAccount)))

	mux.Handle("/api/v1/", middleware.Auth(cfg.JWTSecret)(protected))

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "upstream", cfg.UpstreamBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var lastErr error
	for i := range 30 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		cancel()
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", lastErr)
}
