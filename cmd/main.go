package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mortgage-eligibility/internal/api"
	"mortgage-eligibility/internal/batch"
	"mortgage-eligibility/internal/checks/creditbureau"
	"mortgage-eligibility/internal/checks/static"
	"mortgage-eligibility/internal/config"
	"mortgage-eligibility/internal/domain/eligibility"
	"mortgage-eligibility/internal/event"
	"mortgage-eligibility/internal/infrastructure/database/postgres"
	"mortgage-eligibility/internal/infrastructure/logging"
	"mortgage-eligibility/internal/infrastructure/monitoring"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// @title Mortgage Eligibility API
// @version 1.0
// @description Decides whether a customer may take out a mortgage of a given amount.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	publisher, closePublisher, err := initializePublisher(cfg.RabbitMQ, logger)
	if err != nil {
		logger.Error("Failed to initialize event publisher", "error", err)
		os.Exit(1)
	}
	defer closePublisher()

	service, repo, err := initializeServices(cfg, dbPool, publisher, logger)
	if err != nil {
		logger.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	job := batch.NewReevaluationJob(repo, service, cfg.Batch.Lookback, logger)
	cronScheduler, err := batch.NewScheduler(cfg.Batch, job, logger)
	if err != nil {
		logger.Error("Failed to initialize batch scheduler", "error", err)
		os.Exit(1)
	}
	cronScheduler.Start()
	logger.Info("Cron scheduler started.")

	redisClient, err := initializeRedisClient(cfg.Redis, logger)
	if err != nil {
		logger.Error("Failed to initialize Redis client", "error", err)
		os.Exit(1)
	}
	defer closeRedisClient(redisClient, logger)

	var routerOpts []api.RouterOption
	if redisClient != nil {
		routerOpts = append(routerOpts, api.WithRedis(redisClient))
	}
	router, stopRouter := api.SetupRouter(service, cfg, logger, routerOpts...)
	defer stopRouter()

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...",
		"config_source", cfg.Source,
		"checks_mode", cfg.Checks.Mode,
		"evaluation", cfg.Checks.Evaluation)

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

// initializePublisher dials RabbitMQ when enabled. The returned func closes
// the connection.
func initializePublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (event.Publisher, func(), error) {
	if !cfg.Enabled {
		logger.Info("RabbitMQ disabled, decision events will only be logged")
		return event.NewLogPublisher(logger), func() {}, nil
	}

	logger.Info("Connecting to RabbitMQ...", "exchange", cfg.ExchangeName)
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	pub, err := event.NewRabbitMQEventPublisher(conn, cfg.ExchangeName, logger)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	return pub, func() {
		logger.Info("Closing RabbitMQ connection...")
		if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			logger.Warn("Failed to close RabbitMQ connection", "error", err)
		}
	}, nil
}

// initializeRedisClient returns nil when no address is configured.
func initializeRedisClient(cfg config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		logger.Info("Redis address not configured, rate limiting stays in memory")
		return nil, nil
	}

	logger.Info("Initializing Redis client...", "addr", cfg.Addr)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Redis client connected successfully.", "addr", cfg.Addr, "db", cfg.DB)
	return rdb, nil
}

func closeRedisClient(rdb *redis.Client, logger *slog.Logger) {
	if rdb == nil {
		return
	}
	logger.Info("Closing Redis client connection...")
	if err := rdb.Close(); err != nil {
		logger.Error("Failed to close Redis client connection gracefully", "error", err)
	}
}

type collaborators struct {
	savings eligibility.SavingsChecker
	loans   eligibility.LoanHistoryChecker
	credit  eligibility.CreditChecker
}

func buildCollaborators(cfg *config.Config, db postgres.DBPool, logger *slog.Logger) (collaborators, error) {
	switch cfg.Checks.Mode {
	case config.ChecksModeStatic:
		s := cfg.Checks.Static
		logger.Warn("Using static eligibility checks",
			"savings", s.Savings, "loanHistory", s.LoanHistory, "credit", s.Credit)
		return collaborators{
			savings: static.NewBank(nil, s.Savings),
			loans:   static.NewLoanHistory(nil, s.LoanHistory),
			credit:  static.NewCredit(nil, s.Credit),
		}, nil
	case config.ChecksModeLive:
		ratio, err := cfg.Savings.Ratio()
		if err != nil {
			return collaborators{}, err
		}
		return collaborators{
			savings: postgres.NewSavingsChecker(db, ratio, logger),
			loans:   postgres.NewLoanHistoryChecker(db, logger),
			credit: creditbureau.NewClient(creditbureau.Config{
				BaseURL:       cfg.Credit.BaseURL,
				MinScore:      cfg.Credit.MinScore,
				HTTPClient:    &http.Client{Timeout: cfg.Credit.Timeout},
				RetryAttempts: cfg.Credit.RetryAttempts,
				RetryDelay:    cfg.Credit.RetryDelay,
			}, logger),
		}, nil
	default:
		return collaborators{}, fmt.Errorf("unknown checks mode %q", cfg.Checks.Mode)
	}
}

func initializeServices(cfg *config.Config, db postgres.DBPool, pub event.Publisher, logger *slog.Logger) (eligibility.EligibilityService, eligibility.DecisionRepository, error) {
	logger.Info("Initializing application components...")

	mode, err := eligibility.ParseEvaluationMode(cfg.Checks.Evaluation)
	if err != nil {
		return nil, nil, err
	}

	collab, err := buildCollaborators(cfg, db, logger)
	if err != nil {
		return nil, nil, err
	}

	mortgage := eligibility.NewMortgage(collab.savings, collab.loans, collab.credit,
		eligibility.WithMode(mode),
		eligibility.WithLogger(logger),
		eligibility.WithObserver(monitoring.Eligibility),
	)

	repo := postgres.NewDecisionRepository(db, logger)
	service := eligibility.NewEligibilityService(mortgage, repo, pub, monitoring.Eligibility, logger)
	return service, repo, nil
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out; a re-evaluation run may still be in flight.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}
