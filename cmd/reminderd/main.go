package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/turnero/clinic-api/internal/config"
	"github.com/turnero/clinic-api/internal/repository/postgres"
	"github.com/turnero/clinic-api/internal/worker"
	"github.com/turnero/clinic-api/pkg/logger"
	"github.com/turnero/clinic-api/pkg/messaging/redis"
	"github.com/turnero/clinic-api/pkg/metrics"
)

// envSpec is the dispatcher's environment-driven configuration, prefixed
// REMINDERD_ (e.g. REMINDERD_BATCH_SIZE).
type envSpec struct {
	DatabaseHost     string        `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int           `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseUser     string        `envconfig:"DATABASE_USER" default:"postgres"`
	DatabasePassword string        `envconfig:"DATABASE_PASSWORD" default:"postgres"`
	DatabaseName     string        `envconfig:"DATABASE_NAME" default:"clinic_db"`
	DatabaseSSLMode  string        `envconfig:"DATABASE_SSLMODE" default:"disable"`
	RedisURL         string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	BatchSize        int           `envconfig:"BATCH_SIZE" default:"100"`
	PollInterval     time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	HealthAddr       string        `envconfig:"HEALTH_ADDR" default:":8081"`
}

func main() {
	appLogger := logger.NewLogger(nil)

	var spec envSpec
	if err := envconfig.Process("reminderd", &spec); err != nil {
		appLogger.Fatal(err, "failed to load environment config")
	}

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     spec.DatabaseHost,
		Port:     spec.DatabasePort,
		User:     spec.DatabaseUser,
		Password: spec.DatabasePassword,
		Name:     spec.DatabaseName,
		SSLMode:  spec.DatabaseSSLMode,
	})
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          spec.RedisURL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &log.Logger)
	if err != nil {
		appLogger.Fatal(err, "failed to create redis broker")
	}
	defer broker.Close()

	dispatcher := worker.NewDispatcher(
		postgres.NewReminderRepository(db),
		broker,
		worker.DispatcherConfig{
			BatchSize:    spec.BatchSize,
			PollInterval: spec.PollInterval,
		},
		appLogger,
		metrics.NewMetrics("reminderd"),
	)

	startHealthCheck(spec.HealthAddr, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down")
		cancel()
	}()

	dispatcher.Start(ctx)
}

func startHealthCheck(addr string, appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			appLogger.Error(err, "health check server failed")
		}
	}()
}
