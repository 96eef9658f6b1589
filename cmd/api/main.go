package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farm-vet-appointments/internal/adapters/auth/jwt"
	kafkabus "farm-vet-appointments/internal/adapters/eventbus/kafka"
	pg "farm-vet-appointments/internal/adapters/storage/postgres"
	"farm-vet-appointments/internal/platform/config"
	"farm-vet-appointments/internal/platform/logger"
	"farm-vet-appointments/internal/platform/tracing"
	"farm-vet-appointments/internal/router"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// @title Farm Vet Appointments API
// @version 1.0
// @description Agenda de visitas veterinarias a campo: reservas, solapamientos y ciclo de vida de la cita.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  cfg.AppName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSamplingRatio,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	opts := router.Options{
		Logger:   log,
		Location: cfg.Location,
		LockTTL:  cfg.BookingLockTTL,
	}

	// Postgres opcional; sin DB_DSN todo queda in-memory.
	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := pg.EnsureSchema(ctx, db); err != nil {
			return err
		}
		opts.DB = db
		log.Info("storage: postgres")
	} else {
		log.Info("storage: memory")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pctx).Err()
		cancel()
		if err != nil {
			return err
		}
		opts.Redis = rdb
		log.Info("booking lock: redis", "addr", cfg.RedisAddr)
	}

	if len(cfg.KafkaBrokers) > 0 {
		pub := kafkabus.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer pub.Close()
		opts.Publisher = pub
		log.Info("events: kafka", "topic", cfg.KafkaTopic)
	}

	if cfg.DevAuth() {
		log.Warn("JWT_SECRET vacío: modo dev con headers X-Debug-User-*")
	} else {
		opts.AuthVerifier = jwt.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      otelhttp.NewHandler(router.NewRouter(opts), cfg.AppName),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
