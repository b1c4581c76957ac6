package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/careline/token-booking/internal/api"
	"github.com/careline/token-booking/internal/booking"
	"github.com/careline/token-booking/internal/config"
	"github.com/careline/token-booking/internal/db"
	"github.com/careline/token-booking/internal/intake"
	redisclient "github.com/careline/token-booking/internal/redis"
)

const version = "1.2.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage backend: local JSON files by default, Postgres when a DSN
	// is configured.
	var store booking.Store
	var pgPool *pgxpool.Pool
	if cfg.PostgresDSN != "" {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection error")
		}
		defer pgPool.Close()
		store = booking.NewPgStore(pgPool)
		log.Info().Msg("using Postgres store")
	} else {
		jsonStore, err := booking.NewJSONStore(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("data dir error")
		}
		store = jsonStore
		log.Info().Str("data_dir", cfg.DataDir).Msg("using JSON file store")
	}

	// Partition locker: in-process mutexes unless Redis is configured.
	var locker booking.Locker = booking.NewMutexLocker()
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing redis")
			}
		}()
		locker = redisclient.NewPartitionLocker(rdb, cfg.LockTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("using Redis partition locker")
	}

	ledger := booking.NewService(rootCtx, store, locker)
	tracker := booking.NewServingTracker(rootCtx, ledger, store)
	conversations := intake.NewStore()

	go conversations.Janitor(rootCtx, cfg.JanitorInterval, cfg.IntakeMaxAge)

	router := api.NewRouter(api.RouterConfig{
		Ledger:  ledger,
		Tracker: tracker,
		Intake:  conversations,
		PgPool:  pgPool,
		Redis:   rdb,
		Env:     cfg.Env,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
}

func setupLogger(env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Str("service", "token-booking").Logger()
		return
	}

	log.Logger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "token-booking").
		Logger()
}
