package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/careline/token-booking/internal/booking"
	"github.com/careline/token-booking/internal/intake"
)

type RouterConfig struct {
	Ledger  *booking.Service
	Tracker *booking.ServingTracker
	Intake  *intake.Store
	PgPool  *pgxpool.Pool // nil when the JSON store is in use
	Redis   *redis.Client // nil when the in-process locker is in use
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/tokens", func(r chi.Router) {
		r.Post("/", createTokenHandler(cfg.Ledger))
		r.Get("/search", searchTokensHandler(cfg.Ledger))
		r.Get("/stats", statsHandler(cfg.Ledger))
		r.Get("/departments", departmentsHandler())
		r.Get("/statuses", statusesHandler())
		r.Get("/daily/{date}", dailyTokensHandler(cfg.Ledger))
		r.Post("/current/set", setCurrentTokenHandler(cfg.Tracker))
		r.Get("/current/{doctorName}", getCurrentTokenHandler(cfg.Tracker))
		r.Get("/{tokenID}", getTokenHandler(cfg.Ledger))
		r.Put("/{tokenID}/status", updateTokenHandler(cfg.Ledger))
		r.Delete("/{tokenID}", cancelTokenHandler(cfg.Ledger))
	})

	r.Route("/intake", func(r chi.Router) {
		r.Post("/{conversationID}/advance", advanceIntakeHandler(cfg.Intake))
		r.Post("/{conversationID}/reset", resetIntakeHandler(cfg.Intake))
	})

	return r
}
