package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eligibility/internal/bulkcheck/checkservice"
	"eligibility/internal/bulkcheck/handler"
	"eligibility/internal/bulkcheck/ingest"
	"eligibility/internal/bulkcheck/service"
	"eligibility/internal/bulkcheck/throttle"
	"eligibility/internal/bulkcheck/tracker"
	jwttoken "eligibility/internal/jwt_token"
	"eligibility/internal/platform/config"
	"eligibility/internal/platform/httpserver"
	"eligibility/internal/platform/logger"
	"eligibility/internal/platform/metrics"
	"eligibility/internal/platform/middleware"
	"eligibility/internal/platform/redis"
	"eligibility/internal/session"
	"eligibility/pkg/platform/audit"
	"eligibility/pkg/platform/audit/publisher"
	auditmemory "eligibility/pkg/platform/audit/store/memory"
	auditpostgres "eligibility/pkg/platform/audit/store/postgres"
	"eligibility/pkg/platform/circuit"
)

// main wires dependencies and runs the API and metrics listeners until a
// signal arrives. Business logic lives in internal/bulkcheck.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Logging)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	m := metrics.New()

	var readiness []handler.ReadinessCheck

	sessions, sessionsReady, closeSessions, err := buildSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSessions()
	if sessionsReady != nil {
		readiness = append(readiness, *sessionsReady)
	}

	auditStore, auditReady, closeAudit, err := buildAuditStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()
	if auditReady != nil {
		readiness = append(readiness, *auditReady)
	}

	client, err := checkservice.New(cfg.CheckSvc.BaseURL,
		checkservice.WithAPIKey(cfg.CheckSvc.APIKey),
		checkservice.WithTimeout(cfg.CheckSvc.Timeout),
		checkservice.WithBreaker(circuit.New("check-service")),
		checkservice.WithLogger(log),
		checkservice.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	thr, err := throttle.New(sessions,
		throttle.WithLimit(cfg.Bulk.AttemptLimit),
		throttle.WithWindow(cfg.Bulk.AttemptWindow),
		throttle.WithLogger(log),
	)
	if err != nil {
		return err
	}

	svc, err := service.New(client, thr, tracker.NewPointer(sessions),
		service.WithParser(ingest.New(ingest.WithRowCountLimit(cfg.Bulk.RowLimit))),
		service.WithAuditEmitter(publisher.NewPublisher(auditStore, publisher.WithLogger(log))),
		service.WithMetrics(m),
		service.WithLogger(log),
		service.WithMaxUploadBytes(cfg.Bulk.MaxUploadBytes),
		service.WithErrorsToDisplay(cfg.Bulk.ErrorsToDisplay),
	)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer)
	h := handler.New(svc, log, jwttoken.NewJWTServiceAdapter(jwtService), cfg.Bulk.MaxUploadBytes, readiness...)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.AccessLog(log))
	h.Register(router)

	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	return httpserver.Serve(ctx, log, httpserver.DefaultShutdownTimeout,
		httpserver.New(cfg.Addr, router),
		httpserver.New(cfg.MetricsAddr, metricsRouter),
	)
}

// buildSessionStore prefers Redis and falls back to process memory.
func buildSessionStore(ctx context.Context, cfg config.Server, log *slog.Logger) (session.Store, *handler.ReadinessCheck, func(), error) {
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, err
	}
	if rc == nil {
		log.Warn("REDIS_URL not set, using in-memory session store")
		return session.NewInMemoryStore(session.WithTTL(cfg.Session.TTL)), nil, func() {}, nil
	}
	closeFn := func() {
		if err := rc.Close(); err != nil {
			log.Warn("failed to close redis client", "error", err)
		}
	}
	ready := &handler.ReadinessCheck{Name: "redis", Check: rc.Health}
	return session.NewRedisStore(rc.Client, session.WithRedisTTL(cfg.Session.TTL)), ready, closeFn, nil
}

// buildAuditStore prefers Postgres and falls back to process memory.
func buildAuditStore(ctx context.Context, cfg config.Server, log *slog.Logger) (audit.Store, *handler.ReadinessCheck, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, using in-memory audit store")
		return auditmemory.NewInMemoryStore(), nil, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	store := auditpostgres.New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close audit database", "error", err)
		}
	}
	ready := &handler.ReadinessCheck{Name: "postgres", Check: db.PingContext}
	return store, ready, closeFn, nil
}
