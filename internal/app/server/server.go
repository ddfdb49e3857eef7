package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"evalportal/internal/domain/audit"
	"evalportal/internal/domain/auth"
	"evalportal/internal/domain/core"
	"evalportal/internal/domain/feedback"
	"evalportal/internal/domain/performance"
	"evalportal/internal/domain/reports"
	"evalportal/internal/platform/config"
	"evalportal/internal/platform/db"
	"evalportal/internal/platform/email"
	"evalportal/internal/platform/events"
	"evalportal/internal/platform/jobs"
	audithandler "evalportal/internal/transport/http/handlers/audit"
	authhandler "evalportal/internal/transport/http/handlers/auth"
	corehandler "evalportal/internal/transport/http/handlers/core"
	feedbackhandler "evalportal/internal/transport/http/handlers/feedback"
	jobshandler "evalportal/internal/transport/http/handlers/jobs"
	performancehandler "evalportal/internal/transport/http/handlers/performance"
	reportshandler "evalportal/internal/transport/http/handlers/reports"
	"evalportal/internal/transport/http/middleware"
)

// Services groups the domain services behind the HTTP API. The CLI reuses it
// to run the same operations without a listener.
type Services struct {
	Auth        *auth.Service
	Credentials *auth.Store
	Core        *core.Service
	Audit       *audit.Service
	Performance *performance.Service
	Reports     *reports.Service
	Feedback    *feedback.Service
	Jobs        *jobs.Service
}

type App struct {
	Config    config.Config
	DB        *pgxpool.Pool
	Router    http.Handler
	Services  Services
	publisher events.Publisher
}

// NewServices wires every domain service onto pool.
func NewServices(cfg config.Config, pool *pgxpool.Pool, publisher events.Publisher) Services {
	auditSvc := audit.New(pool)
	perfSvc := performance.NewService(performance.NewStore(pool), publisher, auditSvc)
	jobSvc := jobs.New(pool)
	jobSvc.Every(jobs.JobCycleExpiry, cfg.CycleExpiryInterval, func(ctx context.Context) (any, error) {
		ids, err := perfSvc.ExpireCycles(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"closed": ids}, nil
	})

	credentials := auth.NewStore(pool)
	return Services{
		Auth:        auth.NewService(credentials, cfg.JWTSecret, cfg.TokenTTL),
		Credentials: credentials,
		Core:        core.NewService(core.NewStore(pool)),
		Audit:       auditSvc,
		Performance: perfSvc,
		Reports:     reports.NewService(reports.NewStore(pool), perfSvc, cfg.LeaderboardLimit),
		Feedback:    feedback.NewService(feedback.NewStore(pool), email.New(cfg)),
		Jobs:        jobSvc,
	}
}

// Open connects to the database and applies migrations and seed data as
// configured.
func Open(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return pool, nil
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	publisher := events.New(cfg.KafkaBroker, cfg.KafkaTopic)
	services := NewServices(cfg, pool, publisher)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recover)
	router.Use(middleware.Logger)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxImportBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	if cfg.RateLimitPerMinute > 0 {
		router.Use(middleware.SensitiveRateLimit(cfg.RateLimitPerMinute, time.Minute))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	idempotency := middleware.NewIdempotencyStore(pool)
	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(services.Auth, services.Core).RegisterRoutes(r)

		performanceHandler := performancehandler.NewHandler(services.Performance, services.Core, services.Jobs, idempotency)
		performanceHandler.RegisterRoutes(r)

		coreHandler := corehandler.NewHandler(services.Core, services.Audit)
		coreHandler.EmployeeRoutes = append(coreHandler.EmployeeRoutes, performanceHandler.RegisterEmployeeRoutes)
		coreHandler.RegisterRoutes(r)

		reportshandler.NewHandler(services.Reports).RegisterRoutes(r)
		feedbackhandler.NewHandler(services.Feedback).RegisterRoutes(r)
		audithandler.NewHandler(services.Audit).RegisterRoutes(r)
		jobshandler.NewHandler(services.Jobs).RegisterRoutes(r)
	})

	return &App{
		Config:    cfg,
		DB:        pool,
		Router:    router,
		Services:  services,
		publisher: publisher,
	}, nil
}

func (a *App) Close() {
	if closer, ok := a.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			slog.Warn("event publisher close failed", "err", err)
		}
	}
	a.DB.Close()
}

// Serve runs the HTTP listener and the background jobs until ctx is
// cancelled, then shuts the listener down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	a.Services.Jobs.Start(gctx)

	g.Go(func() error {
		slog.Info("evalportal listening", "addr", srv.Addr, "env", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		slog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Run loads configuration from the environment and serves until SIGINT or
// SIGTERM.
func Run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Serve(ctx)
}
