package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wagecore/internal/domain/history"
	"wagecore/internal/domain/payroll"
	"wagecore/internal/domain/tax"
	"wagecore/internal/platform/config"
	cryptoutil "wagecore/internal/platform/crypto"
	"wagecore/internal/platform/db"
	"wagecore/internal/platform/metrics"
	"wagecore/internal/platform/rules"
	payrollhandler "wagecore/internal/transport/http/handlers/payroll"
	ruleshandler "wagecore/internal/transport/http/handlers/rules"
	"wagecore/internal/transport/http/middleware"
)

type App struct {
	Config   config.Config
	DB       *pgxpool.Pool
	Registry *tax.Registry
	Router   http.Handler
}

// New loads tax rule documents, freezes the registry and assembles the HTTP
// stack. The database is optional; without one the engine still serves
// calculations and only run history and payslips are disabled.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := tax.NewRegistry()
	loaded, err := rules.Load(cfg.TaxRulesDir, registry)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %d tax rule documents from %s", loaded, cfg.TaxRulesDir)

	engine := payroll.NewEngine(registry, cfg.EngineWorkers)
	collector := metrics.New()

	cryptoService, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}

	var pool *pgxpool.Pool
	var historyStore *history.Store
	var payslips *payroll.PayslipService
	if cfg.DatabaseURL != "" {
		pool, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		historyStore = history.NewStore(pool)
		payslips = payroll.NewPayslipService(cfg.PayslipDir, cryptoService)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !registry.Frozen() {
			http.Error(w, "rules not loaded", http.StatusServiceUnavailable)
			return
		}
		if pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		payrollHandler := payrollhandler.NewHandler(engine, historyStore, payslips, collector)
		payrollHandler.RegisterRoutes(r)

		rulesHandler := ruleshandler.NewHandler(registry)
		rulesHandler.RegisterRoutes(r)
	})

	return &App{
		Config:   cfg,
		DB:       pool,
		Registry: registry,
		Router:   router,
	}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()

	app, err := New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("wagecore server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
