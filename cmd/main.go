package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/resource-booking-api/internal/apperrors"
	"github.com/onerilhan/resource-booking-api/internal/config"
	"github.com/onerilhan/resource-booking-api/internal/db"
	"github.com/onerilhan/resource-booking-api/internal/handlers"
	"github.com/onerilhan/resource-booking-api/internal/logger"
	"github.com/onerilhan/resource-booking-api/internal/middleware"
	"github.com/onerilhan/resource-booking-api/internal/middleware/validation"
	"github.com/onerilhan/resource-booking-api/internal/migration"
	"github.com/onerilhan/resource-booking-api/internal/repository"
	"github.com/onerilhan/resource-booking-api/internal/rules"
	"github.com/onerilhan/resource-booking-api/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Println(".env file not found, reading the environment")
	}

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("environment", cfg.AppEnv).
		Str("port", cfg.Port).
		Str("price_unit_policy", cfg.PriceUnitPolicy).
		Msg("🚀 Resource booking API starting")

	database, err := db.Connect(cfg.GetDSN(), db.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Database connection failed")
	}
	defer database.Close()

	if cfg.AutoMigrate {
		runner, err := migration.NewRunner(database, migration.AppStartupConfig(cfg.MigrationsPath))
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Migration runner setup failed")
		}
		results, err := runner.RunUp(context.Background(), 0)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Startup migration failed")
		}
		log.Info().Int("applied", len(results)).Msg("Startup migrations done")
	}

	resourceRepo := repository.NewResourceRepository(database)
	auditRepo := repository.NewAuditRepository(database)

	auditQueue := services.NewAuditQueue(cfg.AuditWorkers, auditRepo, cfg.AuditBuffer)
	auditQueue.Start()

	resourceService := services.NewResourceService(rules.NewResourceRules(cfg.PriceUnitPolicy), resourceRepo, auditQueue)

	router := newRouter(cfg,
		handlers.NewResourceHandler(resourceService),
		handlers.NewHealthHandler(database),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      newHandler(ctx, cfg, router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("addr", serverAddr).
			Str("public_dir", cfg.PublicDir).
			Msg("🌐 HTTP server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ HTTP server failed")
		}
	}()

	<-shutdown
	log.Info().Msg("🛑 Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// 1. stop accepting requests and wait for in-flight ones
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ HTTP server shutdown failed")
	} else {
		log.Info().Msg("✅ HTTP server stopped")
	}

	// 2. flush pending booking log entries before the pool closes
	auditQueue.Stop()
	log.Info().Msg("✅ Booking log queue drained")

	log.Info().Msg("👋 Resource booking API stopped")
}

// newRouter registers the API, health, metrics and page routes
func newRouter(cfg *config.Config, resources *handlers.ResourceHandler, health *handlers.HealthHandler) *mux.Router {
	notFound := middleware.NotFoundHandler()

	router := mux.NewRouter()
	router.NotFoundHandler = notFound
	router.MethodNotAllowedHandler = notFound

	resources.RegisterRoutes(router.PathPrefix("/api/resources").Subrouter())
	router.MatcherFunc(func(r *http.Request, _ *mux.RouteMatch) bool {
		return middleware.IsAPIPath(r.URL.Path)
	}).Handler(middleware.NotFoundJSONHandler())

	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	pages := handlers.NewPageHandler(cfg.PublicDir, middleware.PageNotFoundHandler())
	router.HandleFunc("/", pages.Page("index.html")).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/resources", pages.Page("resources.html")).Methods(http.MethodGet, http.MethodHead)
	router.PathPrefix("/").HandlerFunc(pages.Static).Methods(http.MethodGet, http.MethodHead)

	_ = router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err == nil {
			methods, _ := route.GetMethods()
			log.Debug().
				Str("path", pathTemplate).
				Strs("methods", methods).
				Msg("📍 Route registered")
		}
		return nil
	})

	return router
}

// newHandler wraps the whole router, so unmatched routes get the same
// logging, recovery and headers as matched ones
func newHandler(ctx context.Context, cfg *config.Config, router http.Handler) http.Handler {
	errorConfig := apperrors.DefaultErrorConfig()
	securityConfig := middleware.DefaultSecurityConfig()
	if cfg.IsDevelopment() {
		errorConfig = apperrors.DevelopmentErrorConfig()
		securityConfig = middleware.DevelopmentSecurityConfig()
	}

	rateLimiter := middleware.NewRateLimitMiddleware(ctx, middleware.DefaultRateLimitConfig(cfg.RateLimitRPM))

	chain := []func(http.Handler) http.Handler{
		middleware.RequestLoggingMiddleware(middleware.DefaultLoggingConfig()),
		middleware.ErrorHandlingMiddleware(errorConfig),
		middleware.MetricsMiddleware(middleware.DefaultMetricsConfig()),
		middleware.SecurityHeadersMiddleware(securityConfig),
		middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.CORSAllowedOrigins)),
		rateLimiter.Handler(),
		validation.Middleware(validation.DefaultConfig()),
	}

	handler := router
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}
