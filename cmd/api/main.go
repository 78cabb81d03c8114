package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/medgrid/emr-admin/internal/config"
	authHandler "github.com/medgrid/emr-admin/internal/handler/auth"
	cityHandler "github.com/medgrid/emr-admin/internal/handler/city"
	healthHandler "github.com/medgrid/emr-admin/internal/handler/health"
	lookupHandler "github.com/medgrid/emr-admin/internal/handler/lookup"
	navHandler "github.com/medgrid/emr-admin/internal/handler/nav"
	patientHandler "github.com/medgrid/emr-admin/internal/handler/patient"
	preferenceHandler "github.com/medgrid/emr-admin/internal/handler/preference"
	stateHandler "github.com/medgrid/emr-admin/internal/handler/state"
	userHandler "github.com/medgrid/emr-admin/internal/handler/user"
	"github.com/medgrid/emr-admin/internal/email"
	"github.com/medgrid/emr-admin/internal/middleware"
	"github.com/medgrid/emr-admin/internal/model"
	"github.com/medgrid/emr-admin/internal/repository/postgres"
	"github.com/medgrid/emr-admin/internal/router"
	authService "github.com/medgrid/emr-admin/internal/service/auth"
	cityService "github.com/medgrid/emr-admin/internal/service/city"
	"github.com/medgrid/emr-admin/internal/service/lookup"
	navService "github.com/medgrid/emr-admin/internal/service/nav"
	patientService "github.com/medgrid/emr-admin/internal/service/patient"
	preferenceService "github.com/medgrid/emr-admin/internal/service/preference"
	stateService "github.com/medgrid/emr-admin/internal/service/state"
	userService "github.com/medgrid/emr-admin/internal/service/user"
	"github.com/medgrid/emr-admin/internal/worker"
	"github.com/medgrid/emr-admin/pkg/auth"
	"github.com/medgrid/emr-admin/pkg/kvstore"
	"github.com/medgrid/emr-admin/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	if err := model.RegisterValidations(); err != nil {
		log.Fatal().Err(err).Msg("failed to register request validations")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	store := newPreferenceStore(cfg.Redis)
	defer store.Close()

	// Repositories
	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	stateRepo := postgres.NewStateRepository(base)
	cityRepo := postgres.NewCityRepository(base)
	roleRepo := postgres.NewRoleRepository(base)
	tokenRepo := postgres.NewTokenRepository(base)

	// Mail delivery
	var emailSvc email.Service
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	} else {
		log.Warn().Msg("no SMTP host configured, emails will be logged only")
		emailSvc = email.NewNoopService()
	}

	// Services
	lookupSvc := lookup.NewService(roleRepo, stateRepo, cityRepo)
	jwtSvc := auth.NewJWTService(cfg.JWT)
	authSvc := authService.NewService(userRepo, tokenRepo, jwtSvc, emailSvc, lookupSvc)
	userSvc := userService.NewService(userRepo, lookupSvc, emailSvc)
	patientSvc := patientService.NewService(patientRepo, lookupSvc)
	stateSvc := stateService.NewService(stateRepo, lookupSvc)
	citySvc := cityService.NewService(cityRepo, lookupSvc)
	prefSvc := preferenceService.NewService(store)
	navSvc := navService.NewService()

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc, prefSvc),
		healthHandler.NewHandler(db, store),
		userHandler.NewHandler(userSvc),
		patientHandler.NewHandler(patientSvc),
		stateHandler.NewHandler(stateSvc),
		cityHandler.NewHandler(citySvc),
		preferenceHandler.NewHandler(prefSvc),
		navHandler.NewHandler(navSvc),
		lookupHandler.NewHandler(lookupSvc),
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.Rate.RPS),
			RateBurst:     cfg.Rate.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "emr_admin",
		},
	)
	r.Setup()

	// Expired reset codes are purged hourly; consumed codes are kept a
	// day for support queries.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanup := worker.NewTokenCleanupWorker(tokenRepo, 24*time.Hour, time.Hour)
	go cleanup.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// newPreferenceStore connects to Redis when configured and falls back
// to an in-process store otherwise.
func newPreferenceStore(cfg config.RedisConfig) kvstore.Store {
	if cfg.URL == "" {
		log.Warn().Msg("no Redis URL configured, preferences will not survive restarts")
		return kvstore.NewMemoryStore()
	}

	store, err := kvstore.NewRedisStore(kvstore.RedisConfig{
		URL:          cfg.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	return store
}
