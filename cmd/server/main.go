package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/sygemat/provider-portal/internal/config"
	"github.com/sygemat/provider-portal/internal/repository/mongodb"
	"github.com/sygemat/provider-portal/internal/repository/sheets"
	"github.com/sygemat/provider-portal/internal/scheduler"
	"github.com/sygemat/provider-portal/internal/server/handlers"
	"github.com/sygemat/provider-portal/internal/server/router"
	articlessvc "github.com/sygemat/provider-portal/internal/service/articles"
	authsvc "github.com/sygemat/provider-portal/internal/service/auth"
	reportingsvc "github.com/sygemat/provider-portal/internal/service/reporting"
	resetsvc "github.com/sygemat/provider-portal/internal/service/reset"
	"github.com/sygemat/provider-portal/pkg/clients/sygemat"
	"github.com/sygemat/provider-portal/pkg/clients/webhook"
	"github.com/sygemat/provider-portal/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	// Lockout state survives restarts when MongoDB is configured; otherwise
	// the in-memory store still enforces lockouts for the process lifetime.
	var attemptStore authsvc.AttemptStore
	if cfg.MongoDB.URI != "" {
		lockoutStore, err := mongodb.NewLockoutStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init lockout store", zap.Error(err))
		}
		defer func() {
			if err := lockoutStore.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		attemptStore = lockoutStore
	} else {
		baseLogger.Warn("MONGODB_URI not set, lockouts will not survive restarts")
		attemptStore = authsvc.NewMemoryStore()
	}

	vendorClient := sygemat.NewClient(cfg.Sygemat)
	mailerClient := webhook.NewClient(cfg.Reset)

	catalogSvc := articlessvc.NewService(vendorClient, cfg.Articles, baseLogger.Named("svc.articles"))

	limiter := authsvc.NewLimiter(attemptStore, authsvc.SystemClock{}, cfg.Limiter, baseLogger.Named("svc.limiter"))
	captcha := authsvc.NewCaptchaManager(authsvc.SystemClock{})
	authService := authsvc.NewService(vendorClient, limiter, captcha, baseLogger.Named("svc.auth"))

	resetService := resetsvc.NewService(vendorClient, mailerClient, cfg.Reset, baseLogger.Named("svc.reset"))

	var snapshotSvc *reportingsvc.Service
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		snapshotSvc = reportingsvc.NewService(catalogSvc, sheetsRepo, cfg.Sheets, baseLogger.Named("svc.reporting"))
		baseLogger.Info("catalog snapshot export enabled")
	}

	authHandler := handlers.NewAuthHandler(authService, baseLogger.Named("handlers.auth"))
	articlesHandler := handlers.NewArticlesHandler(catalogSvc, cfg.Articles, baseLogger.Named("handlers.articles"))
	resetHandler := handlers.NewResetHandler(resetService, baseLogger.Named("handlers.reset"))
	engine := router.New(authHandler, articlesHandler, resetHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, limiter, snapshotSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
