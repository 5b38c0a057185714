package core

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lms/internal/audit"
	c "lms/internal/cache"
	"lms/internal/configuration"
	"lms/internal/events"
	m "lms/internal/middlewares"
	"lms/internal/models"
	"lms/internal/notifier"
	"lms/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func StartWorkers(
	profile models.Profile,
	eventsManager *EventsManager,
	notify notifier.INotifier,
	config models.Configuration,
	cache c.ICache,
	appIdentity string,
) {
	eventParams := events.EventParams{
		PlatformName: config.App.PlatformName,
		SupportURL:   config.App.SupportURL,
		Notifier:     notify,
	}

	startWorker(profile.Workers.Notifications, "notifications", cache, appIdentity, func(_ context.Context) {
		notifications := eventsManager.GetSubscriber(configuration.EventsNotifications).Subscribe()
		events.HandleEvents(eventParams, notifications)
	})
}

func startWorker(
	mode models.WorkerMode,
	workerName string,
	cache c.ICache,
	appIdentity string,
	runWorker func(context.Context),
) {
	if mode == models.WorkerModeDisabled {
		return
	}

	if mode == models.WorkerModeSingleton {
		go startSingletonWorker(cache, appIdentity, workerName, runWorker)
		return
	}

	go runWorker(context.Background())
	zap.L().Info("Started worker", zap.String("worker", workerName))
}

// startSingletonWorker keeps exactly one instance of the worker running
// across the deployment, coordinated through a cache lock.
func startSingletonWorker(cache c.ICache, instanceID string, workerName string, runWorker func(context.Context)) {
	lockKey := fmt.Sprintf(configuration.CacheAppWorkerLockKey, workerName)
	ticker := time.NewTicker(time.Duration(configuration.CacheAppWorkerLockRefresh) * time.Second)
	defer ticker.Stop()

	var cancelWorker context.CancelFunc

	for ; ; <-ticker.C {
		if cancelWorker == nil {
			acquired, err := cache.TryAcquireLock(lockKey, instanceID, configuration.CacheAppWorkerLockTTL)
			if err != nil {
				zap.L().Error("Failed to acquire worker lock", zap.String("worker", workerName), zap.Error(err))
				continue
			}
			if !acquired {
				continue
			}

			zap.L().Info("Acquired worker lock, starting worker", zap.String("worker", workerName))
			var ctx context.Context
			ctx, cancelWorker = context.WithCancel(context.Background())
			go runWorker(ctx)
			continue
		}

		refreshed, err := cache.RefreshLock(lockKey, instanceID, configuration.CacheAppWorkerLockTTL)
		if err != nil || !refreshed {
			zap.L().Warn("Lost worker lock, stopping worker", zap.String("worker", workerName))
			cancelWorker()
			cancelWorker = nil
		}
	}
}

func StartHTTPServer(
	config models.Configuration,
	db *gorm.DB,
	cache c.ICache,
	auditLogger audit.IAuditLogger,
	eventsManager *EventsManager,
) {
	r := chi.NewRouter()

	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(m.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.App.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authConfig := config.GetAuthConfig()
	r.Use(m.Authenticate(db, authConfig))

	authService := services.AuthService{
		DB:            db,
		Cache:         cache,
		AuthConfig:    authConfig,
		Analytics:     eventsManager.GetPublisher(configuration.EventsAnalytics),
		Notifications: eventsManager.GetPublisher(configuration.EventsNotifications),
		AuditLogger:   auditLogger,
	}
	r.Mount("/", authService.Routes())

	// The authoring site's public pages live under their own prefix; the
	// pages themselves proxy to the LMS login/registration.
	r.Mount("/studio", services.PublicService{AuthConfig: authConfig}.Routes())

	r.Mount("/admin", services.AdminService{DB: db, AuditLogger: auditLogger}.Routes())

	zap.L().Info("HTTP server starting", zap.Int("port", config.App.Port))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.App.Port),
		Handler:      otelhttp.NewHandler(r, "http.server"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		zap.L().Error("Failed to start the app", zap.Error(err))
	}
}
