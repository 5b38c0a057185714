package main

import (
	"context"

	"lms/internal/configuration"
	"lms/internal/core"
	"lms/internal/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	zap.ReplaceGlobals(zap.Must(zap.NewProduction()))

	config := configuration.Read()
	core.NewLogger(config.App.LogLevel)

	profile := configuration.GetProfile(config.App.Profile)

	shutdownTracing := core.InitTracing(config.App.TracingEndpoint)
	defer func() { _ = shutdownTracing(context.Background()) }()

	db := database.InitDB(config.Database)
	cache := core.NewCache(config.Cache)
	auditLogger := core.NewAuditLogger(config.Audit)
	notify := core.NewNotifier(config.Notifier)

	var eventsManager *core.EventsManager
	if profile.NeedsEvents() {
		eventsManager = core.NewEventsManager(config.Events)
	}

	appIdentity := uuid.New().String()

	if cache != nil {
		go cache.StartIdentityTicker(appIdentity)
		zap.L().Info("Cache identity ticker started")
	}

	if profile.Workers.AnyEnabled() {
		core.StartWorkers(profile, eventsManager, notify, config, cache, appIdentity)
	}

	if profile.HTTPServer {
		core.StartHTTPServer(config, db, cache, auditLogger, eventsManager)
	} else if profile.Workers.AnyEnabled() {
		zap.L().Info("Running in worker-only mode")
		select {} // Block forever
	}
}
