package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freightdash/tracking-gateway/internal/api/handler"
	"github.com/freightdash/tracking-gateway/internal/api/middleware"
	"github.com/freightdash/tracking-gateway/internal/core/service"
	"github.com/freightdash/tracking-gateway/internal/infrastructure/config"
	mongodb "github.com/freightdash/tracking-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/freightdash/tracking-gateway/internal/infrastructure/db/redis"
	"github.com/freightdash/tracking-gateway/internal/infrastructure/queue"
)

// NewRouter builds the Echo instance with all routes registered, plus the
// persistence dispatcher the caller must Start.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("tracking"))
	// The dashboard is served from arbitrary origins (preview deploys, local
	// dev); the surface is deliberately open.
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))

	// --- Dependencies ---
	credRepo := mongodb.NewCredentialRepository(db)
	eventStore := mongodb.NewEventStore(db)
	dedup := redisdb.NewDedupChecker(rdb)

	resolver := service.NewCredentialResolver(credRepo, cfg.Upstream.CredentialTTL, nil, log)
	settings := service.NewCredentialSettings(credRepo, resolver, log)
	gateway := service.NewGatewayService(resolver, nil, service.GatewayConfig{
		BaseURLV1:       cfg.Upstream.BaseURLV1,
		BaseURLV2:       cfg.Upstream.BaseURLV2,
		SandboxSecretV1: cfg.Upstream.SandboxSecretV1,
		SandboxSecretV2: cfg.Upstream.SandboxSecretV2,
		Timeout:         cfg.Upstream.Timeout,
	}, log)
	normalizer := service.NewNormalizerService(nil, log)
	records := service.NewRecordService(eventStore, dedup, log)
	dispatcher := queue.NewDispatcher(cfg.Upstream.StoreWorkers, records, log)

	gatewayHandler := handler.NewGatewayHandler(gateway)
	webhookHandler := handler.NewWebhookHandler(normalizer, dispatcher)
	classifyHandler := handler.NewClassifyHandler()
	credentialHandler := handler.NewCredentialHandler(settings)

	// --- Gateway proxy surface ---
	e.POST("/v1/track", gatewayHandler.Track)
	e.GET("/v1/track", gatewayHandler.TrackQuery)
	e.GET("/v1/classify", classifyHandler.Classify)

	// --- Provider webhooks ---
	e.POST("/webhooks/tracking", webhookHandler.Receive)

	// --- Credentials settings (external auth system mints the tokens) ---
	authMiddleware := middleware.Auth(cfg.JWTSecret)
	e.PUT("/v1/credentials/:scope", credentialHandler.Save, authMiddleware)
	e.DELETE("/v1/credentials/:scope", credentialHandler.Remove, authMiddleware)

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e, dispatcher
}
