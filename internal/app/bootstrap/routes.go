// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	auditlogfeature "github.com/dalemusser/learnhub/internal/app/features/auditlog"
	coursesfeature "github.com/dalemusser/learnhub/internal/app/features/courses"
	healthfeature "github.com/dalemusser/learnhub/internal/app/features/health"
	uploadsfeature "github.com/dalemusser/learnhub/internal/app/features/uploads"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Every route speaks JSON; the session/token
// middleware runs first so handlers can read the caller with
// auth.CurrentUser.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	if appCfg.JWTSecret != "" {
		tokens, err := auth.NewTokens(appCfg.JWTSecret, appCfg.JWTIssuer, appCfg.TokenTTL)
		if err != nil {
			logger.Error("token verifier init failed", zap.Error(err))
			return nil, err
		}
		sessionMgr.UseTokens(tokens)
		logger.Info("bearer token auth enabled", zap.String("issuer", appCfg.JWTIssuer))
	} else {
		logger.Warn("jwt_secret not set; bearer token auth disabled")
	}

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteError(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	// Global auth middleware: loads the caller into context if present.
	r.Use(sessionMgr.LoadUser)

	// Health check endpoint for load balancers and orchestrators.
	// A nil *RedisNotifier must not reach the Pinger interface.
	var redis healthfeature.Pinger
	if deps.Redis != nil {
		redis = deps.Redis
	}
	healthHandler := healthfeature.NewHandler(deps.LearnHubMongoClient, redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Course aggregate endpoints
	coursesHandler := coursesfeature.NewHandler(deps.LearnHubMongoDatabase, deps.Audit, deps.Notifier, logger)
	r.Mount("/courses", coursesfeature.Routes(coursesHandler))

	// File uploads (thumbnails and lesson resources)
	uploadLimiter := ratelimit.New(appCfg.UploadRatePerMinute, time.Minute)
	uploadsHandler := uploadsfeature.NewHandler(deps.Files, deps.Audit, appCfg.UploadMaxBytes, logger)
	r.Mount("/uploads", uploadsfeature.Routes(uploadsHandler, ratelimit.Middleware(uploadLimiter, nil)))

	// Serve locally stored uploads; GCS objects are served by Google.
	if appCfg.StorageType != StorageGCS {
		prefix := "/" + strings.Trim(appCfg.StorageLocalURL, "/")
		r.Handle(prefix+"/*", fileserver.Handler(prefix, appCfg.StorageLocalPath))
	}

	// Audit trail
	auditHandler := auditlogfeature.NewHandler(deps.LearnHubMongoDatabase, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler))

	return r, nil
}
