// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Storage backends accepted by storage_type.
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

// minProdSecret is the shortest jwt_secret accepted in prod.
const minProdSecret = 32

// appConfigKeys defines the configuration keys for LearnHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, storage_type, etc.
//   - Environment variables: LEARNHUB_MONGO_URI, LEARNHUB_STORAGE_TYPE, etc.
//   - Command-line flags: --mongo_uri, --storage_type, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "learnhub", Desc: "MongoDB database name"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "learnhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session cookie lifetime"},

	{Name: "jwt_secret", Default: "", Desc: "HS256 secret for bearer tokens (blank disables bearer auth)"},
	{Name: "jwt_issuer", Default: "learnhub", Desc: "Issuer claim for bearer tokens"},
	{Name: "token_ttl", Default: "12h", Desc: "Lifetime of issued bearer tokens"},

	// File storage configuration
	{Name: "storage_type", Default: StorageLocal, Desc: "Storage backend: 'local' or 'gcs'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},
	{Name: "storage_gcs_bucket", Default: "", Desc: "GCS bucket name"},
	{Name: "storage_gcs_public_url", Default: "", Desc: "Public base URL for GCS objects"},
	{Name: "storage_gcs_credentials", Default: "", Desc: "Path to a GCS service account JSON file (default: application credentials)"},
	{Name: "upload_max_bytes", Default: 50 << 20, Desc: "Largest accepted upload in bytes"},
	{Name: "upload_rate_per_minute", Default: 30, Desc: "Uploads allowed per caller per minute"},

	// Notifications
	{Name: "redis_addr", Default: "", Desc: "Redis address for course notifications (blank logs only)"},
	{Name: "redis_channel", Default: "learnhub.courses", Desc: "Redis pub/sub channel for course notifications"},

	// Audit logging settings
	{Name: "audit_log_course", Default: auditlog.ModeAll, Desc: "Course event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_upload", Default: auditlog.ModeLog, Desc: "Upload event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long audit events are kept (0 keeps them forever)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// Precedence is flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LEARNHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 7*24*time.Hour),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),
		TokenTTL:  appValues.Duration("token_ttl", 12*time.Hour),

		StorageType:           strings.ToLower(strings.TrimSpace(appValues.String("storage_type"))),
		StorageLocalPath:      appValues.String("storage_local_path"),
		StorageLocalURL:       appValues.String("storage_local_url"),
		StorageGCSBucket:      appValues.String("storage_gcs_bucket"),
		StorageGCSPublicURL:   appValues.String("storage_gcs_public_url"),
		StorageGCSCredentials: appValues.String("storage_gcs_credentials"),
		UploadMaxBytes:        int64(appValues.Int("upload_max_bytes")),
		UploadRatePerMinute:   appValues.Int("upload_rate_per_minute"),

		RedisAddr:    appValues.String("redis_addr"),
		RedisChannel: appValues.String("redis_channel"),

		AuditLogCourse: appValues.String("audit_log_course"),
		AuditLogUpload: appValues.String("audit_log_upload"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It catches configuration errors before any backend is dialed.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env, appCfg)
}

func validateApp(env string, appCfg AppConfig) error {
	switch appCfg.StorageType {
	case StorageLocal:
		if strings.TrimSpace(appCfg.StorageLocalPath) == "" {
			return errors.New("storage_local_path is required when storage_type is 'local'")
		}
	case StorageGCS:
		if strings.TrimSpace(appCfg.StorageGCSBucket) == "" {
			return errors.New("storage_gcs_bucket is required when storage_type is 'gcs'")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want 'local' or 'gcs')", appCfg.StorageType)
	}

	for key, v := range map[string]string{
		"audit_log_course": appCfg.AuditLogCourse,
		"audit_log_upload": appCfg.AuditLogUpload,
	} {
		switch v {
		case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
		default:
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", key, v)
		}
	}

	if appCfg.AuditRetention < 0 {
		return errors.New("audit_retention must not be negative")
	}
	if appCfg.UploadMaxBytes <= 0 {
		return errors.New("upload_max_bytes must be positive")
	}
	if appCfg.UploadRatePerMinute <= 0 {
		return errors.New("upload_rate_per_minute must be positive")
	}

	if env == "prod" && appCfg.JWTSecret != "" && len(appCfg.JWTSecret) < minProdSecret {
		return fmt.Errorf("jwt_secret must be at least %d characters in prod", minProdSecret)
	}
	return nil
}
