// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (LEARNHUB_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers ports, TLS, logging and CORS; everything course-specific lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Cookie sessions (browser callers)
	SessionKey    string        // Secret key for signing session cookies
	SessionName   string        // Cookie name (default: learnhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Bearer tokens (API and CLI callers)
	JWTSecret string        // HS256 signing secret; blank disables bearer auth
	JWTIssuer string        // iss claim written and required on tokens
	TokenTTL  time.Duration // lifetime of issued tokens

	// File storage configuration
	StorageType           string // "local" or "gcs"
	StorageLocalPath      string // Local storage root (e.g., "./uploads")
	StorageLocalURL       string // URL prefix for serving local files (e.g., "/files")
	StorageGCSBucket      string // GCS bucket name (only used if StorageType is "gcs")
	StorageGCSPublicURL   string // Public base URL for objects (default: storage.googleapis.com/<bucket>)
	StorageGCSCredentials string // Service account JSON file; empty uses Application Default Credentials
	UploadMaxBytes        int64  // Largest accepted upload
	UploadRatePerMinute   int    // Uploads allowed per caller per minute

	// Notifications (blank address means log-only)
	RedisAddr    string
	RedisChannel string

	// Audit logging destinations: all, db, log, off
	AuditLogCourse string
	AuditLogUpload string
	// AuditRetention is how long audit events are kept; 0 keeps them.
	AuditRetention time.Duration
}
