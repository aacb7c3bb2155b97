package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/filestore"
	"github.com/dalemusser/learnhub/internal/app/system/notify"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "learnhub",
		SessionKey:          "test-session-key-0123456789abcdef0123",
		SessionName:         "learnhub-session",
		StorageType:         StorageLocal,
		StorageLocalPath:    "./uploads",
		StorageLocalURL:     "/files",
		UploadMaxBytes:      1 << 20,
		UploadRatePerMinute: 10,
		AuditLogCourse:      auditlog.ModeAll,
		AuditLogUpload:      auditlog.ModeLog,
	}
}

func TestValidateApp(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid local", "dev", func(*AppConfig) {}, ""},
		{"gcs with bucket", "dev", func(c *AppConfig) {
			c.StorageType = StorageGCS
			c.StorageGCSBucket = "learnhub-files"
		}, ""},
		{"gcs without bucket", "dev", func(c *AppConfig) { c.StorageType = StorageGCS }, "storage_gcs_bucket"},
		{"local without path", "dev", func(c *AppConfig) { c.StorageLocalPath = " " }, "storage_local_path"},
		{"unknown storage", "dev", func(c *AppConfig) { c.StorageType = "s3" }, "unknown storage_type"},
		{"bad audit mode", "dev", func(c *AppConfig) { c.AuditLogCourse = "loud" }, "audit_log_course"},
		{"zero upload size", "dev", func(c *AppConfig) { c.UploadMaxBytes = 0 }, "upload_max_bytes"},
		{"zero upload rate", "dev", func(c *AppConfig) { c.UploadRatePerMinute = 0 }, "upload_rate_per_minute"},
		{"negative retention", "dev", func(c *AppConfig) { c.AuditRetention = -time.Hour }, "audit_retention"},
		{"short secret in dev", "dev", func(c *AppConfig) { c.JWTSecret = "short" }, ""},
		{"short secret in prod", "prod", func(c *AppConfig) { c.JWTSecret = "short" }, "jwt_secret"},
		{"no secret in prod", "prod", func(c *AppConfig) { c.JWTSecret = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := validateApp(tt.env, cfg)
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tt.wantErr != "" && err == nil:
				t.Errorf("expected error containing %q", tt.wantErr)
			case tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr):
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestCloseDeps_Empty(t *testing.T) {
	if err := closeDeps(context.Background(), DBDeps{}, testLogger()); err != nil {
		t.Errorf("closeDeps on empty deps: %v", err)
	}
}

func TestStartup(t *testing.T) {
	t.Setenv("LEARNHUB_TIMEOUT_SHORT", "7s")
	t.Cleanup(timeouts.Reset)
	if err := Startup(context.Background(), &config.CoreConfig{}, validAppConfig(), DBDeps{}, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if got := timeouts.Short().String(); got != "7s" {
		t.Errorf("Short timeout = %s, want 7s", got)
	}
}

func TestBuildHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)

	files, err := filestore.New(storage.NewMemory(storage.MemoryConfig{BaseURL: "/files"}))
	if err != nil {
		t.Fatalf("filestore.New: %v", err)
	}
	deps := DBDeps{
		LearnHubMongoClient:   db.Client(),
		LearnHubMongoDatabase: db,
		Files:                 files,
		Notifier:              notify.Nop{},
		Audit:                 auditlog.New(nil, testLogger(), auditlog.Config{Course: auditlog.ModeOff, Upload: auditlog.ModeOff}),
	}

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, validAppConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/courses", http.StatusOK},
		{http.MethodGet, "/courses/not-an-id", http.StatusBadRequest},
		{http.MethodPost, "/courses", http.StatusUnauthorized},
		{http.MethodPost, "/uploads", http.StatusUnauthorized},
		{http.MethodGet, "/audit", http.StatusUnauthorized},
		{http.MethodGet, "/files/missing.pdf", http.StatusNotFound},
		{http.MethodGet, "/no-such-route", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
