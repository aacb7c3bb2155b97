// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/filestore"
	"github.com/dalemusser/learnhub/internal/app/system/notify"
	"github.com/dalemusser/learnhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and back-end dependencies for the app.
type DBDeps struct {
	LearnHubMongoClient   *mongo.Client
	LearnHubMongoDatabase *mongo.Database

	Files    filestore.Store
	Notifier notify.Notifier
	Audit    *auditlog.Logger

	// Redis is set only when redis_addr is configured; Shutdown closes it.
	Redis *notify.RedisNotifier
	// GCS is set only for storage_type=gcs; Shutdown closes it.
	GCS *storage.GCS
	// AuditPrune is set when audit_retention > 0. Startup starts it and
	// Shutdown stops it.
	AuditPrune *workers.AuditPrune
}
