// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/filestore"
	"github.com/dalemusser/learnhub/internal/app/system/indexes"
	"github.com/dalemusser/learnhub/internal/app/system/notify"
	"github.com/dalemusser/learnhub/internal/app/system/validators"
	"github.com/dalemusser/learnhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB dials MongoDB and builds the back-end collaborators: the file
// store, the notifier, and the audit logger. Anything opened here is closed
// in Shutdown, or immediately when a later step fails.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("learnhub"))
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	db := client.Database(appCfg.MongoDatabase)
	deps := DBDeps{
		LearnHubMongoClient:   client,
		LearnHubMongoDatabase: db,
	}

	fail := func(err error) (DBDeps, error) {
		closeDeps(context.Background(), deps, logger)
		return DBDeps{}, err
	}

	var backend storage.Store
	switch appCfg.StorageType {
	case StorageGCS:
		gcs, err := storage.NewGCS(ctx, storage.GCSConfig{
			Bucket:          appCfg.StorageGCSBucket,
			CredentialsFile: appCfg.StorageGCSCredentials,
			BaseURL:         strings.TrimRight(appCfg.StorageGCSPublicURL, "/"),
		})
		if err != nil {
			return fail(fmt.Errorf("gcs storage: %w", err))
		}
		deps.GCS = gcs
		backend = gcs
		logger.Info("file storage: gcs", zap.String("bucket", appCfg.StorageGCSBucket))
	default:
		local, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return fail(fmt.Errorf("local storage: %w", err))
		}
		backend = local
		logger.Info("file storage: local",
			zap.String("path", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL))
	}
	files, err := filestore.New(backend)
	if err != nil {
		return fail(err)
	}
	deps.Files = files

	notifiers := notify.Multi{notify.LogNotifier{Log: logger}}
	if appCfg.RedisAddr != "" {
		rn, err := notify.NewRedisNotifier(ctx, appCfg.RedisAddr, appCfg.RedisChannel, logger)
		if err != nil {
			return fail(fmt.Errorf("redis notifier: %w", err))
		}
		deps.Redis = rn
		notifiers = append(notifiers, rn)
		logger.Info("course notifications: redis", zap.String("addr", appCfg.RedisAddr))
	}
	deps.Notifier = notifiers

	events := audit.New(db)
	deps.Audit = auditlog.New(events, logger, auditlog.Config{
		Course: appCfg.AuditLogCourse,
		Upload: appCfg.AuditLogUpload,
	})
	if appCfg.AuditRetention > 0 {
		deps.AuditPrune = workers.NewAuditPrune(events, logger, time.Hour, appCfg.AuditRetention)
	}

	return deps, nil
}

// EnsureSchema creates collections, JSON-Schema validators, and indexes.
// Validators are best effort (some servers lack collMod); indexes are not.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.LearnHubMongoDatabase
	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Warn("validators not fully applied", zap.Error(err))
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	return nil
}
