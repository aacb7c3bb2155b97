// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down DB connections and other resources.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	return closeDeps(ctx, deps, logger)
}

// closeDeps closes whatever deps holds. Every close is attempted; the
// errors are joined.
func closeDeps(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	var errs []error
	if deps.AuditPrune != nil {
		deps.AuditPrune.Stop()
	}
	if deps.Redis != nil {
		logger.Info("closing Redis notifier")
		if err := deps.Redis.Close(); err != nil {
			logger.Error("Redis close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.GCS != nil {
		logger.Info("closing GCS client")
		if err := deps.GCS.Close(); err != nil {
			logger.Error("GCS close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.LearnHubMongoClient != nil {
		logger.Info("disconnecting LearnHub MongoDB client")
		if err := deps.LearnHubMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
