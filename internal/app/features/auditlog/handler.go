// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/learnhub/internal/app/store/audit"
	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the audit trail as JSON for admins and course owners.
type Handler struct {
	Events  *audit.Store
	Courses *coursestore.Store
	Log     *zap.Logger
}

// NewHandler constructs an audit log feature handler bound to the given
// Mongo database and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Events:  audit.New(db),
		Courses: coursestore.New(db),
		Log:     logger,
	}
}
