// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/ratelimit"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations accepted by Config fields.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Config holds audit logging configuration.
type Config struct {
	// Course controls course events (create, edit, approval, publish).
	Course string
	// Upload controls file upload events.
	Upload string
}

// Logger records audit events to MongoDB (via audit.Store) and zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. store may be nil when every destination
// is "log" or "off".
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.CourseID != nil {
		fields = append(fields, zap.String("course_id", event.CourseID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ActorRole != "" {
		fields = append(fields, zap.String("actor_role", event.ActorRole))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the configured destination for its
// category. A nil Logger is a no-op so handlers can run without auditing.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryCourse:
		setting = l.config.Course
	case audit.CategoryUpload:
		setting = l.config.Upload
	}
	if setting == "" {
		setting = ModeAll
	}
	if setting == ModeOff {
		return
	}

	if setting == ModeAll || setting == ModeLog {
		l.logToZap(event)
	}
	if (setting == ModeAll || setting == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// courseEvent fills the fields shared by every course event.
func courseEvent(r *http.Request, eventType string, c models.Course) audit.Event {
	e := audit.Event{
		Category:  audit.CategoryCourse,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{},
	}
	if !c.ID.IsZero() {
		id := c.ID
		e.CourseID = &id
	}
	if u, ok := auth.CurrentUser(r); ok {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			e.ActorID = &oid
		}
		e.ActorRole = strings.ToLower(u.Role)
	}
	return e
}

// CourseCreated logs a new course.
func (l *Logger) CourseCreated(ctx context.Context, r *http.Request, c models.Course) {
	e := courseEvent(r, audit.EventCourseCreated, c)
	e.Details["title"] = c.Title
	e.Details["modules"] = strconv.Itoa(len(c.Modules))
	e.Details["lessons"] = strconv.Itoa(c.LessonCount())
	l.Log(ctx, e)
}

// CourseUpdated logs a full content replace. reopened marks a rejected
// course that went back to pending.
func (l *Logger) CourseUpdated(ctx context.Context, r *http.Request, c models.Course, reopened bool) {
	e := courseEvent(r, audit.EventCourseUpdated, c)
	e.Details["version"] = strconv.FormatInt(c.Version, 10)
	e.Details["lessons"] = strconv.Itoa(c.LessonCount())
	l.Log(ctx, e)
	if reopened {
		l.Log(ctx, courseEvent(r, audit.EventCourseReopened, c))
	}
}

// CourseApprovalChanged logs an admin review decision.
func (l *Logger) CourseApprovalChanged(ctx context.Context, r *http.Request, c models.Course) {
	e := courseEvent(r, audit.EventCourseApprovalChanged, c)
	e.Details["approval_status"] = c.ApprovalStatus
	if c.RejectionReason != "" {
		e.Details["rejection_reason"] = c.RejectionReason
	}
	l.Log(ctx, e)
}

// CoursePublishChanged logs a publish or unpublish.
func (l *Logger) CoursePublishChanged(ctx context.Context, r *http.Request, c models.Course) {
	t := audit.EventCourseUnpublished
	if c.Published {
		t = audit.EventCoursePublished
	}
	l.Log(ctx, courseEvent(r, t, c))
}

// CourseReviewRequested logs an instructor asking for review.
func (l *Logger) CourseReviewRequested(ctx context.Context, r *http.Request, c models.Course) {
	l.Log(ctx, courseEvent(r, audit.EventCourseReviewRequested, c))
}

// CourseWriteFailed logs a rejected or failed write. courseID may be nil
// for a failed create.
func (l *Logger) CourseWriteFailed(ctx context.Context, r *http.Request, courseID *primitive.ObjectID, op, reason string) {
	var c models.Course
	if courseID != nil {
		c.ID = *courseID
	}
	e := courseEvent(r, audit.EventCourseWriteFailed, c)
	e.Success = false
	e.FailureReason = reason
	e.Details["op"] = op
	l.Log(ctx, e)
}

// FileUploaded logs a stored upload.
func (l *Logger) FileUploaded(ctx context.Context, r *http.Request, kind, url string, size int64) {
	e := courseEvent(r, audit.EventFileUploaded, models.Course{})
	e.Category = audit.CategoryUpload
	e.Details["kind"] = kind
	e.Details["url"] = url
	e.Details["size"] = strconv.FormatInt(size, 10)
	l.Log(ctx, e)
}

// FileUploadFailed logs a rejected or failed upload.
func (l *Logger) FileUploadFailed(ctx context.Context, r *http.Request, kind, reason string) {
	e := courseEvent(r, audit.EventFileUploadFailed, models.Course{})
	e.Category = audit.CategoryUpload
	e.Success = false
	e.FailureReason = reason
	e.Details["kind"] = kind
	l.Log(ctx, e)
}
