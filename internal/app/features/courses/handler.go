// internal/app/features/courses/handler.go
package courses

import (
	"context"
	"errors"
	"net/http"

	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/notify"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the course persistence endpoints.
//
// It is constructed once at startup in bootstrap with the shared Mongo
// database, the audit logger, and the notifier.
type Handler struct {
	Store   *coursestore.Store
	Audit   *auditlog.Logger
	Notify  notify.Notifier
	Log     *zap.Logger
	MaxBody int64
}

// NewHandler constructs a course Handler. A nil notifier is replaced by
// notify.Nop so handlers never need to check for one.
func NewHandler(db *mongo.Database, audit *auditlog.Logger, n notify.Notifier, logger *zap.Logger) *Handler {
	if n == nil {
		n = notify.Nop{}
	}
	return &Handler{
		Store:   coursestore.New(db),
		Audit:   audit,
		Notify:  n,
		Log:     logger,
		MaxBody: httpjson.DefaultMaxBody,
	}
}

// courseResponse is the success envelope for single-course responses.
type courseResponse struct {
	Success bool           `json:"success"`
	Course  *models.Course `json:"course"`
	Message string         `json:"message,omitempty"`
}

func writeCourse(w http.ResponseWriter, status int, c models.Course, msg string) {
	httpjson.WriteJSON(w, status, courseResponse{Success: true, Course: &c, Message: msg})
}

// parseID reads the {id} URL parameter.
func parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "Invalid course id.")
		return primitive.NilObjectID, false
	}
	return id, true
}

// decode reads the request body and writes the 400/413 response on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpjson.Decode(r, dst, h.MaxBody); err != nil {
		if errors.Is(err, httpjson.ErrBodyTooLarge) {
			httpjson.WriteError(w, http.StatusRequestEntityTooLarge, "Request body is too large.")
			return false
		}
		httpjson.WriteError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return false
	}
	return true
}

// writeStoreError maps store errors to responses. Unexpected errors are
// logged and reported with a generic 500 so driver details never reach
// the client.
func (h *Handler) writeStoreError(w http.ResponseWriter, r *http.Request, courseID *primitive.ObjectID, op string, err error) {
	switch {
	case errors.Is(err, coursestore.ErrNotFound):
		httpjson.WriteError(w, http.StatusNotFound, "Course not found.")
		return
	case errors.Is(err, coursestore.ErrVersionConflict):
		h.Audit.CourseWriteFailed(r.Context(), r, courseID, op, "version conflict")
		httpjson.WriteError(w, http.StatusConflict, "This course was changed by someone else. Reload it and try again.")
		return
	case errors.Is(err, coursestore.ErrNotApproved):
		httpjson.WriteError(w, http.StatusConflict, "Only approved courses can be published.")
		return
	case errors.Is(err, coursestore.ErrDuplicateID):
		httpjson.WriteError(w, http.StatusConflict, "A course with this id already exists.")
		return
	}

	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if courseID != nil {
		fields = append(fields, zap.String("course_id", courseID.Hex()))
	}
	h.Log.Error("course write failed", fields...)
	h.Audit.CourseWriteFailed(r.Context(), r, courseID, op, "database error")
	httpjson.WriteError(w, http.StatusInternalServerError, "We could not save the course. Please try again.")
}

// notifyCtx bounds a notifier call and detaches it from the request so a
// client disconnect after the write does not cancel the notification.
func notifyCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Short())
}

func (h *Handler) notifyReviewRequested(r *http.Request, c models.Course) {
	ctx, cancel := notifyCtx(r)
	defer cancel()
	if err := h.Notify.CourseReviewRequested(ctx, c); err != nil {
		h.Log.Warn("review notification failed",
			zap.String("course_id", c.ID.Hex()), zap.Error(err))
	}
}

func (h *Handler) notifyApprovalChanged(r *http.Request, c models.Course) {
	ctx, cancel := notifyCtx(r)
	defer cancel()
	if err := h.Notify.CourseApprovalChanged(ctx, c); err != nil {
		h.Log.Warn("approval notification failed",
			zap.String("course_id", c.ID.Hex()), zap.Error(err))
	}
}
