// internal/app/features/auditlog/list.go
package auditlog

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

// ServeList handles GET /audit. Admin only (enforced in routes.go).
//
// Filters: category, event_type, course (id), start_date and end_date
// (YYYY-MM-DD, end inclusive), page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	page := 1
	if p, err := strconv.Atoi(query.Get(r, "page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		EventType: query.Get(r, "event_type"),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if c := query.Get(r, "category"); c != "" {
		if !models.IsOneOf(c, allCategories()) {
			httpjson.WriteError(w, http.StatusBadRequest, "Unknown category.")
			return
		}
		filter.Category = c
	}
	if s := query.Get(r, "course"); s != "" {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			httpjson.WriteError(w, http.StatusBadRequest, "Invalid course id.")
			return
		}
		filter.CourseID = &id
	}
	if s := query.Get(r, "start_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.StartTime = &t
		}
	}
	if s := query.Get(r, "end_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			endOfDay := t.Add(24*time.Hour - time.Nanosecond)
			filter.EndTime = &endOfDay
		}
	}

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}
	httpjson.WriteJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Events:     toItems(events),
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}

// ServeCourseHistory handles GET /audit/courses/{id}: the most recent
// events for one course. Visible to the course owner and admins.
func (h *Handler) ServeCourseHistory(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "Invalid course id.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "course history")
	defer cancel()

	c, err := h.Courses.GetByID(ctx, id)
	if errors.Is(err, coursestore.ErrNotFound) {
		httpjson.WriteError(w, http.StatusNotFound, "Course not found.")
		return
	}
	if err != nil {
		h.Log.Error("failed to load course", zap.String("course_id", id.Hex()), zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}
	if !authz.CanEditCourse(r, &c) {
		httpjson.WriteError(w, http.StatusNotFound, "Course not found.")
		return
	}

	events, err := h.Events.GetByCourse(ctx, id, pageSize)
	if err != nil {
		h.Log.Error("failed to query course history", zap.String("course_id", id.Hex()), zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Events:     toItems(events),
		Total:      int64(len(events)),
		Page:       1,
		TotalPages: 1,
	})
}
