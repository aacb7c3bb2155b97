// internal/app/features/courses/update.go
package courses

import (
	"net/http"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/inputval"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxRejectionReason = 2000

// HandleUpdate handles PUT /courses/{id}.
//
// The body is one of:
//
//	full aggregate                        owner or admin; replaces the content
//	{approvalStatus, rejectionReason}     admin only
//	{published}                           owner or admin; requires approval
//
// Any of them may carry "version" to turn on the conflict check.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var in updateInput
	if !h.decode(w, r, &in) {
		return
	}

	switch {
	case in.isFull():
		h.updateContent(w, r, id, &in)
	case in.ApprovalStatus != nil && in.Published != nil:
		httpjson.WriteError(w, http.StatusBadRequest, "Send either approvalStatus or published, not both.")
	case in.ApprovalStatus != nil:
		h.updateApproval(w, r, id, &in)
	case in.Published != nil:
		h.updatePublished(w, r, id, &in)
	default:
		httpjson.WriteError(w, http.StatusBadRequest, "Nothing to update. Send a full course, an approval decision, or a published flag.")
	}
}

// loadForWrite fetches the course and checks that the caller may see it and
// passes can. It writes the 403/404 response and returns false otherwise.
func (h *Handler) loadForWrite(w http.ResponseWriter, r *http.Request, id primitive.ObjectID, op string, can func(*http.Request, *models.Course) bool) (models.Course, bool) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load course")
	defer cancel()

	c, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.writeStoreError(w, r, &id, op, err)
		return models.Course{}, false
	}
	if !authz.CanViewCourse(r, &c) {
		httpjson.WriteError(w, http.StatusNotFound, "Course not found.")
		return models.Course{}, false
	}
	if !can(r, &c) {
		h.Audit.CourseWriteFailed(r.Context(), r, &id, op, "forbidden")
		httpjson.WriteError(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return models.Course{}, false
	}
	return c, true
}

func (h *Handler) updateContent(w http.ResponseWriter, r *http.Request, id primitive.ObjectID, in *updateInput) {
	if _, ok := h.loadForWrite(w, r, id, "update", authz.CanEditCourse); !ok {
		return
	}
	c, ok := h.validateAggregate(w, r, &in.courseInput, &id, "update")
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "replace course")
	defer cancel()

	res, err := h.Store.Replace(ctx, id, c, in.Version)
	if err != nil {
		h.writeStoreError(w, r, &id, "update", err)
		return
	}

	h.Log.Info("course updated",
		zap.String("course_id", id.Hex()),
		zap.Int64("version", res.Course.Version),
		zap.Bool("reopened", res.Reopened))
	h.Audit.CourseUpdated(r.Context(), r, res.Course, res.Reopened)

	msg := "Course updated successfully."
	if res.Reopened {
		h.notifyReviewRequested(r, res.Course)
		msg = "Course updated and resubmitted for review."
	}
	writeCourse(w, http.StatusOK, res.Course, msg)
}

func (h *Handler) updateApproval(w http.ResponseWriter, r *http.Request, id primitive.ObjectID, in *updateInput) {
	if !authz.CanReview(r) {
		h.Audit.CourseWriteFailed(r.Context(), r, &id, "approval", "forbidden")
		httpjson.WriteError(w, http.StatusForbidden, "Only administrators can change a course's approval status.")
		return
	}

	status := strings.TrimSpace(*in.ApprovalStatus)
	if !inputval.IsValidApprovalStatus(status) {
		msg := "Approval status must be one of: " + strings.Join(models.ApprovalStatuses, ", ") + "."
		httpjson.WriteValidation(w, msg, map[string]string{"approvalStatus": msg})
		return
	}
	var reason string
	if in.RejectionReason != nil {
		reason = strings.TrimSpace(*in.RejectionReason)
	}
	if status == models.ApprovalRejected && reason == "" {
		msg := "Rejection reason is required."
		httpjson.WriteValidation(w, msg, map[string]string{"rejectionReason": msg})
		return
	}
	if len(reason) > maxRejectionReason {
		msg := "Rejection reason must be at most 2000 characters."
		httpjson.WriteValidation(w, msg, map[string]string{"rejectionReason": msg})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set approval")
	defer cancel()

	updated, err := h.Store.SetApproval(ctx, id, status, reason, in.Version)
	if err != nil {
		h.writeStoreError(w, r, &id, "approval", err)
		return
	}

	h.Log.Info("course approval changed",
		zap.String("course_id", id.Hex()),
		zap.String("approval_status", status))
	h.Audit.CourseApprovalChanged(r.Context(), r, updated)
	h.notifyApprovalChanged(r, updated)

	var msg string
	switch status {
	case models.ApprovalApproved:
		msg = "Course approved."
	case models.ApprovalRejected:
		msg = "Course rejected."
	default:
		msg = "Course returned to pending review."
	}
	writeCourse(w, http.StatusOK, updated, msg)
}

func (h *Handler) updatePublished(w http.ResponseWriter, r *http.Request, id primitive.ObjectID, in *updateInput) {
	if _, ok := h.loadForWrite(w, r, id, "publish", authz.CanPublish); !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "set published")
	defer cancel()

	updated, err := h.Store.SetPublished(ctx, id, *in.Published, in.Version)
	if err != nil {
		h.writeStoreError(w, r, &id, "publish", err)
		return
	}

	h.Log.Info("course publish changed",
		zap.String("course_id", id.Hex()),
		zap.Bool("published", updated.Published))
	h.Audit.CoursePublishChanged(r.Context(), r, updated)

	msg := "Course unpublished."
	if updated.Published {
		msg = "Course published."
	}
	writeCourse(w, http.StatusOK, updated, msg)
}
