// internal/app/features/courses/review.go
package courses

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleSubmitReview handles POST /courses/{id}/submit-review.
//
// It tells reviewers the course is ready. Nothing is written to the course;
// a notifier failure is logged and the request still succeeds.
func (h *Handler) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, ok := h.loadForWrite(w, r, id, "submit_review", authz.CanEditCourse)
	if !ok {
		return
	}
	if c.ApprovalStatus == models.ApprovalApproved {
		httpjson.WriteError(w, http.StatusConflict, "This course is already approved.")
		return
	}

	h.Log.Info("course review requested", zap.String("course_id", id.Hex()))
	h.Audit.CourseReviewRequested(r.Context(), r, c)
	h.notifyReviewRequested(r, c)

	httpjson.WriteJSON(w, http.StatusAccepted, courseResponse{
		Success: true,
		Course:  &c,
		Message: "Your course has been submitted for review.",
	})
}
