// internal/app/features/courses/view.go
package courses

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
)

// ServeView handles GET /courses/{id}.
//
// Drafts (unpublished or not yet approved) are reported as not found to
// everyone except their owner and admins.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get course")
	defer cancel()

	c, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.writeStoreError(w, r, &id, "get", err)
		return
	}
	if !authz.CanViewCourse(r, &c) {
		httpjson.WriteError(w, http.StatusNotFound, "Course not found.")
		return
	}

	writeCourse(w, http.StatusOK, c, "")
}
