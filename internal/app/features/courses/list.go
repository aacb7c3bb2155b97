// internal/app/features/courses/list.go
package courses

import (
	"net/http"
	"strings"

	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/inputval"
	"github.com/dalemusser/learnhub/internal/app/system/paging"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// ServeList handles GET /courses.
//
// Query parameters:
//
//	q          title prefix (case and accent insensitive)
//	category   exact category
//	mine=1     only the caller's own courses, in any state
//	status     approval status filter (admins, or with mine=1)
//	published  "true"/"false" filter (admins, or with mine=1)
//	before, after, limit   keyset paging
//
// Everyone else sees only published and approved courses.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	f := coursestore.ListFilter{
		Search:   query.Search(r, "q"),
		Category: query.Get(r, "category"),
		Before:   query.Get(r, "before"),
		After:    query.Get(r, "after"),
		Limit:    paging.ParseLimit(r),
	}

	_, _, uid, signedIn := authz.UserCtx(r)
	mine := query.Get(r, "mine") == "1"

	switch {
	case mine:
		if !signedIn {
			httpjson.WriteError(w, http.StatusUnauthorized, "Please sign in to continue.")
			return
		}
		f.InstructorID = &uid
	case authz.IsAdmin(r):
	default:
		f.PublicOnly = true
	}

	if mine || authz.IsAdmin(r) {
		if st := query.Get(r, "status"); st != "" {
			if !inputval.IsValidApprovalStatus(st) {
				msg := "Status must be one of: " + strings.Join(models.ApprovalStatuses, ", ") + "."
				httpjson.WriteValidation(w, msg, map[string]string{"status": msg})
				return
			}
			f.ApprovalStatus = st
		}
		switch strings.ToLower(query.Get(r, "published")) {
		case "true", "1":
			b := true
			f.Published = &b
		case "false", "0":
			b := false
			f.Published = &b
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list courses")
	defer cancel()

	res, err := h.Store.List(ctx, f)
	if err != nil {
		h.Log.Error("list courses failed", zap.Error(err))
		httpjson.WriteError(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}

	httpjson.WriteJSON(w, http.StatusOK, listResponse{
		Success:    true,
		Courses:    res.Courses,
		NextCursor: res.NextCursor,
		PrevCursor: res.PrevCursor,
		HasNext:    res.HasNext,
		HasPrev:    res.HasPrev,
	})
}
