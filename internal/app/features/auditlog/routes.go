// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log routes under the path where this router is
// mounted (typically "/audit" from bootstrap).
//
// The full log is admin only. A course's own history is also open to its
// owner.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.With(auth.RequireRole(models.RoleAdmin)).Get("/", h.ServeList)
		pr.Get("/courses/{id}", h.ServeCourseHistory)
	})

	return r
}
