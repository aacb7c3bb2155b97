// internal/app/features/courses/routes.go
package courses

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the course endpoints under whatever base path the caller
// chooses (typically "/courses" from bootstrap). The caller is expected to
// run SessionManager.LoadUser before this router.
//
// Reads are public; drafts are filtered per caller inside the handlers.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.With(auth.RequireRole(models.RoleAdmin, models.RoleInstructor)).Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Post("/{id}/submit-review", h.HandleSubmitReview)
	})

	return r
}
