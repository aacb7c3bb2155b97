// internal/app/features/uploads/routes.go
package uploads

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the upload endpoint (typically at "/uploads"). extra
// middleware (such as a rate limiter) runs after the role check.
func Routes(h *Handler, extra ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin, models.RoleInstructor))
		pr.Use(extra...)
		pr.Post("/", h.HandleUpload)
	})
	return r
}
