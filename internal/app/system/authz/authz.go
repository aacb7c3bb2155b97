// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, ObjectID, and a found
// flag. With no user, or a malformed user id, it returns
// "visitor", "", NilObjectID, false, so ok=true always means a usable id.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the caller is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsInstructor reports whether the caller is an instructor.
func IsInstructor(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleInstructor
}

// IsOwner reports whether the caller owns c.
func IsOwner(r *http.Request, c *models.Course) bool {
	_, _, uid, ok := UserCtx(r)
	return ok && c != nil && !c.InstructorID.IsZero() && c.InstructorID == uid
}

// CanViewCourse reports whether the caller may read c. Published and
// approved courses are public; anything else is limited to its owner and
// admins.
func CanViewCourse(r *http.Request, c *models.Course) bool {
	if c == nil {
		return false
	}
	if c.IsVisibleToPublic() {
		return true
	}
	return IsAdmin(r) || IsOwner(r, c)
}

// CanEditCourse reports whether the caller may replace c's content.
func CanEditCourse(r *http.Request, c *models.Course) bool {
	return IsAdmin(r) || IsOwner(r, c)
}

// CanReview reports whether the caller may change a course's approval status.
func CanReview(r *http.Request) bool {
	return IsAdmin(r)
}

// CanPublish reports whether the caller may change c's published flag.
func CanPublish(r *http.Request, c *models.Course) bool {
	return IsAdmin(r) || IsOwner(r, c)
}
