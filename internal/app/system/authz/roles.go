// internal/app/system/authz/roles.go
package authz

import (
	"net/http"
	"strings"
)

// HasAnyRole reports whether the caller has any of the given roles.
// Returns false when nobody is signed in.
func HasAnyRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if role == strings.ToLower(strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

// CanAuthor reports whether the caller may create courses.
func CanAuthor(r *http.Request) bool {
	return HasAnyRole(r, "admin", "instructor")
}
