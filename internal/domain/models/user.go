// internal/domain/models/user.go
package models

// Roles carried in auth tokens and session cookies. The user directory
// itself lives in the external auth system; this service only reads roles.
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// Roles is the full set of recognized roles.
var Roles = []string{
	RoleAdmin,
	RoleInstructor,
	RoleStudent,
}
