// internal/domain/models/coursetypes.go
package models

// Canonical approval workflow states stored in Course.ApprovalStatus.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ApprovalStatuses is the full set of allowed approval states.
var ApprovalStatuses = []string{
	ApprovalPending,
	ApprovalApproved,
	ApprovalRejected,
}

// Canonical course level identifiers stored in Course.Level.
// These are also the labels shown in the course editor.
const (
	LevelAll          = "All Levels"
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelExpert       = "Expert"
)

// CourseLevels is the full set of allowed course levels.
var CourseLevels = []string{
	LevelAll,
	LevelBeginner,
	LevelIntermediate,
	LevelExpert,
}

// DefaultCourseLevel is used when no level is provided.
const DefaultCourseLevel = LevelAll

// Canonical lesson resource types stored in Resource.Type.
const (
	ResourceTypePDF   = "PDF"
	ResourceTypeOther = "other"
)

// ResourceTypes is the full set of allowed resource types.
var ResourceTypes = []string{
	ResourceTypePDF,
	ResourceTypeOther,
}

// DefaultResourceType is used when no specific type is provided.
const DefaultResourceType = ResourceTypePDF

// Upload kinds accepted by the file upload endpoint.
const (
	UploadKindThumbnail = "thumbnail"
	UploadKindResource  = "resource"
)

// UploadKinds is the full set of allowed upload kinds.
var UploadKinds = []string{
	UploadKindThumbnail,
	UploadKindResource,
}

// IsOneOf reports whether v is present in allowed.
func IsOneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}
