// internal/domain/models/course.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Default titles given to curriculum entries created by the editor.
const (
	DefaultModuleTitle = "New Module"
	DefaultLessonTitle = "New Lesson"
)

// Resource is a downloadable or viewable attachment on a Lesson.
// URL is an opaque reference returned by the upload collaborator.
type Resource struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"title" json:"title"`
	URL   string             `bson:"url" json:"url"`
	Type  string             `bson:"type" json:"type"` // see ResourceTypes
}

// Lesson is one ordered unit of instruction inside a Module.
type Lesson struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	VideoID     string             `bson:"video_id" json:"videoId"`   // opaque reference from the video uploader
	Duration    float64            `bson:"duration" json:"duration"` // seconds; never recomputed server-side
	IsFree      bool               `bson:"is_free" json:"isFree"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Resources   []Resource         `bson:"resources" json:"resources"`
}

// Module is a named, ordered group of Lessons. Order inside Course.Modules
// is the curriculum sequence.
type Module struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Title   string             `bson:"title" json:"title"`
	Lessons []Lesson           `bson:"lessons" json:"lessons"`
}

// Course is the aggregate root. The whole tree (modules, lessons, resources)
// is stored as one document so that a full replace is atomic.
type Course struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title   string             `bson:"title" json:"title"`
	TitleCI string             `bson:"title_ci" json:"-"` // lowercase, diacritics-stripped

	Description   string   `bson:"description" json:"description"`
	Price         float64  `bson:"price" json:"price"`
	OriginalPrice *float64 `bson:"original_price,omitempty" json:"originalPrice,omitempty"`
	Category      string   `bson:"category" json:"category"`
	Level         string   `bson:"level" json:"level"`
	Language      string   `bson:"language" json:"language"`
	Thumbnail     string   `bson:"thumbnail" json:"thumbnail"`

	Modules []Module `bson:"modules" json:"modules"`

	LearningOutcomes []string `bson:"learning_outcomes" json:"learningOutcomes"`
	Requirements     []string `bson:"requirements" json:"requirements"`
	Provides         []string `bson:"provides" json:"provides"`

	Published       bool   `bson:"published" json:"published"`
	ApprovalStatus  string `bson:"approval_status" json:"approvalStatus"`
	RejectionReason string `bson:"rejection_reason,omitempty" json:"rejectionReason,omitempty"`

	InstructorID   primitive.ObjectID `bson:"instructor_id" json:"instructorId"`
	InstructorName string             `bson:"instructor_name,omitempty" json:"instructorName,omitempty"`

	// Version increments on every write; clients may echo it back on
	// update to get a conflict instead of a silent overwrite.
	Version int64 `bson:"version" json:"version"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// LessonCount returns the number of lessons across all modules.
func (c *Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

// HasCurriculum reports whether the course has at least one module and at
// least one lesson in total.
func (c *Course) HasCurriculum() bool {
	return len(c.Modules) > 0 && c.LessonCount() > 0
}

// IsVisibleToPublic reports whether students and visitors may see the course.
func (c *Course) IsVisibleToPublic() bool {
	return c.Published && c.ApprovalStatus == ApprovalApproved
}
