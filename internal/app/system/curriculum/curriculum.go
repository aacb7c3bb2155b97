// internal/app/system/curriculum/curriculum.go

// Package curriculum holds the rules that apply to a Course's module/lesson
// tree. The same checks run in the editor (before any network call) and in
// the course endpoint (for callers that bypass the editor), and both use the
// messages defined here so the two paths report identical text.
package curriculum

import (
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNoModules is returned when a course has no modules (sections).
	ErrNoModules = errors.New("Please add at least one section to your course.")
	// ErrNoLessons is returned when modules exist but none holds a lesson.
	ErrNoLessons = errors.New("Please add at least one lesson to your course.")
)

// Validate checks that the curriculum has at least one module and at least
// one lesson across all modules.
func Validate(modules []models.Module) error {
	if len(modules) == 0 {
		return ErrNoModules
	}
	for _, m := range modules {
		if len(m.Lessons) > 0 {
			return nil
		}
	}
	return ErrNoLessons
}

// IsCurriculumError reports whether err is one of the curriculum rule errors.
func IsCurriculumError(err error) bool {
	return errors.Is(err, ErrNoModules) || errors.Is(err, ErrNoLessons)
}

// AssignIDs gives every module, lesson, and resource an ObjectID.
//
// With keepExisting=false (create) every nested id is replaced, so a client
// cannot choose identifiers. With keepExisting=true (update) ids already on
// the submitted tree are kept and only nil ids are filled in.
func AssignIDs(c *models.Course, keepExisting bool) {
	fill := func(id *primitive.ObjectID) {
		if !keepExisting || id.IsZero() {
			*id = primitive.NewObjectID()
		}
	}
	for mi := range c.Modules {
		m := &c.Modules[mi]
		fill(&m.ID)
		for li := range m.Lessons {
			l := &m.Lessons[li]
			fill(&l.ID)
			for ri := range l.Resources {
				fill(&l.Resources[ri].ID)
			}
		}
	}
}

// DuplicateIDs reports whether any nested id appears more than once in the
// tree. Updates that keep client-sent ids must reject duplicates, otherwise
// two entries would share one identity.
func DuplicateIDs(c *models.Course) bool {
	seen := make(map[primitive.ObjectID]struct{})
	dup := func(id primitive.ObjectID) bool {
		if id.IsZero() {
			return false
		}
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
		return false
	}
	for _, m := range c.Modules {
		if dup(m.ID) {
			return true
		}
		for _, l := range m.Lessons {
			if dup(l.ID) {
				return true
			}
			for _, r := range l.Resources {
				if dup(r.ID) {
					return true
				}
			}
		}
	}
	return false
}

// Normalize trims text fields, fills enum defaults, and removes blank
// entries from the string lists. Nil slices become empty so the stored
// document and the JSON response never carry null arrays.
func Normalize(c *models.Course) {
	c.Title = strings.TrimSpace(c.Title)
	c.Category = strings.TrimSpace(c.Category)
	c.Language = strings.TrimSpace(c.Language)
	c.Thumbnail = strings.TrimSpace(c.Thumbnail)
	c.Level = strings.TrimSpace(c.Level)
	if c.Level == "" {
		c.Level = models.DefaultCourseLevel
	}

	c.LearningOutcomes = compact(c.LearningOutcomes)
	c.Requirements = compact(c.Requirements)
	c.Provides = compact(c.Provides)

	if c.Modules == nil {
		c.Modules = []models.Module{}
	}
	for mi := range c.Modules {
		m := &c.Modules[mi]
		m.Title = strings.TrimSpace(m.Title)
		if m.Lessons == nil {
			m.Lessons = []models.Lesson{}
		}
		for li := range m.Lessons {
			l := &m.Lessons[li]
			l.Title = strings.TrimSpace(l.Title)
			l.VideoID = strings.TrimSpace(l.VideoID)
			if l.Resources == nil {
				l.Resources = []models.Resource{}
			}
			for ri := range l.Resources {
				r := &l.Resources[ri]
				r.Title = strings.TrimSpace(r.Title)
				r.URL = strings.TrimSpace(r.URL)
				if strings.TrimSpace(r.Type) == "" {
					r.Type = models.DefaultResourceType
				}
			}
		}
	}
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// StripIDs returns a deep copy of c with identifiers, ownership, version,
// and timestamps cleared. Two courses that differ only in server-assigned
// values compare equal after stripping. The server stores Normalize'd
// courses, so compare a draft against a fetched course only after
// normalizing the draft.
func StripIDs(c models.Course) models.Course {
	out := Clone(c)
	out.ID = primitive.NilObjectID
	out.TitleCI = ""
	out.InstructorID = primitive.NilObjectID
	out.InstructorName = ""
	out.Version = 0
	out.CreatedAt = time.Time{}
	out.UpdatedAt = time.Time{}
	for mi := range out.Modules {
		out.Modules[mi].ID = primitive.NilObjectID
		for li := range out.Modules[mi].Lessons {
			out.Modules[mi].Lessons[li].ID = primitive.NilObjectID
			for ri := range out.Modules[mi].Lessons[li].Resources {
				out.Modules[mi].Lessons[li].Resources[ri].ID = primitive.NilObjectID
			}
		}
	}
	return out
}

// Clone returns a deep copy of c that shares no slices with it.
func Clone(c models.Course) models.Course {
	out := c
	out.LearningOutcomes = cloneSlice(c.LearningOutcomes)
	out.Requirements = cloneSlice(c.Requirements)
	out.Provides = cloneSlice(c.Provides)
	if c.OriginalPrice != nil {
		p := *c.OriginalPrice
		out.OriginalPrice = &p
	}
	out.Modules = cloneSlice(c.Modules)
	for mi := range out.Modules {
		m := &out.Modules[mi]
		m.Lessons = cloneSlice(m.Lessons)
		for li := range m.Lessons {
			m.Lessons[li].Resources = cloneSlice(m.Lessons[li].Resources)
		}
	}
	return out
}

// cloneSlice copies s into a new backing array, keeping nil as nil.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
