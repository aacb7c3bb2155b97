// internal/app/editor/ops.go
package editor

import (
	"fmt"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/google/uuid"
)

// LessonField names an editable Lesson field.
type LessonField string

const (
	LessonTitle       LessonField = "title"
	LessonVideoID     LessonField = "videoId"
	LessonDuration    LessonField = "duration"
	LessonIsFree      LessonField = "isFree"
	LessonDescription LessonField = "description"
)

// ResourceField names an editable Resource field.
type ResourceField string

const (
	ResourceTitle ResourceField = "title"
	ResourceURL   ResourceField = "url"
	ResourceType  ResourceField = "type"
)

// CourseDetails are the course-level fields edited outside the curriculum.
type CourseDetails struct {
	Title            string
	Description      string
	Price            float64
	OriginalPrice    *float64
	Category         string
	Level            string
	Language         string
	Thumbnail        string
	LearningOutcomes []string
	Requirements     []string
	Provides         []string
}

/* ------------------------------ lookups ------------------------------ */

func (e *Editor) checkModule(mi int) error {
	if mi < 0 || mi >= len(e.modules) {
		return fmt.Errorf("%w: module %d", ErrNotFound, mi)
	}
	return nil
}

func (e *Editor) checkLesson(mi, li int) error {
	if err := e.checkModule(mi); err != nil {
		return err
	}
	if li < 0 || li >= len(e.modules[mi].lessons) {
		return fmt.Errorf("%w: lesson %d.%d", ErrNotFound, mi, li)
	}
	return nil
}

func (e *Editor) checkResource(mi, li, ri int) error {
	if err := e.checkLesson(mi, li); err != nil {
		return err
	}
	if ri < 0 || ri >= len(e.modules[mi].lessons[li].resources) {
		return fmt.Errorf("%w: resource %d.%d.%d", ErrNotFound, mi, li, ri)
	}
	return nil
}

func (e *Editor) findModule(key string) (int, error) {
	key = e.resolve(key)
	for mi, m := range e.modules {
		if m.key == key {
			return mi, nil
		}
	}
	return 0, fmt.Errorf("%w: module %s", ErrNotFound, key)
}

func (e *Editor) findLesson(key string) (int, int, error) {
	key = e.resolve(key)
	for mi, m := range e.modules {
		for li, l := range m.lessons {
			if l.key == key {
				return mi, li, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("%w: lesson %s", ErrNotFound, key)
}

func (e *Editor) findResource(key string) (int, int, int, error) {
	key = e.resolve(key)
	for mi, m := range e.modules {
		for li, l := range m.lessons {
			for ri, r := range l.resources {
				if r.key == key {
					return mi, li, ri, nil
				}
			}
		}
	}
	return 0, 0, 0, fmt.Errorf("%w: resource %s", ErrNotFound, key)
}

/* ------------------------- copy-on-write paths ------------------------ */

func (e *Editor) setModule(mi int, m *moduleNode) {
	e.modules = replaced(e.modules, mi, m)
}

func (e *Editor) setLessons(mi int, lessons []*lessonNode) {
	m := *e.modules[mi]
	m.lessons = lessons
	e.setModule(mi, &m)
}

func (e *Editor) setLesson(mi, li int, l *lessonNode) {
	e.setLessons(mi, replaced(e.modules[mi].lessons, li, l))
}

func (e *Editor) setResources(mi, li int, res []*resourceNode) {
	l := *e.modules[mi].lessons[li]
	l.resources = res
	e.setLesson(mi, li, &l)
}

func (e *Editor) setResource(mi, li, ri int, r *resourceNode) {
	e.setResources(mi, li, replaced(e.modules[mi].lessons[li].resources, ri, r))
}

/* ------------------------------- modules ------------------------------ */

// AddModule appends a module titled "New Module" with no lessons and
// returns its key.
func (e *Editor) AddModule() (string, error) {
	key := uuid.NewString()
	err := e.mutate(func() error {
		e.modules = appended(e.modules, &moduleNode{key: key, title: models.DefaultModuleTitle})
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// UpdateModuleTitle sets the title of module mi.
func (e *Editor) UpdateModuleTitle(mi int, title string) error {
	return e.mutate(func() error {
		if err := e.checkModule(mi); err != nil {
			return err
		}
		return e.setModuleTitle(mi, title)
	})
}

// UpdateModuleTitleByKey is UpdateModuleTitle addressed by key.
func (e *Editor) UpdateModuleTitleByKey(key, title string) error {
	return e.mutate(func() error {
		mi, err := e.findModule(key)
		if err != nil {
			return err
		}
		return e.setModuleTitle(mi, title)
	})
}

func (e *Editor) setModuleTitle(mi int, title string) error {
	m := *e.modules[mi]
	m.title = title
	e.setModule(mi, &m)
	return nil
}

// RemoveModule removes module mi; later modules shift down by one.
func (e *Editor) RemoveModule(mi int) error {
	return e.mutate(func() error {
		if err := e.checkModule(mi); err != nil {
			return err
		}
		e.modules = removed(e.modules, mi)
		return nil
	})
}

// RemoveModuleByKey is RemoveModule addressed by key.
func (e *Editor) RemoveModuleByKey(key string) error {
	return e.mutate(func() error {
		mi, err := e.findModule(key)
		if err != nil {
			return err
		}
		e.modules = removed(e.modules, mi)
		return nil
	})
}

/* ------------------------------- lessons ------------------------------ */

// AddLesson appends a lesson titled "New Lesson" to module mi and returns
// its key.
func (e *Editor) AddLesson(mi int) (string, error) {
	key := uuid.NewString()
	err := e.mutate(func() error {
		if err := e.checkModule(mi); err != nil {
			return err
		}
		l := &lessonNode{key: key, lesson: models.Lesson{Title: models.DefaultLessonTitle}}
		e.setLessons(mi, appended(e.modules[mi].lessons, l))
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// UpdateLesson sets one field of lesson (mi, li). title, videoId and
// description take a string, duration a number of seconds (float64, int or
// time.Duration), isFree a bool.
func (e *Editor) UpdateLesson(mi, li int, field LessonField, value any) error {
	return e.mutate(func() error {
		if err := e.checkLesson(mi, li); err != nil {
			return err
		}
		return e.setLessonField(mi, li, field, value)
	})
}

// UpdateLessonByKey is UpdateLesson addressed by key.
func (e *Editor) UpdateLessonByKey(key string, field LessonField, value any) error {
	return e.mutate(func() error {
		mi, li, err := e.findLesson(key)
		if err != nil {
			return err
		}
		return e.setLessonField(mi, li, field, value)
	})
}

// SetLessonVideo records the video reference returned by the video
// uploader. It is safe to call while a submission is in flight; the change
// is applied when the submission ends.
func (e *Editor) SetLessonVideo(lessonKey, videoID string) error {
	return e.complete(func() error {
		mi, li, err := e.findLesson(lessonKey)
		if err != nil {
			return err
		}
		return e.setLessonField(mi, li, LessonVideoID, videoID)
	})
}

func (e *Editor) setLessonField(mi, li int, field LessonField, value any) error {
	l := *e.modules[mi].lessons[li]
	switch field {
	case LessonTitle, LessonVideoID, LessonDescription:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s wants string, got %T", ErrFieldType, field, value)
		}
		switch field {
		case LessonTitle:
			l.lesson.Title = s
		case LessonVideoID:
			l.lesson.VideoID = s
		default:
			l.lesson.Description = s
		}
	case LessonDuration:
		var secs float64
		switch v := value.(type) {
		case float64:
			secs = v
		case int:
			secs = float64(v)
		case int64:
			secs = float64(v)
		case time.Duration:
			secs = v.Seconds()
		default:
			return fmt.Errorf("%w: duration wants seconds, got %T", ErrFieldType, value)
		}
		if secs < 0 {
			return fmt.Errorf("%w: duration %v", ErrInvalidValue, secs)
		}
		l.lesson.Duration = secs
	case LessonIsFree:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: isFree wants bool, got %T", ErrFieldType, value)
		}
		l.lesson.IsFree = b
	default:
		return fmt.Errorf("%w: lesson.%s", ErrUnknownField, field)
	}
	e.setLesson(mi, li, &l)
	return nil
}

// RemoveLesson removes lesson (mi, li); later lessons in the module shift
// down by one and earlier ones are unchanged.
func (e *Editor) RemoveLesson(mi, li int) error {
	return e.mutate(func() error {
		if err := e.checkLesson(mi, li); err != nil {
			return err
		}
		e.setLessons(mi, removed(e.modules[mi].lessons, li))
		return nil
	})
}

// RemoveLessonByKey is RemoveLesson addressed by key.
func (e *Editor) RemoveLessonByKey(key string) error {
	return e.mutate(func() error {
		mi, li, err := e.findLesson(key)
		if err != nil {
			return err
		}
		e.setLessons(mi, removed(e.modules[mi].lessons, li))
		return nil
	})
}

/* ------------------------------ resources ----------------------------- */

// AddResource appends an empty PDF resource to lesson (mi, li) and returns
// its key.
func (e *Editor) AddResource(mi, li int) (string, error) {
	key := uuid.NewString()
	err := e.mutate(func() error {
		if err := e.checkLesson(mi, li); err != nil {
			return err
		}
		r := &resourceNode{key: key, res: models.Resource{Type: models.DefaultResourceType}}
		e.setResources(mi, li, appended(e.modules[mi].lessons[li].resources, r))
		return nil
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// UpdateResourceField sets one field of resource (mi, li, ri).
func (e *Editor) UpdateResourceField(mi, li, ri int, field ResourceField, value string) error {
	return e.mutate(func() error {
		if err := e.checkResource(mi, li, ri); err != nil {
			return err
		}
		return e.setResourceField(mi, li, ri, field, value)
	})
}

// UpdateResourceFieldByKey is UpdateResourceField addressed by key.
func (e *Editor) UpdateResourceFieldByKey(key string, field ResourceField, value string) error {
	return e.mutate(func() error {
		mi, li, ri, err := e.findResource(key)
		if err != nil {
			return err
		}
		return e.setResourceField(mi, li, ri, field, value)
	})
}

// SetResourceURL records the URL returned by the file uploader. Like
// SetLessonVideo it may be called mid-submission.
func (e *Editor) SetResourceURL(resourceKey, url string) error {
	return e.complete(func() error {
		mi, li, ri, err := e.findResource(resourceKey)
		if err != nil {
			return err
		}
		return e.setResourceField(mi, li, ri, ResourceURL, url)
	})
}

func (e *Editor) setResourceField(mi, li, ri int, field ResourceField, value string) error {
	r := *e.modules[mi].lessons[li].resources[ri]
	switch field {
	case ResourceTitle:
		r.res.Title = value
	case ResourceURL:
		r.res.URL = value
	case ResourceType:
		if !models.IsOneOf(value, models.ResourceTypes) {
			return fmt.Errorf("%w: resource type %q", ErrInvalidValue, value)
		}
		r.res.Type = value
	default:
		return fmt.Errorf("%w: resource.%s", ErrUnknownField, field)
	}
	e.setResource(mi, li, ri, &r)
	return nil
}

// RemoveResource removes resource (mi, li, ri); later resources shift down.
func (e *Editor) RemoveResource(mi, li, ri int) error {
	return e.mutate(func() error {
		if err := e.checkResource(mi, li, ri); err != nil {
			return err
		}
		e.setResources(mi, li, removed(e.modules[mi].lessons[li].resources, ri))
		return nil
	})
}

// RemoveResourceByKey is RemoveResource addressed by key.
func (e *Editor) RemoveResourceByKey(key string) error {
	return e.mutate(func() error {
		mi, li, ri, err := e.findResource(key)
		if err != nil {
			return err
		}
		e.setResources(mi, li, removed(e.modules[mi].lessons[li].resources, ri))
		return nil
	})
}

/* ------------------------------- details ------------------------------ */

// Details returns the current course-level fields.
func (e *Editor) Details() CourseDetails {
	e.mu.Lock()
	defer e.mu.Unlock()
	return detailsOf(e.meta)
}

func detailsOf(m models.Course) CourseDetails {
	c := cloneMeta(m)
	return CourseDetails{
		Title:            c.Title,
		Description:      c.Description,
		Price:            c.Price,
		OriginalPrice:    c.OriginalPrice,
		Category:         c.Category,
		Level:            c.Level,
		Language:         c.Language,
		Thumbnail:        c.Thumbnail,
		LearningOutcomes: c.LearningOutcomes,
		Requirements:     c.Requirements,
		Provides:         c.Provides,
	}
}

// SetDetails edits the course-level fields. fn receives a copy; the
// result replaces the current values. An unknown level is rejected.
func (e *Editor) SetDetails(fn func(*CourseDetails)) error {
	return e.mutate(func() error {
		d := detailsOf(e.meta)
		fn(&d)
		if d.Level != "" && !models.IsOneOf(d.Level, models.CourseLevels) {
			return fmt.Errorf("%w: level %q", ErrInvalidValue, d.Level)
		}
		m := e.meta
		m.Title = d.Title
		m.Description = d.Description
		m.Price = d.Price
		m.OriginalPrice = d.OriginalPrice
		m.Category = d.Category
		m.Level = d.Level
		m.Language = d.Language
		m.Thumbnail = d.Thumbnail
		m.LearningOutcomes = d.LearningOutcomes
		m.Requirements = d.Requirements
		m.Provides = d.Provides
		e.meta = cloneMeta(m)
		return nil
	})
}

// SetThumbnail records the URL returned for a thumbnail upload. It may be
// called mid-submission.
func (e *Editor) SetThumbnail(url string) error {
	return e.complete(func() error {
		m := e.meta
		m.Thumbnail = url
		e.meta = m
		return nil
	})
}
