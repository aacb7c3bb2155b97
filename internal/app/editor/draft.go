// internal/app/editor/draft.go
package editor

import (
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Nodes are immutable once reachable from a Draft. Edits build new nodes
// along the addressed path and share everything else.

type resourceNode struct {
	key string
	res models.Resource
}

type lessonNode struct {
	key       string
	lesson    models.Lesson // Resources is always nil; see resources
	resources []*resourceNode
}

type moduleNode struct {
	key     string
	id      primitive.ObjectID
	title   string
	lessons []*lessonNode
}

func keyFor(id primitive.ObjectID) string {
	if id.IsZero() {
		return uuid.NewString()
	}
	return id.Hex()
}

func buildNodes(mods []models.Module) []*moduleNode {
	out := make([]*moduleNode, 0, len(mods))
	for _, m := range mods {
		mn := &moduleNode{key: keyFor(m.ID), id: m.ID, title: m.Title}
		for _, l := range m.Lessons {
			ln := &lessonNode{key: keyFor(l.ID), lesson: l}
			ln.lesson.Resources = nil
			for _, r := range l.Resources {
				ln.resources = append(ln.resources, &resourceNode{key: keyFor(r.ID), res: r})
			}
			mn.lessons = append(mn.lessons, ln)
		}
		out = append(out, mn)
	}
	return out
}

func cloneMeta(c models.Course) models.Course {
	m := c
	m.Modules = nil
	m.LearningOutcomes = cloneStrings(c.LearningOutcomes)
	m.Requirements = cloneStrings(c.Requirements)
	m.Provides = cloneStrings(c.Provides)
	if c.OriginalPrice != nil {
		p := *c.OriginalPrice
		m.OriginalPrice = &p
	}
	return m
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Copy-on-write slice helpers. None of them modifies its input.

func replaced[T any](s []T, i int, v T) []T {
	out := make([]T, len(s))
	copy(out, s)
	out[i] = v
	return out
}

func appended[T any](s []T, v T) []T {
	out := make([]T, len(s), len(s)+1)
	copy(out, s)
	return append(out, v)
}

func removed[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// Draft is an immutable snapshot of the editor's course. Later edits never
// change a Draft already handed out.
type Draft struct {
	id      primitive.ObjectID
	version int64
	meta    models.Course
	modules []*moduleNode
	rev     uint64
}

// Revision increases with every change to the editor's draft.
func (d Draft) Revision() uint64 { return d.rev }

// ModuleCount returns the number of modules.
func (d Draft) ModuleCount() int { return len(d.modules) }

// LessonCount returns the number of lessons in module mi, or 0.
func (d Draft) LessonCount(mi int) int {
	if mi < 0 || mi >= len(d.modules) {
		return 0
	}
	return len(d.modules[mi].lessons)
}

// ModuleView is one module as seen in a Draft.
type ModuleView struct {
	Key   string
	ID    primitive.ObjectID
	Title string
}

// LessonView is one lesson, with its resources, as seen in a Draft.
type LessonView struct {
	Key    string
	Lesson models.Lesson
	// ResourceKeys are the keys of Lesson.Resources, in order.
	ResourceKeys []string
}

// ResourceView is one resource as seen in a Draft.
type ResourceView struct {
	Key      string
	Resource models.Resource
}

// Module returns the module at mi.
func (d Draft) Module(mi int) (ModuleView, bool) {
	if mi < 0 || mi >= len(d.modules) {
		return ModuleView{}, false
	}
	m := d.modules[mi]
	return ModuleView{Key: m.key, ID: m.id, Title: m.title}, true
}

// Lesson returns the lesson at (mi, li).
func (d Draft) Lesson(mi, li int) (LessonView, bool) {
	ln, ok := d.lessonNode(mi, li)
	if !ok {
		return LessonView{}, false
	}
	v := LessonView{Key: ln.key, Lesson: ln.materialize()}
	for _, r := range ln.resources {
		v.ResourceKeys = append(v.ResourceKeys, r.key)
	}
	return v, true
}

// Resource returns the resource at (mi, li, ri).
func (d Draft) Resource(mi, li, ri int) (ResourceView, bool) {
	ln, ok := d.lessonNode(mi, li)
	if !ok || ri < 0 || ri >= len(ln.resources) {
		return ResourceView{}, false
	}
	r := ln.resources[ri]
	return ResourceView{Key: r.key, Resource: r.res}, true
}

func (d Draft) lessonNode(mi, li int) (*lessonNode, bool) {
	if mi < 0 || mi >= len(d.modules) {
		return nil, false
	}
	m := d.modules[mi]
	if li < 0 || li >= len(m.lessons) {
		return nil, false
	}
	return m.lessons[li], true
}

func (ln *lessonNode) materialize() models.Lesson {
	l := ln.lesson
	l.Resources = make([]models.Resource, 0, len(ln.resources))
	for _, r := range ln.resources {
		l.Resources = append(l.Resources, r.res)
	}
	return l
}

// Course materializes the draft as a Course aggregate that shares no
// memory with the editor. Nodes not yet saved carry zero ids.
func (d Draft) Course() models.Course {
	c := cloneMeta(d.meta)
	c.ID = d.id
	c.Version = d.version
	c.Modules = make([]models.Module, 0, len(d.modules))
	for _, mn := range d.modules {
		m := models.Module{ID: mn.id, Title: mn.title, Lessons: make([]models.Lesson, 0, len(mn.lessons))}
		for _, ln := range mn.lessons {
			m.Lessons = append(m.Lessons, ln.materialize())
		}
		c.Modules = append(c.Modules, m)
	}
	return c
}
