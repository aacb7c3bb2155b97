// internal/app/editor/editor.go

// Package editor is the in-memory curriculum editor: one Course draft,
// structural edits over its module/lesson/resource tree, and the
// submission state machine that sends the whole aggregate to the server.
//
// Nodes are addressed by stable keys (the server id hex once known, a
// random UUID before that). Edits copy only the path to the addressed node;
// untouched siblings are shared with earlier snapshots and never mutated.
package editor

import (
	"errors"
	"sync"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	// ErrSubmitting is returned by edits and by Submit while a submission
	// is in flight.
	ErrSubmitting = errors.New("editor: submission in progress")
	// ErrNotFound is returned for an out-of-range index or unknown key.
	ErrNotFound = errors.New("editor: no such node")
	// ErrFieldType is returned when a value has the wrong type for a field.
	ErrFieldType = errors.New("editor: wrong value type for field")
	// ErrUnknownField is returned for a field name the node does not have.
	ErrUnknownField = errors.New("editor: unknown field")
	// ErrInvalidValue is returned for a value outside the field's enum.
	ErrInvalidValue = errors.New("editor: invalid value for field")
)

// State is the submission lifecycle state.
type State int

const (
	Editing State = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Editor holds one Course draft. All methods are safe for concurrent use
// and are serialized under one mutex.
type Editor struct {
	mu sync.Mutex

	sub Submitter
	log *zap.Logger

	courseID primitive.ObjectID
	version  int64
	meta     models.Course // scalar fields only; Modules is always nil
	modules  []*moduleNode

	state   State
	outcome State // Succeeded or Failed after the last submission, else Editing
	lastErr error
	dirty   bool
	rev     uint64

	// aliases maps keys retired by a re-sync to their replacements.
	aliases map[string]string
	// pending holds upload completions that arrived mid-submission.
	pending []func() error

	onState func(from, to State)
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger used for deferred-completion failures.
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// WithStateObserver registers fn to be called on every state change. fn
// runs with the editor locked and must not call back into it.
func WithStateObserver(fn func(from, to State)) Option {
	return func(e *Editor) { e.onState = fn }
}

// New returns an editor holding an empty course. sub is used by Submit.
func New(sub Submitter, opts ...Option) *Editor {
	e := &Editor{
		sub:     sub,
		log:     zap.NewNop(),
		aliases: map[string]string{},
	}
	for _, o := range opts {
		o(e)
	}
	e.meta = emptyMeta()
	return e
}

func emptyMeta() models.Course {
	return models.Course{
		Level:            models.DefaultCourseLevel,
		LearningOutcomes: []string{},
		Requirements:     []string{},
		Provides:         []string{},
	}
}

// Load replaces the draft with course, typically one fetched for editing.
// Keys become the course's nested ids.
func (e *Editor) Load(course models.Course) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy() {
		return ErrSubmitting
	}
	e.loadLocked(course)
	e.aliases = map[string]string{}
	e.outcome = Editing
	e.lastErr = nil
	return nil
}

func (e *Editor) loadLocked(course models.Course) {
	e.courseID = course.ID
	e.version = course.Version
	e.modules = buildNodes(course.Modules)
	e.meta = cloneMeta(course)
	e.dirty = false
	e.rev++
}

// State reports the current lifecycle state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// LastOutcome reports how the last submission ended (Succeeded or Failed),
// or Editing when nothing has been submitted since the last Load.
func (e *Editor) LastOutcome() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outcome
}

// LastError returns the error from the last failed submission, if any.
func (e *Editor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Dirty reports whether the draft changed since it was loaded or last
// synced with the server.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// CourseID returns the server id, or NilObjectID before the first create.
func (e *Editor) CourseID() primitive.ObjectID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.courseID
}

// Snapshot returns an immutable view of the current draft.
func (e *Editor) Snapshot() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() Draft {
	return Draft{
		id:      e.courseID,
		version: e.version,
		meta:    e.meta,
		modules: e.modules,
		rev:     e.rev,
	}
}

func (e *Editor) busy() bool {
	return e.state == Validating || e.state == Submitting
}

func (e *Editor) setState(to State) {
	from := e.state
	e.state = to
	if e.onState != nil && from != to {
		e.onState(from, to)
	}
}

// mutate runs fn under the lock unless a submission is in flight, and marks
// the draft dirty when fn succeeds.
func (e *Editor) mutate(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy() {
		return ErrSubmitting
	}
	return e.apply(fn)
}

func (e *Editor) apply(fn func() error) error {
	if err := fn(); err != nil {
		return err
	}
	e.dirty = true
	e.rev++
	return nil
}

// complete is mutate for upload completions: mid-submission they are
// queued and applied once the submission ends.
func (e *Editor) complete(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy() {
		e.pending = append(e.pending, fn)
		return nil
	}
	return e.apply(fn)
}

func (e *Editor) drainPending() {
	pending := e.pending
	e.pending = nil
	for _, fn := range pending {
		if err := e.apply(fn); err != nil {
			e.log.Warn("deferred upload completion dropped", zap.Error(err))
		}
	}
}

// resolve follows aliases left by re-syncs.
func (e *Editor) resolve(key string) string {
	for i := 0; i < 8; i++ {
		next, ok := e.aliases[key]
		if !ok {
			return key
		}
		key = next
	}
	return key
}
