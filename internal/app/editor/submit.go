// internal/app/editor/submit.go
package editor

import (
	"context"
	"errors"
	"net"

	"github.com/dalemusser/learnhub/internal/app/client"
	"github.com/dalemusser/learnhub/internal/app/system/curriculum"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submitter sends a whole course aggregate to the server and returns the
// canonical stored version. A non-zero Course.Version on Update asks for
// the conflict check.
type Submitter interface {
	Create(ctx context.Context, c models.Course) (models.Course, error)
	Update(ctx context.Context, c models.Course) (models.Course, error)
}

var _ Submitter = (*client.Client)(nil)

// ErrorKind classifies a failed submission.
type ErrorKind int

const (
	// KindValidation: the draft broke a curriculum rule; nothing was sent.
	KindValidation ErrorKind = iota
	// KindRejected: the server answered 4xx; Message is its text verbatim.
	KindRejected
	// KindTransport: no response was received.
	KindTransport
	// KindServer: 5xx or an unreadable response.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRejected:
		return "rejected"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Messages shown for failures that carry no server text.
const (
	MsgTransport = "We could not reach the server. Your changes are safe; please try again."
	MsgServer    = "Something went wrong while saving your course. Your changes are safe; please try again."
)

// SubmitError is returned by Submit. Message is what to show the user.
type SubmitError struct {
	Kind    ErrorKind
	Message string
	// Status is the HTTP status for KindRejected and KindServer, else 0.
	Status int
	Fields map[string]string
	Err    error
}

func (e *SubmitError) Error() string { return e.Message }

func (e *SubmitError) Unwrap() error { return e.Err }

func classify(err error) *SubmitError {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status < 500:
		return &SubmitError{Kind: KindRejected, Message: apiErr.Message, Status: apiErr.Status, Fields: apiErr.Fields, Err: err}
	case errors.As(err, &apiErr):
		return &SubmitError{Kind: KindServer, Message: MsgServer, Status: apiErr.Status, Err: err}
	case errors.Is(err, client.ErrServer):
		return &SubmitError{Kind: KindServer, Message: MsgServer, Err: err}
	case errors.Is(err, client.ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return &SubmitError{Kind: KindTransport, Message: MsgTransport, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &SubmitError{Kind: KindTransport, Message: MsgTransport, Err: err}
	}
	return &SubmitError{Kind: KindServer, Message: MsgServer, Err: err}
}

// Submit validates the draft and sends it: Create when the course has no
// id yet, Update otherwise. On success the draft is replaced by the
// server's aggregate and keys of saved nodes become their server ids (old
// keys keep resolving). On any failure the draft is left as it was.
//
// Only one submission runs at a time; a second call returns ErrSubmitting.
func (e *Editor) Submit(ctx context.Context) (models.Course, error) {
	e.mu.Lock()
	if e.busy() {
		e.mu.Unlock()
		return models.Course{}, ErrSubmitting
	}

	e.setState(Validating)
	sent := e.snapshotLocked()
	course := sent.Course()
	if err := curriculum.Validate(course.Modules); err != nil {
		se := &SubmitError{Kind: KindValidation, Message: err.Error(), Err: err}
		e.fail(se)
		e.mu.Unlock()
		return models.Course{}, se
	}

	e.setState(Submitting)
	sub := e.sub
	e.mu.Unlock()

	var saved models.Course
	var err error
	if course.ID.IsZero() {
		saved, err = sub.Create(ctx, course)
	} else {
		saved, err = sub.Update(ctx, course)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		se := classify(err)
		e.fail(se)
		e.drainPending()
		return models.Course{}, se
	}

	e.setState(Succeeded)
	e.outcome = Succeeded
	e.lastErr = nil
	e.remapKeys(sent.modules, saved.Modules)
	e.loadLocked(saved)
	e.setState(Editing)
	e.drainPending()
	return curriculum.Clone(saved), nil
}

// fail records err and returns the editor to Editing. Called with the lock
// held.
func (e *Editor) fail(err *SubmitError) {
	if e.state == Submitting {
		e.setState(Failed)
	}
	e.outcome = Failed
	e.lastErr = err
	e.setState(Editing)
}

// remapKeys records, for every node position present in both trees, the
// key the node will have after the re-sync.
func (e *Editor) remapKeys(sent []*moduleNode, saved []models.Module) {
	alias := func(oldKey string, id primitive.ObjectID) {
		if !id.IsZero() && id.Hex() != oldKey {
			e.aliases[oldKey] = id.Hex()
		}
	}
	for mi := 0; mi < min(len(sent), len(saved)); mi++ {
		sm, m := sent[mi], saved[mi]
		alias(sm.key, m.ID)
		for li := 0; li < min(len(sm.lessons), len(m.Lessons)); li++ {
			sl, l := sm.lessons[li], m.Lessons[li]
			alias(sl.key, l.ID)
			for ri := 0; ri < min(len(sl.resources), len(l.Resources)); ri++ {
				alias(sl.resources[ri].key, l.Resources[ri].ID)
			}
		}
	}
}
