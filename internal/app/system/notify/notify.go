// internal/app/system/notify/notify.go

// Package notify tells people outside the request about course workflow
// changes: admins when a course needs review, instructors when a review
// decision is made. Delivery is fire-and-forget from the caller's point of
// view; handlers log a failed notification and carry on.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.uber.org/zap"
)

// Event kinds carried in Event.Kind.
const (
	KindReviewRequested = "course.review_requested"
	KindApprovalChanged = "course.approval_changed"
)

// Notifier receives course workflow events.
type Notifier interface {
	CourseReviewRequested(ctx context.Context, c models.Course) error
	CourseApprovalChanged(ctx context.Context, c models.Course) error
}

// Event is the payload published for every notification.
type Event struct {
	Kind            string    `json:"kind"`
	CourseID        string    `json:"courseId"`
	Title           string    `json:"title"`
	InstructorID    string    `json:"instructorId"`
	ApprovalStatus  string    `json:"approvalStatus"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
	At              time.Time `json:"at"`
}

// NewEvent builds the payload for c.
func NewEvent(kind string, c models.Course) Event {
	return Event{
		Kind:            kind,
		CourseID:        c.ID.Hex(),
		Title:           c.Title,
		InstructorID:    c.InstructorID.Hex(),
		ApprovalStatus:  c.ApprovalStatus,
		RejectionReason: c.RejectionReason,
		At:              time.Now().UTC(),
	}
}

// LogNotifier writes each event to zap. It is the fallback when no broker
// is configured.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) emit(e Event) {
	n.Log.Info("course notification",
		zap.String("kind", e.Kind),
		zap.String("course_id", e.CourseID),
		zap.String("instructor_id", e.InstructorID),
		zap.String("approval_status", e.ApprovalStatus),
	)
}

// CourseReviewRequested implements Notifier.
func (n LogNotifier) CourseReviewRequested(_ context.Context, c models.Course) error {
	n.emit(NewEvent(KindReviewRequested, c))
	return nil
}

// CourseApprovalChanged implements Notifier.
func (n LogNotifier) CourseApprovalChanged(_ context.Context, c models.Course) error {
	n.emit(NewEvent(KindApprovalChanged, c))
	return nil
}

// Multi fans out to every notifier and joins their errors.
type Multi []Notifier

// CourseReviewRequested implements Notifier.
func (m Multi) CourseReviewRequested(ctx context.Context, c models.Course) error {
	var errs []error
	for _, n := range m {
		if err := n.CourseReviewRequested(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CourseApprovalChanged implements Notifier.
func (m Multi) CourseApprovalChanged(ctx context.Context, c models.Course) error {
	var errs []error
	for _, n := range m {
		if err := n.CourseApprovalChanged(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards every event.
type Nop struct{}

func (Nop) CourseReviewRequested(context.Context, models.Course) error { return nil }
func (Nop) CourseApprovalChanged(context.Context, models.Course) error { return nil }
