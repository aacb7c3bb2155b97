// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
)

// eventItem is the JSON shape of one audit event.
type eventItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	CourseID      string            `json:"courseId,omitempty"`
	ActorID       string            `json:"actorId,omitempty"`
	ActorRole     string            `json:"actorRole,omitempty"`
	IP            string            `json:"ip,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Success    bool        `json:"success"`
	Events     []eventItem `json:"events"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
}

func toItems(events []audit.Event) []eventItem {
	items := make([]eventItem, 0, len(events))
	for _, e := range events {
		it := eventItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			ActorRole:     e.ActorRole,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.CourseID != nil {
			it.CourseID = e.CourseID.Hex()
		}
		if e.ActorID != nil {
			it.ActorID = e.ActorID.Hex()
		}
		items = append(items, it)
	}
	return items
}

// allCategories lists the category filter values.
func allCategories() []string {
	return []string{audit.CategoryCourse, audit.CategoryUpload}
}
