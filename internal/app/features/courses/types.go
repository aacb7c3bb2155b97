// internal/app/features/courses/types.go
package courses

import (
	"strings"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// resourceInput is one resource row in a submitted aggregate.
type resourceInput struct {
	ID    string `json:"id" validate:"omitempty,mongodb" label:"Resource id"`
	Title string `json:"title" validate:"max=200" label:"Resource title"`
	URL   string `json:"url" validate:"max=2048" label:"Resource URL"`
	Type  string `json:"type" validate:"resourcetype" label:"Resource type"`
}

type lessonInput struct {
	ID          string          `json:"id" validate:"omitempty,mongodb" label:"Lesson id"`
	Title       string          `json:"title" validate:"required,max=200" label:"Lesson title"`
	VideoID     string          `json:"videoId" validate:"max=512" label:"Video"`
	Duration    float64         `json:"duration" validate:"gte=0" label:"Duration"`
	IsFree      bool            `json:"isFree"`
	Description string          `json:"description" validate:"max=20000" label:"Lesson description"`
	Resources   []resourceInput `json:"resources" validate:"dive"`
}

type moduleInput struct {
	ID      string        `json:"id" validate:"omitempty,mongodb" label:"Section id"`
	Title   string        `json:"title" validate:"required,max=200" label:"Section title"`
	Lessons []lessonInput `json:"lessons" validate:"dive"`
}

// courseInput is the full Course aggregate as sent by the editor.
// Server-controlled fields (owner, approval, published, timestamps) are not
// part of it and are ignored if present in the body.
type courseInput struct {
	Title            string        `json:"title" validate:"required,max=200" label:"Title"`
	Description      string        `json:"description" validate:"max=50000" label:"Description"`
	Price            *float64      `json:"price" validate:"required,gte=0" label:"Price"`
	OriginalPrice    *float64      `json:"originalPrice" validate:"omitempty,gte=0" label:"Original price"`
	Category         string        `json:"category" validate:"required,max=100" label:"Category"`
	Level            string        `json:"level" validate:"courselevel" label:"Level"`
	Language         string        `json:"language" validate:"max=50" label:"Language"`
	Thumbnail        string        `json:"thumbnail" validate:"max=2048" label:"Thumbnail"`
	Modules          []moduleInput `json:"modules" validate:"dive"`
	LearningOutcomes []string      `json:"learningOutcomes" validate:"dive,max=500" label:"Learning outcome"`
	Requirements     []string      `json:"requirements" validate:"dive,max=500" label:"Requirement"`
	Provides         []string      `json:"provides" validate:"dive,max=500" label:"Provides"`

	// Version enables the optimistic-concurrency check when present.
	Version *int64 `json:"version"`
}

// updateInput is a PUT body. It is a full aggregate when it carries a title
// or a modules list; otherwise it must be one of the partial forms.
type updateInput struct {
	courseInput

	ApprovalStatus  *string `json:"approvalStatus"`
	RejectionReason *string `json:"rejectionReason"`
	Published       *bool   `json:"published"`
}

func (in *updateInput) isFull() bool {
	return in.Modules != nil || strings.TrimSpace(in.Title) != ""
}

// oid parses an optional hex id. Validation has already rejected malformed
// values, so an empty or bad value simply yields NilObjectID.
func oid(s string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// toCourse copies the input into a Course. Nested ids are carried over so
// updates keep the identity of existing entries.
func (in *courseInput) toCourse() models.Course {
	c := models.Course{
		Title:            in.Title,
		Description:      in.Description,
		Category:         in.Category,
		Level:            in.Level,
		Language:         in.Language,
		Thumbnail:        in.Thumbnail,
		LearningOutcomes: in.LearningOutcomes,
		Requirements:     in.Requirements,
		Provides:         in.Provides,
		Modules:          make([]models.Module, 0, len(in.Modules)),
	}
	if in.Price != nil {
		c.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		p := *in.OriginalPrice
		c.OriginalPrice = &p
	}
	for _, mi := range in.Modules {
		m := models.Module{
			ID:      oid(mi.ID),
			Title:   mi.Title,
			Lessons: make([]models.Lesson, 0, len(mi.Lessons)),
		}
		for _, li := range mi.Lessons {
			l := models.Lesson{
				ID:          oid(li.ID),
				Title:       li.Title,
				VideoID:     li.VideoID,
				Duration:    li.Duration,
				IsFree:      li.IsFree,
				Description: li.Description,
				Resources:   make([]models.Resource, 0, len(li.Resources)),
			}
			for _, ri := range li.Resources {
				l.Resources = append(l.Resources, models.Resource{
					ID:    oid(ri.ID),
					Title: ri.Title,
					URL:   ri.URL,
					Type:  ri.Type,
				})
			}
			m.Lessons = append(m.Lessons, l)
		}
		c.Modules = append(c.Modules, m)
	}
	return c
}

// listResponse is the success envelope for GET /courses.
type listResponse struct {
	Success    bool            `json:"success"`
	Courses    []models.Course `json:"courses"`
	NextCursor string          `json:"nextCursor,omitempty"`
	PrevCursor string          `json:"prevCursor,omitempty"`
	HasNext    bool            `json:"hasNext"`
	HasPrev    bool            `json:"hasPrev"`
}
