// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call a handler method directly.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// SampleCourse returns a valid course tree with two modules, three lessons,
// and one resource. IDs are left zero.
func SampleCourse(title string) models.Course {
	return models.Course{
		Title:       title,
		Description: "<p>Learn by doing.</p>",
		Price:       49.99,
		Category:    "Programming",
		Level:       models.LevelBeginner,
		Language:    "English",
		Modules: []models.Module{
			{
				Title: "Getting started",
				Lessons: []models.Lesson{
					{
						Title:    "Welcome",
						VideoID:  "vid-welcome",
						Duration: 120,
						IsFree:   true,
						Resources: []models.Resource{
							{Title: "Syllabus", URL: "https://files.example.com/syllabus.pdf", Type: models.ResourceTypePDF},
						},
					},
					{Title: "Install tools", Duration: 300, Resources: []models.Resource{}},
				},
			},
			{
				Title:   "Basics",
				Lessons: []models.Lesson{{Title: "Variables", Duration: 600, Resources: []models.Resource{}}},
			},
		},
		LearningOutcomes: []string{"Write small programs"},
		Requirements:     []string{},
		Provides:         []string{"Certificate"},
	}
}

// Fixtures inserts test data directly, bypassing stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures for db.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCourse inserts a course owned by instructor with the given approval
// status and published flag. All nested ids are assigned.
func (f *Fixtures) CreateCourse(ctx context.Context, title string, instructor primitive.ObjectID, status string, published bool) models.Course {
	f.t.Helper()

	now := time.Now().UTC().Truncate(time.Millisecond)
	c := SampleCourse(title)
	c.ID = primitive.NewObjectID()
	c.TitleCI = text.Fold(title)
	c.InstructorID = instructor
	c.InstructorName = "Test Instructor"
	c.ApprovalStatus = status
	c.Published = published
	c.Version = 1
	c.CreatedAt = now
	c.UpdatedAt = now
	for mi := range c.Modules {
		c.Modules[mi].ID = primitive.NewObjectID()
		for li := range c.Modules[mi].Lessons {
			c.Modules[mi].Lessons[li].ID = primitive.NewObjectID()
			for ri := range c.Modules[mi].Lessons[li].Resources {
				c.Modules[mi].Lessons[li].Resources[ri].ID = primitive.NewObjectID()
			}
		}
	}

	if _, err := f.db.Collection("courses").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}
	return c
}
