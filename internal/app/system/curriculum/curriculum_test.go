package curriculum

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modules []models.Module
		want    error
	}{
		{
			name:    "nil modules",
			modules: nil,
			want:    ErrNoModules,
		},
		{
			name:    "empty modules",
			modules: []models.Module{},
			want:    ErrNoModules,
		},
		{
			name:    "modules without lessons",
			modules: []models.Module{{Title: "A"}, {Title: "B"}},
			want:    ErrNoLessons,
		},
		{
			name: "one lesson in first module",
			modules: []models.Module{
				{Title: "A", Lessons: []models.Lesson{{Title: "Intro"}}},
			},
			want: nil,
		},
		{
			name: "lesson only in second module",
			modules: []models.Module{
				{Title: "A"},
				{Title: "B", Lessons: []models.Lesson{{Title: "Intro"}}},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.modules)
			if !errors.Is(got, tt.want) {
				t.Errorf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate_Messages(t *testing.T) {
	if got := Validate(nil).Error(); got != "Please add at least one section to your course." {
		t.Errorf("no-modules message: got %q", got)
	}
	if got := Validate([]models.Module{{}}).Error(); got != "Please add at least one lesson to your course." {
		t.Errorf("no-lessons message: got %q", got)
	}
}

func TestIsCurriculumError(t *testing.T) {
	if !IsCurriculumError(ErrNoModules) || !IsCurriculumError(ErrNoLessons) {
		t.Error("expected curriculum errors to be recognized")
	}
	if IsCurriculumError(errors.New("other")) {
		t.Error("unexpected match for unrelated error")
	}
	if IsCurriculumError(nil) {
		t.Error("unexpected match for nil")
	}
}

func sampleCourse() models.Course {
	return models.Course{
		Title: "Go Basics",
		Modules: []models.Module{
			{
				Title: "Getting started",
				Lessons: []models.Lesson{
					{Title: "Intro", Resources: []models.Resource{{Title: "Notes"}, {Title: "Slides"}}},
					{Title: "Setup"},
				},
			},
			{Title: "Types"},
		},
	}
}

func TestAssignIDs_Create(t *testing.T) {
	c := sampleCourse()
	preset := primitive.NewObjectID()
	c.Modules[0].ID = preset

	AssignIDs(&c, false)

	if c.Modules[0].ID == preset {
		t.Error("expected client-supplied id to be replaced on create")
	}
	if c.Modules[1].ID.IsZero() {
		t.Error("expected module id to be assigned")
	}
	for _, l := range c.Modules[0].Lessons {
		if l.ID.IsZero() {
			t.Error("expected lesson id to be assigned")
		}
		for _, r := range l.Resources {
			if r.ID.IsZero() {
				t.Error("expected resource id to be assigned")
			}
		}
	}
	if DuplicateIDs(&c) {
		t.Error("fresh ids should be unique")
	}
}

func TestAssignIDs_KeepExisting(t *testing.T) {
	c := sampleCourse()
	keep := primitive.NewObjectID()
	c.Modules[0].Lessons[1].ID = keep

	AssignIDs(&c, true)

	if c.Modules[0].Lessons[1].ID != keep {
		t.Error("expected existing lesson id to be kept on update")
	}
	if c.Modules[0].Lessons[0].ID.IsZero() {
		t.Error("expected missing lesson id to be filled in")
	}
}

func TestDuplicateIDs(t *testing.T) {
	c := sampleCourse()
	id := primitive.NewObjectID()
	c.Modules[0].Lessons[0].Resources[0].ID = id
	c.Modules[0].Lessons[0].Resources[1].ID = id

	if !DuplicateIDs(&c) {
		t.Error("expected duplicate resource ids to be detected")
	}
}

func TestNormalize(t *testing.T) {
	c := models.Course{
		Title:            "  Go Basics ",
		LearningOutcomes: []string{" write Go ", "", "   "},
		Modules: []models.Module{
			{Title: " M1 ", Lessons: []models.Lesson{{Title: " L1 ", Resources: []models.Resource{{Title: " r "}}}}},
			{Title: "M2"},
		},
	}

	Normalize(&c)

	if c.Title != "Go Basics" {
		t.Errorf("Title: got %q", c.Title)
	}
	if c.Level != models.LevelAll {
		t.Errorf("Level: got %q, want %q", c.Level, models.LevelAll)
	}
	if !reflect.DeepEqual(c.LearningOutcomes, []string{"write Go"}) {
		t.Errorf("LearningOutcomes: got %v", c.LearningOutcomes)
	}
	if c.Requirements == nil || len(c.Requirements) != 0 {
		t.Errorf("Requirements: expected empty non-nil slice, got %#v", c.Requirements)
	}
	if c.Modules[1].Lessons == nil {
		t.Error("expected nil lessons to become empty slice")
	}
	r := c.Modules[0].Lessons[0].Resources[0]
	if r.Title != "r" || r.Type != models.ResourceTypePDF {
		t.Errorf("resource not normalized: %+v", r)
	}
}

func TestClone_NoSharedSlices(t *testing.T) {
	c := sampleCourse()
	cp := Clone(c)

	cp.Modules[0].Title = "changed"
	cp.Modules[0].Lessons[0].Title = "changed"
	cp.Modules[0].Lessons[0].Resources[0].Title = "changed"

	if c.Modules[0].Title != "Getting started" {
		t.Error("module title leaked into original")
	}
	if c.Modules[0].Lessons[0].Title != "Intro" {
		t.Error("lesson title leaked into original")
	}
	if c.Modules[0].Lessons[0].Resources[0].Title != "Notes" {
		t.Error("resource title leaked into original")
	}
}

func TestStripIDs(t *testing.T) {
	a := sampleCourse()
	b := sampleCourse()
	AssignIDs(&b, false)
	b.ID = primitive.NewObjectID()
	b.Version = 3

	if !reflect.DeepEqual(StripIDs(a), StripIDs(b)) {
		t.Error("courses differing only in ids should be equal after StripIDs")
	}
}
