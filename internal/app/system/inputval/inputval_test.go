package inputval

import (
	"strings"
	"testing"
)

type lessonIn struct {
	Title string `validate:"required,max=10" label:"Lesson title"`
	Type  string `validate:"resourcetype" label:"Type"`
}

type courseIn struct {
	Title   string     `validate:"required,max=20" label:"Title"`
	Price   float64    `validate:"gte=0" label:"Price"`
	Level   string     `validate:"courselevel" label:"Level"`
	Lessons []lessonIn `validate:"dive"`
}

func TestValidate_OK(t *testing.T) {
	in := courseIn{Title: "Go", Price: 10, Level: "Beginner", Lessons: []lessonIn{{Title: "Intro", Type: "PDF"}}}
	if res := Validate(in); res.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Errors)
	}
}

func TestValidate_EmptyEnumAllowed(t *testing.T) {
	in := courseIn{Title: "Go"}
	if res := Validate(in); res.HasErrors() {
		t.Fatalf("empty level should be accepted, got %+v", res.Errors)
	}
}

func TestValidate_Messages(t *testing.T) {
	in := courseIn{
		Price:   -1,
		Level:   "Wizard",
		Lessons: []lessonIn{{Title: "a title that is too long", Type: "zip"}},
	}
	res := Validate(in)
	if !res.HasErrors() {
		t.Fatal("expected errors")
	}
	if res.First() != "Title is required." {
		t.Errorf("First() = %q", res.First())
	}

	fields := res.Fields()
	want := map[string]string{
		"title":            "Title is required.",
		"price":            "Price must be at least 0.",
		"lessons[0].title": "Lesson title must be at most 10 characters.",
	}
	for k, msg := range want {
		if fields[k] != msg {
			t.Errorf("fields[%q] = %q, want %q", k, fields[k], msg)
		}
	}
	if !strings.HasPrefix(fields["level"], "Level must be one of: All Levels") {
		t.Errorf("fields[level] = %q", fields["level"])
	}
	if !strings.HasPrefix(fields["lessons[0].type"], "Type must be one of: PDF") {
		t.Errorf("fields[lessons[0].type] = %q", fields["lessons[0].type"])
	}
}

func TestResult_FirstEmpty(t *testing.T) {
	var r Result
	if r.HasErrors() || r.First() != "" {
		t.Error("zero Result should have no errors")
	}
}

func TestFieldPath(t *testing.T) {
	tests := map[string]string{
		"courseIn.Title":                  "title",
		"courseIn.Lessons[2].Title":       "lessons[2].title",
		"Title":                           "title",
		"in.Modules[0].Lessons[1].VideoID": "modules[0].lessons[1].videoID",
	}
	for in, want := range tests {
		if got := fieldPath(in); got != want {
			t.Errorf("fieldPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidEnums(t *testing.T) {
	if !IsValidCourseLevel("All Levels") || IsValidCourseLevel("all levels") {
		t.Error("IsValidCourseLevel mismatch")
	}
	if !IsValidResourceType("other") || IsValidResourceType("") {
		t.Error("IsValidResourceType mismatch")
	}
	if !IsValidApprovalStatus("rejected") || IsValidApprovalStatus("draft") {
		t.Error("IsValidApprovalStatus mismatch")
	}
}
