package paging

import (
	"net/http/httptest"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/courses", PageSize},
		{"/courses?limit=10", 10},
		{"/courses?limit=0", PageSize},
		{"/courses?limit=-5", PageSize},
		{"/courses?limit=abc", PageSize},
		{"/courses?limit=1000", MaxPageSize},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		if got := ParseLimit(r); got != tt.want {
			t.Errorf("ParseLimit(%s) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

func TestTrimPage(t *testing.T) {
	tests := []struct {
		name       string
		rows       []int
		before     string
		after      string
		wantRows   []int
		wantResult Result
	}{
		{"first page, no extra", []int{1, 2, 3}, "", "", []int{1, 2, 3}, Result{}},
		{"first page, extra", []int{1, 2, 3, 4}, "", "", []int{1, 2, 3}, Result{HasNext: true}},
		{"forward, extra", []int{1, 2, 3, 4}, "", "c", []int{1, 2, 3}, Result{HasPrev: true, HasNext: true}},
		{"forward, no extra", []int{1, 2}, "", "c", []int{1, 2}, Result{HasPrev: true}},
		{"backward, extra", []int{0, 1, 2, 3}, "c", "", []int{1, 2, 3}, Result{HasPrev: true, HasNext: true}},
		{"backward, no extra", []int{1, 2}, "c", "", []int{1, 2}, Result{HasNext: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := tt.rows
			got := TrimPage(&rows, tt.before, tt.after, 3)
			if got != tt.wantResult {
				t.Errorf("result = %+v, want %+v", got, tt.wantResult)
			}
			if !reflect.DeepEqual(rows, tt.wantRows) {
				t.Errorf("rows = %v, want %v", rows, tt.wantRows)
			}
		})
	}
}

func TestConfigureKeyset(t *testing.T) {
	cfg := ConfigureKeyset("", "")
	if cfg.Direction != Forward || cfg.SortOrder != 1 || cfg.Cursor != nil {
		t.Errorf("empty cursors: got %+v", cfg)
	}
	if cfg.KeysetWindow("title_ci") != nil {
		t.Error("expected nil window without cursor")
	}

	id := primitive.NewObjectID()
	prev, next := BuildCursors([]int{1}, func(int) string { return "go basics" }, func(int) primitive.ObjectID { return id })

	fwd := ConfigureKeyset("", next)
	if fwd.Cursor == nil || fwd.Cursor.CI != "go basics" || fwd.Cursor.ID != id {
		t.Errorf("forward cursor not decoded: %+v", fwd.Cursor)
	}
	if fwd.KeysetWindow("title_ci") == nil {
		t.Error("expected window with cursor")
	}

	back := ConfigureKeyset(prev, "")
	if back.Direction != Backward || back.SortOrder != -1 || back.Cursor == nil {
		t.Errorf("backward: got %+v", back)
	}

	bad := ConfigureKeyset("", "%%%not-a-cursor")
	if bad.Cursor != nil {
		t.Error("expected undecodable cursor to be ignored")
	}
}

func TestApplyToFind(t *testing.T) {
	find := options.Find()
	ConfigureKeyset("", "").ApplyToFind(find, "title_ci", 10)
	if find.Limit == nil || *find.Limit != 11 {
		t.Errorf("limit: got %v", find.Limit)
	}
}

func TestReverse(t *testing.T) {
	rows := []int{1, 2, 3, 4}
	Reverse(rows)
	if !reflect.DeepEqual(rows, []int{4, 3, 2, 1}) {
		t.Errorf("Reverse: got %v", rows)
	}
}

func TestBuildCursors_Empty(t *testing.T) {
	prev, next := BuildCursors([]int{}, func(int) string { return "" }, func(int) primitive.ObjectID { return primitive.NilObjectID })
	if prev != "" || next != "" {
		t.Error("expected empty cursors for empty rows")
	}
}
