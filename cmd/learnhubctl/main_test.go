package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/editor"
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/app/system/curriculum"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const sampleYAML = `
title: Go Basics
price: 19.5
level: Beginner
thumbnail: cover.png
learningOutcomes: [Write Go]
modules:
  - title: Getting started
    lessons:
      - title: Intro
        videoId: vid-1
        duration: 120
        free: true
        resources:
          - title: Notes
            file: notes.pdf
          - title: Docs
            url: https://go.dev/doc
            type: other
  - title: Types
    lessons: []
`

func TestParseCourseFile(t *testing.T) {
	cf, err := parseCourseFile([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cf.Title != "Go Basics" || cf.Price != 19.5 || len(cf.Modules) != 2 {
		t.Errorf("unexpected parse: %+v", cf)
	}
	l := cf.Modules[0].Lessons[0]
	if l.VideoID != "vid-1" || l.Duration != 120 || !l.Free || len(l.Resources) != 2 {
		t.Errorf("unexpected lesson: %+v", l)
	}

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "title: x\nrating: 5\n", "rating"},
		{"url and file", "modules:\n- lessons:\n  - resources:\n    - url: https://x\n      file: a.pdf\n", "set url or file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCourseFile([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

type recordingUploader struct {
	mu    sync.Mutex
	files map[string]string // filename -> content
}

func (u *recordingUploader) Upload(_ context.Context, kind, filename string, r io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.files == nil {
		u.files = map[string]string{}
	}
	u.files[filename] = string(b)
	return "/files/" + kind + "s/" + filename, nil
}

func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"course.yaml": sampleYAML,
		"notes.pdf":   "%PDF-1.4 notes",
		"cover.png":   "png",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestApplyCourseFile(t *testing.T) {
	dir := writeSample(t)
	cf, err := loadCourseFile(filepath.Join(dir, "course.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	e := editor.New(nil)
	up := &recordingUploader{}
	if err := cf.apply(context.Background(), e, up, dir); err != nil {
		t.Fatalf("apply: %v", err)
	}

	c := e.Snapshot().Course()
	if c.Title != "Go Basics" || c.Level != models.LevelBeginner || c.Thumbnail != "/files/thumbnails/cover.png" {
		t.Errorf("details: %+v", c)
	}
	if len(c.Modules) != 2 || c.Modules[1].Title != "Types" || len(c.Modules[1].Lessons) != 0 {
		t.Fatalf("modules: %+v", c.Modules)
	}
	l := c.Modules[0].Lessons[0]
	if l.Title != "Intro" || l.VideoID != "vid-1" || l.Duration != 120 || !l.IsFree {
		t.Errorf("lesson: %+v", l)
	}
	want := []models.Resource{
		{Title: "Notes", URL: "/files/resources/notes.pdf", Type: models.ResourceTypePDF},
		{Title: "Docs", URL: "https://go.dev/doc", Type: models.ResourceTypeOther},
	}
	for i, r := range want {
		if l.Resources[i] != r {
			t.Errorf("resource %d = %+v, want %+v", i, l.Resources[i], r)
		}
	}
	if up.files["notes.pdf"] != "%PDF-1.4 notes" {
		t.Errorf("uploaded content: %q", up.files["notes.pdf"])
	}

	// Applying again replaces the curriculum rather than appending to it.
	if err := cf.apply(context.Background(), e, up, dir); err != nil {
		t.Fatal(err)
	}
	if n := e.Snapshot().ModuleCount(); n != 2 {
		t.Errorf("ModuleCount after re-apply = %d, want 2", n)
	}
}

func TestApplyCourseFile_MissingUpload(t *testing.T) {
	cf, err := parseCourseFile([]byte("modules:\n- lessons:\n  - resources:\n    - file: gone.pdf\n"))
	if err != nil {
		t.Fatal(err)
	}
	err = cf.apply(context.Background(), editor.New(nil), &recordingUploader{}, t.TempDir())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("got %v, want a not-exist error", err)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestTokenCmd(t *testing.T) {
	secret := strings.Repeat("s", 32)
	user := primitive.NewObjectID().Hex()

	out, err := run(t, "token", "--secret", secret, "--role", "admin", "--user", user, "--name", "Ada")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	tokens, err := auth.NewTokens(secret, "learnhub", 0)
	if err != nil {
		t.Fatal(err)
	}
	u, err := tokens.Parse(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if u.ID != user || u.Role != models.RoleAdmin || u.Name != "Ada" {
		t.Errorf("claims: %+v", u)
	}

	if _, err := run(t, "token", "--secret", secret, "--role", "owner"); err == nil {
		t.Error("expected unknown role to be rejected")
	}
}

// fakeAPI answers the course and upload endpoints the CLI uses.
func fakeAPI(t *testing.T) (*httptest.Server, *[]models.Course) {
	t.Helper()
	var mu sync.Mutex
	var created []models.Course

	reply := func(w http.ResponseWriter, c models.Course) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "course": c, "message": "ok"})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /courses", func(w http.ResponseWriter, r *http.Request) {
		var c models.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			t.Errorf("decode course: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		curriculum.AssignIDs(&c, false)
		c.ID = primitive.NewObjectID()
		c.Version = 1
		c.ApprovalStatus = models.ApprovalPending
		mu.Lock()
		created = append(created, c)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		reply(w, c)
	})
	mux.HandleFunc("POST /uploads", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse upload: %v", err)
			return
		}
		_, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("upload file: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "/files/" + r.FormValue("type") + "s/" + fh.Filename})
	})
	mux.HandleFunc("PUT /courses/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		id, _ := primitive.ObjectIDFromHex(r.PathValue("id"))
		c := models.Course{ID: id, Title: "Go Basics", Version: 2}
		if s, ok := body["approvalStatus"].(string); ok {
			c.ApprovalStatus = s
		}
		reply(w, c)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &created
}

func TestSubmitCmd(t *testing.T) {
	srv, created := fakeAPI(t)
	dir := writeSample(t)

	out, err := run(t, "--url", srv.URL, "--token", "tok", "submit", filepath.Join(dir, "course.yaml"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !strings.Contains(out, "saved ") || !strings.Contains(out, "version=1 lessons=1") {
		t.Errorf("output: %q", out)
	}
	if len(*created) != 1 {
		t.Fatalf("expected one create, got %d", len(*created))
	}
	got := (*created)[0]
	if got.Thumbnail != "/files/thumbnails/cover.png" || got.Modules[0].Lessons[0].Resources[0].URL != "/files/resources/notes.pdf" {
		t.Errorf("uploaded references not sent: %+v", got)
	}
}

func TestSubmitCmd_EmptyCurriculum(t *testing.T) {
	srv, created := fakeAPI(t)
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("title: Nothing yet\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, "--url", srv.URL, "submit", path)
	if err == nil || err.Error() != "Please add at least one section to your course." {
		t.Errorf("got %v", err)
	}
	if len(*created) != 0 {
		t.Error("no request should reach the server")
	}
}

func TestApproveCmd(t *testing.T) {
	srv, _ := fakeAPI(t)
	id := primitive.NewObjectID().Hex()

	out, err := run(t, "--url", srv.URL, "approve", id)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "status=approved") {
		t.Errorf("output: %q", out)
	}

	if _, err := run(t, "--url", srv.URL, "approve", "nope"); err == nil {
		t.Error("expected a bad id to be rejected")
	}
}
