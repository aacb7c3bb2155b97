package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_NilLogger(t *testing.T) {
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.CourseCreated(ctx, req, models.Course{ID: primitive.NewObjectID()})
	logger.FileUploaded(ctx, req, "thumbnail", "u", 1)
}

func TestLogger_LogOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Course: auditlog.ModeLog, Upload: auditlog.ModeOff})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := testutil.InstructorUser()
	req := testutil.WithUser(httptest.NewRequest("POST", "/courses", nil), user)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")

	c := models.Course{ID: primitive.NewObjectID(), Title: "Go", Modules: []models.Module{{Lessons: []models.Lesson{{}, {}}}}}
	logger.CourseCreated(ctx, req, c)
	logger.FileUploaded(ctx, req, "resource", "https://x/y.pdf", 10)

	entries := logs.FilterMessage("audit event").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit log entry (uploads off), got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["event_type"] != audit.EventCourseCreated {
		t.Errorf("event_type: got %v", fields["event_type"])
	}
	if fields["course_id"] != c.ID.Hex() {
		t.Errorf("course_id: got %v", fields["course_id"])
	}
	if fields["actor_id"] != user.ID {
		t.Errorf("actor_id: got %v", fields["actor_id"])
	}
	if fields["ip"] != "10.0.0.1" {
		t.Errorf("ip: got %v", fields["ip"])
	}
	if fields["detail_lessons"] != "2" {
		t.Errorf("detail_lessons: got %v", fields["detail_lessons"])
	}
}

func TestLogger_FailureLogsWarn(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := auditlog.New(nil, zap.New(core), auditlog.Config{Course: auditlog.ModeLog})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.CourseWriteFailed(ctx, httptest.NewRequest("PUT", "/courses/x", nil), nil, "update", "version conflict")

	entries := logs.FilterMessage("audit event").All()
	if len(entries) != 1 || entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected one warn entry, got %+v", entries)
	}
}

func TestLogger_DB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Course: auditlog.ModeDB})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.WithUser(httptest.NewRequest("PUT", "/courses/x", nil), testutil.AdminUser())
	c := models.Course{ID: primitive.NewObjectID(), Version: 4}
	logger.CourseUpdated(ctx, req, c, true)

	events, err := store.GetByCourse(ctx, c.ID, 10)
	if err != nil {
		t.Fatalf("GetByCourse failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected updated + reopened events, got %d", len(events))
	}
	types := map[string]bool{}
	for _, e := range events {
		types[e.EventType] = true
		if e.ActorRole != "admin" {
			t.Errorf("actor_role: got %q", e.ActorRole)
		}
	}
	if !types[audit.EventCourseUpdated] || !types[audit.EventCourseReopened] {
		t.Errorf("unexpected event types: %v", types)
	}
}

func TestLogger_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Course: auditlog.ModeOff})
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := models.Course{ID: primitive.NewObjectID()}
	logger.CourseCreated(ctx, httptest.NewRequest("POST", "/courses", nil), c)

	events, err := store.GetByCourse(ctx, c.ID, 10)
	if err != nil {
		t.Fatalf("GetByCourse failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events with audit off, got %d", len(events))
	}
}
