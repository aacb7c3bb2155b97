package coursestore_test

import (
	"errors"
	"reflect"
	"testing"

	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	"github.com/dalemusser/learnhub/internal/app/system/curriculum"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := testutil.SampleCourse("Go Basics")
	in.InstructorID = primitive.NewObjectID()
	in.ApprovalStatus = models.ApprovalApproved // ignored on create
	in.Published = true                         // ignored on create

	created, err := store.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if created.TitleCI != "go basics" {
		t.Errorf("TitleCI: got %q", created.TitleCI)
	}
	if created.ApprovalStatus != models.ApprovalPending || created.Published {
		t.Errorf("expected pending/unpublished, got %q/%v", created.ApprovalStatus, created.Published)
	}
	if created.Version != 1 {
		t.Errorf("Version: got %d, want 1", created.Version)
	}
	if created.Modules[0].Lessons[0].Resources[0].ID.IsZero() {
		t.Error("expected nested ids to be assigned")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !reflect.DeepEqual(curriculum.StripIDs(got), curriculum.StripIDs(created)) {
		t.Errorf("stored course differs from returned course\n got: %+v\nwant: %+v", got, created)
	}
	if got.Modules[1].Lessons[0].ID != created.Modules[1].Lessons[0].ID {
		t.Error("lesson id not persisted")
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, coursestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Replace_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	seed := testutil.NewFixtures(t, db).CreateCourse(ctx, "Go Basics", owner, models.ApprovalApproved, true)

	edit := curriculum.Clone(seed)
	edit.Title = "$5 Go Basics"
	edit.Modules[0].Lessons = append(edit.Modules[0].Lessons, models.Lesson{Title: "New Lesson"})
	edit.InstructorID = primitive.NewObjectID() // must be ignored

	res, err := store.Replace(ctx, seed.ID, edit, nil)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if res.Reopened {
		t.Error("approved course should not be reopened")
	}
	if res.Course.InstructorID != owner {
		t.Error("owner must be preserved")
	}
	if res.Course.Version != seed.Version+1 {
		t.Errorf("Version: got %d, want %d", res.Course.Version, seed.Version+1)
	}
	if !res.Course.Published || res.Course.ApprovalStatus != models.ApprovalApproved {
		t.Error("published/approval must be preserved on content edit")
	}

	got, err := store.GetByID(ctx, seed.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "$5 Go Basics" {
		t.Errorf("Title: got %q (literal values must not be evaluated)", got.Title)
	}
	if got.Modules[0].Lessons[0].ID != seed.Modules[0].Lessons[0].ID {
		t.Error("existing lesson id must be kept")
	}
	if got.Modules[0].Lessons[2].ID.IsZero() {
		t.Error("new lesson must get an id")
	}
	if !reflect.DeepEqual(curriculum.StripIDs(got), curriculum.StripIDs(res.Course)) {
		t.Errorf("returned course differs from stored course\n got: %+v\nwant: %+v", got, res.Course)
	}
}

func TestStore_Replace_ReopensRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := testutil.NewFixtures(t, db).CreateCourse(ctx, "Rust", primitive.NewObjectID(), models.ApprovalPending, false)
	if _, err := store.SetApproval(ctx, seed.ID, models.ApprovalRejected, "Needs more lessons", nil); err != nil {
		t.Fatalf("SetApproval failed: %v", err)
	}

	res, err := store.Replace(ctx, seed.ID, seed, nil)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if !res.Reopened {
		t.Error("expected Reopened=true")
	}
	got, _ := store.GetByID(ctx, seed.ID)
	if got.ApprovalStatus != models.ApprovalPending || got.RejectionReason != "" {
		t.Errorf("expected pending with no reason, got %q/%q", got.ApprovalStatus, got.RejectionReason)
	}
}

func TestStore_Replace_VersionConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := testutil.NewFixtures(t, db).CreateCourse(ctx, "Go", primitive.NewObjectID(), models.ApprovalPending, false)

	stale := seed.Version
	if _, err := store.Replace(ctx, seed.ID, seed, &stale); err != nil {
		t.Fatalf("first Replace failed: %v", err)
	}
	if _, err := store.Replace(ctx, seed.ID, seed, &stale); !errors.Is(err, coursestore.ErrVersionConflict) {
		t.Errorf("expected ErrVersionConflict, got %v", err)
	}
	if _, err := store.Replace(ctx, primitive.NewObjectID(), seed, &stale); !errors.Is(err, coursestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SetApproval(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	seed := testutil.NewFixtures(t, db).CreateCourse(ctx, "Go", primitive.NewObjectID(), models.ApprovalApproved, true)

	if _, err := store.SetApproval(ctx, seed.ID, models.ApprovalRejected, "  ", nil); err == nil {
		t.Error("expected error for rejection without reason")
	}
	if _, err := store.SetApproval(ctx, seed.ID, "draft", "", nil); err == nil {
		t.Error("expected error for unknown status")
	}

	c, err := store.SetApproval(ctx, seed.ID, models.ApprovalRejected, "Audio is poor", nil)
	if err != nil {
		t.Fatalf("SetApproval failed: %v", err)
	}
	if c.ApprovalStatus != models.ApprovalRejected || c.RejectionReason != "Audio is poor" {
		t.Errorf("unexpected approval fields: %q/%q", c.ApprovalStatus, c.RejectionReason)
	}
	if c.Published {
		t.Error("rejecting must unpublish")
	}
	if !reflect.DeepEqual(c.Modules, seed.Modules) {
		t.Error("approval change must not touch the curriculum")
	}

	c, err = store.SetApproval(ctx, seed.ID, models.ApprovalApproved, "ignored", nil)
	if err != nil {
		t.Fatalf("SetApproval failed: %v", err)
	}
	if c.RejectionReason != "" {
		t.Errorf("expected reason cleared, got %q", c.RejectionReason)
	}
}

func TestStore_SetPublished(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	pending := fx.CreateCourse(ctx, "Pending", primitive.NewObjectID(), models.ApprovalPending, false)
	approved := fx.CreateCourse(ctx, "Approved", primitive.NewObjectID(), models.ApprovalApproved, false)

	if _, err := store.SetPublished(ctx, pending.ID, true, nil); !errors.Is(err, coursestore.ErrNotApproved) {
		t.Errorf("expected ErrNotApproved, got %v", err)
	}
	if _, err := store.SetPublished(ctx, primitive.NewObjectID(), true, nil); !errors.Is(err, coursestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	c, err := store.SetPublished(ctx, approved.ID, true, nil)
	if err != nil {
		t.Fatalf("SetPublished failed: %v", err)
	}
	if !c.Published || c.Version != approved.Version+1 {
		t.Errorf("unexpected result: published=%v version=%d", c.Published, c.Version)
	}

	c, err = store.SetPublished(ctx, pending.ID, false, nil)
	if err != nil || c.Published {
		t.Errorf("unpublish should always succeed: %v", err)
	}
}

func TestStore_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()
	fx.CreateCourse(ctx, "Alpha", other, models.ApprovalApproved, true)
	fx.CreateCourse(ctx, "Bravo", other, models.ApprovalPending, false)
	fx.CreateCourse(ctx, "Charlie", me, models.ApprovalPending, false)
	fx.CreateCourse(ctx, "Delta", other, models.ApprovalApproved, true)
	fx.CreateCourse(ctx, "Écho", other, models.ApprovalApproved, true)

	titles := func(cs []models.Course) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Title
		}
		return out
	}

	res, err := store.List(ctx, coursestore.ListFilter{PublicOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if want := []string{"Alpha", "Delta", "Écho"}; !reflect.DeepEqual(titles(res.Courses), want) {
		t.Errorf("public: got %v, want %v", titles(res.Courses), want)
	}

	res, _ = store.List(ctx, coursestore.ListFilter{PublicOnly: true, VisibleTo: &me})
	if want := []string{"Alpha", "Charlie", "Delta", "Écho"}; !reflect.DeepEqual(titles(res.Courses), want) {
		t.Errorf("public+mine: got %v, want %v", titles(res.Courses), want)
	}

	res, _ = store.List(ctx, coursestore.ListFilter{Search: "ech"})
	if want := []string{"Écho"}; !reflect.DeepEqual(titles(res.Courses), want) {
		t.Errorf("search: got %v, want %v", titles(res.Courses), want)
	}

	// Page through all five, two at a time.
	page1, _ := store.List(ctx, coursestore.ListFilter{Limit: 2})
	if !page1.HasNext || page1.HasPrev {
		t.Errorf("page1 flags: %+v", page1)
	}
	page2, _ := store.List(ctx, coursestore.ListFilter{Limit: 2, After: page1.NextCursor})
	if want := []string{"Charlie", "Delta"}; !reflect.DeepEqual(titles(page2.Courses), want) {
		t.Errorf("page2: got %v, want %v", titles(page2.Courses), want)
	}
	if !page2.HasPrev || !page2.HasNext {
		t.Errorf("page2 flags: %+v", page2)
	}
	back, _ := store.List(ctx, coursestore.ListFilter{Limit: 2, Before: page2.PrevCursor})
	if want := []string{"Alpha", "Bravo"}; !reflect.DeepEqual(titles(back.Courses), want) {
		t.Errorf("back: got %v, want %v", titles(back.Courses), want)
	}
}
