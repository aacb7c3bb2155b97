// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/curriculum"
	"github.com/dalemusser/learnhub/internal/app/system/paging"
	"github.com/dalemusser/learnhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the Mongo collection holding one document per course.
const Collection = "courses"

var (
	// ErrNotFound is returned when no course has the given id.
	ErrNotFound = errors.New("course not found")
	// ErrVersionConflict is returned when an expected version no longer
	// matches the stored one.
	ErrVersionConflict = errors.New("course was modified by someone else; reload and try again")
	// ErrNotApproved is returned when publishing a course that is not approved.
	ErrNotApproved = errors.New("only approved courses can be published")
	// ErrDuplicateID is returned when an insert collides on _id.
	ErrDuplicateID = errors.New("a course with this id already exists")
)

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection(Collection),
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Create inserts c as a new course owned by c.InstructorID. Every nested id
// is freshly assigned, the approval status starts at pending, and the
// course starts unpublished at version 1.
func (s *Store) Create(ctx context.Context, c models.Course) (models.Course, error) {
	now := s.now()

	curriculum.Normalize(&c)
	curriculum.AssignIDs(&c, false)
	c.ID = primitive.NewObjectID()
	c.TitleCI = text.Fold(c.Title)
	c.ApprovalStatus = models.ApprovalPending
	c.RejectionReason = ""
	c.Published = false
	c.Version = 1
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Course{}, ErrDuplicateID
		}
		return models.Course{}, err
	}
	return c, nil
}

// GetByID loads one course.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	var c models.Course
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Course{}, ErrNotFound
	}
	return c, err
}

// ReplaceResult describes a completed content replace.
type ReplaceResult struct {
	Course models.Course
	// Reopened is true when the course was rejected before the edit and
	// has been moved back to pending.
	Reopened bool
}

// Replace overwrites the course's content (scalars, curriculum, and string
// lists) in a single document update. Ownership, creation time, and the
// published flag are kept. A rejected course returns to pending with its
// rejection reason cleared. Nested ids already on c are kept; missing ones
// are assigned.
//
// When expectedVersion is non-nil the update only applies if the stored
// version matches, otherwise ErrVersionConflict is returned.
func (s *Store) Replace(ctx context.Context, id primitive.ObjectID, c models.Course, expectedVersion *int64) (ReplaceResult, error) {
	now := s.now()

	curriculum.Normalize(&c)
	curriculum.AssignIDs(&c, true)
	c.TitleCI = text.Fold(c.Title)

	content := bson.M{
		"title":             c.Title,
		"title_ci":          c.TitleCI,
		"description":       c.Description,
		"price":             c.Price,
		"category":          c.Category,
		"level":             c.Level,
		"language":          c.Language,
		"thumbnail":         c.Thumbnail,
		"modules":           c.Modules,
		"learning_outcomes": c.LearningOutcomes,
		"requirements":      c.Requirements,
		"provides":          c.Provides,
		"updated_at":        now,
	}
	if c.OriginalPrice != nil {
		content["original_price"] = *c.OriginalPrice
	}

	// Pipeline update so the rejected → pending reset and the version bump
	// read the stored values in the same atomic write. Client values are
	// wrapped in $literal so strings beginning with "$" are not treated as
	// field paths.
	set := bson.M{}
	for k, v := range content {
		set[k] = bson.M{"$literal": v}
	}
	isRejected := bson.M{"$eq": bson.A{"$approval_status", models.ApprovalRejected}}
	set["approval_status"] = bson.M{"$cond": bson.A{isRejected, models.ApprovalPending, "$approval_status"}}
	set["rejection_reason"] = bson.M{"$cond": bson.A{isRejected, "", "$rejection_reason"}}
	set["version"] = bson.M{"$add": bson.A{"$version", 1}}

	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}
	if c.OriginalPrice == nil {
		pipeline = append(pipeline, bson.D{{Key: "$unset", Value: "original_price"}})
	}

	var before models.Course
	err := s.c.FindOneAndUpdate(ctx, versionFilter(id, expectedVersion), pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&before)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ReplaceResult{}, s.missOrConflict(ctx, id, expectedVersion)
	}
	if err != nil {
		return ReplaceResult{}, err
	}

	after := c
	after.ID = before.ID
	after.InstructorID = before.InstructorID
	after.InstructorName = before.InstructorName
	after.CreatedAt = before.CreatedAt
	after.UpdatedAt = now
	after.Published = before.Published
	after.ApprovalStatus = before.ApprovalStatus
	after.RejectionReason = before.RejectionReason
	after.Version = before.Version + 1

	reopened := before.ApprovalStatus == models.ApprovalRejected
	if reopened {
		after.ApprovalStatus = models.ApprovalPending
		after.RejectionReason = ""
	}
	return ReplaceResult{Course: after, Reopened: reopened}, nil
}

// SetApproval changes only the approval fields. A rejected status must carry
// a reason; other statuses clear it. Moving a course away from approved also
// unpublishes it, so a published course is always an approved one.
func (s *Store) SetApproval(ctx context.Context, id primitive.ObjectID, status, reason string, expectedVersion *int64) (models.Course, error) {
	if !models.IsOneOf(status, models.ApprovalStatuses) {
		return models.Course{}, fmt.Errorf("invalid approval status %q", status)
	}
	reason = strings.TrimSpace(reason)
	if status == models.ApprovalRejected && reason == "" {
		return models.Course{}, errors.New("a rejection reason is required")
	}

	set := bson.M{
		"approval_status": status,
		"updated_at":      s.now(),
	}
	update := bson.M{"$inc": bson.M{"version": 1}}
	if status == models.ApprovalRejected {
		set["rejection_reason"] = reason
	} else {
		update["$unset"] = bson.M{"rejection_reason": ""}
	}
	if status != models.ApprovalApproved {
		set["published"] = false
	}
	update["$set"] = set

	return s.findOneAndUpdate(ctx, versionFilter(id, expectedVersion), update, id, expectedVersion)
}

// SetPublished changes only the published flag. Publishing requires the
// course to be approved; ErrNotApproved is returned otherwise.
func (s *Store) SetPublished(ctx context.Context, id primitive.ObjectID, published bool, expectedVersion *int64) (models.Course, error) {
	filter := versionFilter(id, expectedVersion)
	if published {
		filter["approval_status"] = models.ApprovalApproved
	}
	update := bson.M{
		"$set": bson.M{"published": published, "updated_at": s.now()},
		"$inc": bson.M{"version": 1},
	}

	c, err := s.findOneAndUpdate(ctx, filter, update, id, expectedVersion)
	if errors.Is(err, ErrNotFound) && published {
		// Distinguish "missing" from "exists but not approved".
		if cur, gerr := s.GetByID(ctx, id); gerr == nil {
			if expectedVersion != nil && cur.Version != *expectedVersion {
				return models.Course{}, ErrVersionConflict
			}
			return models.Course{}, ErrNotApproved
		}
	}
	return c, err
}

func (s *Store) findOneAndUpdate(ctx context.Context, filter bson.M, update any, id primitive.ObjectID, expectedVersion *int64) (models.Course, error) {
	var out models.Course
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Course{}, s.missOrConflict(ctx, id, expectedVersion)
	}
	return out, err
}

func versionFilter(id primitive.ObjectID, expectedVersion *int64) bson.M {
	f := bson.M{"_id": id}
	if expectedVersion != nil {
		f["version"] = *expectedVersion
	}
	return f
}

// missOrConflict explains why a filtered write matched nothing.
func (s *Store) missOrConflict(ctx context.Context, id primitive.ObjectID, expectedVersion *int64) error {
	if expectedVersion == nil {
		return ErrNotFound
	}
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrVersionConflict
}

// ListFilter selects courses for List. Zero values mean "no constraint".
type ListFilter struct {
	InstructorID   *primitive.ObjectID
	ApprovalStatus string
	Published      *bool

	// VisibleTo limits results to published+approved courses plus, when
	// non-nil, the given instructor's own courses.
	PublicOnly bool
	VisibleTo  *primitive.ObjectID

	Category string
	Search   string // case/diacritic-insensitive title prefix

	Before, After string // keyset cursors
	Limit         int
}

// ListResult is one page of courses in title order.
type ListResult struct {
	Courses    []models.Course
	NextCursor string
	PrevCursor string
	HasNext    bool
	HasPrev    bool
}

// List returns one page of courses ordered by folded title then id.
func (s *Store) List(ctx context.Context, f ListFilter) (ListResult, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = paging.PageSize
	}

	var conds []bson.M
	if f.InstructorID != nil {
		conds = append(conds, bson.M{"instructor_id": *f.InstructorID})
	}
	if f.ApprovalStatus != "" {
		conds = append(conds, bson.M{"approval_status": f.ApprovalStatus})
	}
	if f.Published != nil {
		conds = append(conds, bson.M{"published": *f.Published})
	}
	if f.Category != "" {
		conds = append(conds, bson.M{"category": f.Category})
	}
	if f.PublicOnly {
		public := bson.M{"published": true, "approval_status": models.ApprovalApproved}
		if f.VisibleTo != nil {
			conds = append(conds, bson.M{"$or": bson.A{public, bson.M{"instructor_id": *f.VisibleTo}}})
		} else {
			conds = append(conds, public)
		}
	}
	if q := text.Fold(strings.TrimSpace(f.Search)); q != "" {
		conds = append(conds, bson.M{"title_ci": bson.M{"$regex": "^" + regexp.QuoteMeta(q)}})
	}

	cfg := paging.ConfigureKeyset(f.Before, f.After)
	if ks := cfg.KeysetWindow("title_ci"); ks != nil {
		conds = append(conds, ks)
	}

	filter := bson.M{}
	if len(conds) > 0 {
		filter["$and"] = conds
	}

	find := options.Find()
	cfg.ApplyToFind(find, "title_ci", limit)

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return ListResult{}, err
	}
	defer cur.Close(ctx)

	rows := make([]models.Course, 0, limit+1)
	if err := cur.All(ctx, &rows); err != nil {
		return ListResult{}, err
	}

	if cfg.Direction == paging.Backward {
		paging.Reverse(rows)
	}
	page := paging.TrimPage(&rows, f.Before, f.After, limit)
	prev, next := paging.BuildCursors(rows,
		func(c models.Course) string { return c.TitleCI },
		func(c models.Course) primitive.ObjectID { return c.ID })

	return ListResult{
		Courses:    rows,
		NextCursor: next,
		PrevCursor: prev,
		HasNext:    page.HasNext,
		HasPrev:    page.HasPrev,
	}, nil
}
