// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	coursestore "github.com/dalemusser/learnhub/internal/app/store/courses"
	"github.com/dalemusser/learnhub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(coursestore.Collection, coursesSchema())
	ensure(audit.Collection, auditEventsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists reports whether name is already present in db.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

// commandErr reports whether err is a server command error with the given
// code, or whose message contains one of phrases.
func commandErr(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErr(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErr(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErr(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

// enumOf converts a string list into a schema enum.
func enumOf(vals []string) bson.A {
	out := make(bson.A, 0, len(vals))
	for _, v := range vals {
		out = append(out, v)
	}
	return out
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func resourceSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": bson.A{"_id", "title", "url", "type"},
		"properties": bson.M{
			"_id":   bson.M{"bsonType": "objectId"},
			"title": bson.M{"bsonType": "string"},
			"url":   bson.M{"bsonType": "string"},
			"type":  bson.M{"enum": enumOf(models.ResourceTypes)},
		},
	}
}

func lessonSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": bson.A{"_id", "title", "resources"},
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "objectId"},
			"title":     bson.M{"bsonType": "string"},
			"video_id":  bson.M{"bsonType": "string"},
			"duration":  bson.M{"bsonType": "number", "minimum": 0},
			"is_free":   bson.M{"bsonType": "bool"},
			"resources": bson.M{"bsonType": "array", "items": resourceSchema()},
		},
	}
}

func moduleSchema() bson.M {
	return bson.M{
		"bsonType": "object",
		"required": bson.A{"_id", "title", "lessons"},
		"properties": bson.M{
			"_id":     bson.M{"bsonType": "objectId"},
			"title":   bson.M{"bsonType": "string"},
			"lessons": bson.M{"bsonType": "array", "items": lessonSchema()},
		},
	}
}

func coursesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{
				"title", "title_ci", "price", "level", "modules",
				"approval_status", "published", "instructor_id", "version",
			},
			"properties": bson.M{
				"title":            nonBlank,
				"title_ci":         nonBlank,
				"price":            bson.M{"bsonType": "number", "minimum": 0},
				"original_price":   bson.M{"bsonType": "number", "minimum": 0},
				"level":            bson.M{"enum": enumOf(models.CourseLevels)},
				"approval_status":  bson.M{"enum": enumOf(models.ApprovalStatuses)},
				"rejection_reason": bson.M{"bsonType": "string"},
				"published":        bson.M{"bsonType": "bool"},
				"instructor_id":    bson.M{"bsonType": "objectId"},
				"version":          bson.M{"bsonType": "long", "minimum": 1},
				"modules":          bson.M{"bsonType": "array", "items": moduleSchema()},
			},
		},
	}
}

func auditEventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"timestamp", "category", "event_type", "success"},
			"properties": bson.M{
				"timestamp":  bson.M{"bsonType": "date"},
				"category":   bson.M{"enum": bson.A{audit.CategoryCourse, audit.CategoryUpload}},
				"event_type": nonBlank,
				"success":    bson.M{"bsonType": "bool"},
				"course_id":  bson.M{"bsonType": "objectId"},
				"actor_id":   bson.M{"bsonType": "objectId"},
			},
		},
	}
}
