// internal/app/features/courses/create.go
package courses

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/curriculum"
	"github.com/dalemusser/learnhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/inputval"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HandleCreate handles POST /courses.
//
// The body is a full Course aggregate without ids. The curriculum rule is
// checked here as well as in the editor so a client that skips the editor
// cannot store an empty course.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, name, uid, ok := authz.UserCtx(r)
	if !ok || !authz.CanAuthor(r) {
		httpjson.WriteError(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}

	var in courseInput
	if !h.decode(w, r, &in) {
		return
	}
	c, ok := h.validateAggregate(w, r, &in, nil, "create")
	if !ok {
		return
	}
	c.InstructorID = uid
	c.InstructorName = name

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create course")
	defer cancel()

	created, err := h.Store.Create(ctx, c)
	if err != nil {
		h.writeStoreError(w, r, nil, "create", err)
		return
	}

	h.Log.Info("course created",
		zap.String("course_id", created.ID.Hex()),
		zap.String("instructor_id", uid.Hex()),
		zap.Int("modules", len(created.Modules)),
		zap.Int("lessons", created.LessonCount()))
	h.Audit.CourseCreated(r.Context(), r, created)

	writeCourse(w, http.StatusCreated, created, "Course created successfully.")
}

// validateAggregate runs field validation and the curriculum rule on a full
// aggregate and returns the sanitized course. On failure it writes the 400
// response, audits the rejection, and returns false.
func (h *Handler) validateAggregate(w http.ResponseWriter, r *http.Request, in *courseInput, courseID *primitive.ObjectID, op string) (models.Course, bool) {
	if res := inputval.Validate(*in); res.HasErrors() {
		h.Audit.CourseWriteFailed(r.Context(), r, courseID, op, "validation: "+res.First())
		httpjson.WriteValidation(w, res.First(), res.Fields())
		return models.Course{}, false
	}

	c := in.toCourse()
	curriculum.Normalize(&c)
	if err := curriculum.Validate(c.Modules); err != nil {
		h.Audit.CourseWriteFailed(r.Context(), r, courseID, op, "curriculum: "+err.Error())
		httpjson.WriteValidation(w, err.Error(), map[string]string{"modules": err.Error()})
		return models.Course{}, false
	}
	if curriculum.DuplicateIDs(&c) {
		h.Audit.CourseWriteFailed(r.Context(), r, courseID, op, "duplicate nested ids")
		httpjson.WriteValidation(w, "Each section, lesson, and resource must have a distinct id.",
			map[string]string{"modules": "Duplicate ids in curriculum."})
		return models.Course{}, false
	}
	htmlsanitize.SanitizeCourse(&c)
	return c, true
}
