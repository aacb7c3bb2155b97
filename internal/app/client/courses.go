// internal/app/client/courses.go
package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type courseEnvelope struct {
	Success bool           `json:"success"`
	Course  *models.Course `json:"course"`
	Message string         `json:"message"`
}

// coursePayload is a full aggregate body. Version is sent only when set so
// that a zero version never trips the conflict check.
type coursePayload struct {
	models.Course
	Version *int64 `json:"version,omitempty"`
}

func payload(c models.Course) coursePayload {
	p := coursePayload{Course: c}
	if c.Version > 0 {
		v := c.Version
		p.Version = &v
	}
	return p
}

// Result is a course returned by a write, with the server's message.
type Result struct {
	Course  models.Course
	Message string
}

func (c *Client) courseCall(ctx context.Context, method, path string, in any) (Result, error) {
	var env courseEnvelope
	if err := c.doJSON(ctx, method, path, in, &env); err != nil {
		return Result{}, err
	}
	if env.Course == nil {
		return Result{}, &APIError{Status: http.StatusBadGateway, Message: "response did not include a course"}
	}
	return Result{Course: *env.Course, Message: env.Message}, nil
}

func coursePath(id primitive.ObjectID) string {
	return "/courses/" + id.Hex()
}

// Create submits a new course aggregate. Any id on c is ignored by the
// server.
func (c *Client) Create(ctx context.Context, course models.Course) (models.Course, error) {
	res, err := c.CreateWithMessage(ctx, course)
	return res.Course, err
}

// CreateWithMessage is Create that also returns the server's message.
func (c *Client) CreateWithMessage(ctx context.Context, course models.Course) (Result, error) {
	return c.courseCall(ctx, http.MethodPost, "/courses", payload(course))
}

// Update replaces course.ID with the full aggregate. A non-zero
// course.Version turns on the conflict check.
func (c *Client) Update(ctx context.Context, course models.Course) (models.Course, error) {
	res, err := c.UpdateWithMessage(ctx, course)
	return res.Course, err
}

// UpdateWithMessage is Update that also returns the server's message.
func (c *Client) UpdateWithMessage(ctx context.Context, course models.Course) (Result, error) {
	return c.courseCall(ctx, http.MethodPut, coursePath(course.ID), payload(course))
}

// Get fetches one course.
func (c *Client) Get(ctx context.Context, id primitive.ObjectID) (models.Course, error) {
	res, err := c.courseCall(ctx, http.MethodGet, coursePath(id), nil)
	return res.Course, err
}

// SetApproval records an admin decision. reason is required by the server
// for "rejected" and ignored otherwise.
func (c *Client) SetApproval(ctx context.Context, id primitive.ObjectID, status, reason string) (Result, error) {
	body := struct {
		ApprovalStatus  string `json:"approvalStatus"`
		RejectionReason string `json:"rejectionReason,omitempty"`
	}{status, reason}
	return c.courseCall(ctx, http.MethodPut, coursePath(id), body)
}

// SetPublished publishes or unpublishes a course.
func (c *Client) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) (Result, error) {
	body := struct {
		Published bool `json:"published"`
	}{published}
	return c.courseCall(ctx, http.MethodPut, coursePath(id), body)
}

// RequestReview tells reviewers the course is ready.
func (c *Client) RequestReview(ctx context.Context, id primitive.ObjectID) (Result, error) {
	return c.courseCall(ctx, http.MethodPost, coursePath(id)+"/submit-review", nil)
}

// ListOptions filters GET /courses. Zero values are omitted.
type ListOptions struct {
	Query     string
	Category  string
	Mine      bool
	Status    string
	Published *bool
	After     string
	Before    string
	Limit     int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("q", o.Query)
	set("category", o.Category)
	set("status", o.Status)
	set("after", o.After)
	set("before", o.Before)
	if o.Mine {
		v.Set("mine", "1")
	}
	if o.Published != nil {
		v.Set("published", strconv.FormatBool(*o.Published))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	return v
}

// Page is one page of courses.
type Page struct {
	Courses    []models.Course `json:"courses"`
	NextCursor string          `json:"nextCursor"`
	PrevCursor string          `json:"prevCursor"`
	HasNext    bool            `json:"hasNext"`
	HasPrev    bool            `json:"hasPrev"`
}

// List fetches one page of courses.
func (c *Client) List(ctx context.Context, opts ListOptions) (Page, error) {
	path := "/courses"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}
	var page Page
	err := c.doJSON(ctx, http.MethodGet, path, nil, &page)
	return page, err
}
