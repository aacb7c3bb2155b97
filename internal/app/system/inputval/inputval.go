// internal/app/system/inputval/inputval.go

// Package inputval validates decoded request bodies using struct tags.
//
// Request structs carry `validate` tags (go-playground/validator) and an
// optional `label` tag with the human-readable field name used in messages:
//
//	type courseInput struct {
//	    Title string  `json:"title" validate:"required,max=200" label:"Title"`
//	    Price float64 `json:"price" validate:"gte=0" label:"Price"`
//	}
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule on one field.
type FieldError struct {
	Field   string // path using JSON-style names, e.g. "modules[0].lessons[1].title"
	Label   string
	Message string
}

// Result holds every field error found by Validate.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "" when there are none.
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Fields returns the messages keyed by field path. When a field fails more
// than one rule only the first message is kept.
func (r Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("courselevel", enum(models.CourseLevels))
		_ = v.RegisterValidation("resourcetype", enum(models.ResourceTypes))
		_ = v.RegisterValidation("approvalstatus", enum(models.ApprovalStatuses))
		_ = v.RegisterValidation("uploadkind", enum(models.UploadKinds))
	})
	return v
}

// enum accepts an empty value (defaults are applied later) or one of allowed.
func enum(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.IsOneOf(s, allowed)
	}
}

// Validate runs the struct's validate tags and returns every failure.
// A non-struct argument is a programming error and panics inside validator.
func Validate(s any) Result {
	err := instance().Struct(s)
	if err == nil {
		return Result{}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []FieldError{{Field: "", Label: "", Message: err.Error()}}}
	}
	out := Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   fieldPath(fe.StructNamespace()),
			Label:   fe.Field(),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath turns "courseInput.Modules[0].Title" into "modules[0].title".
func fieldPath(ns string) string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = lowerFirst(p)
	}
	return strings.Join(parts, ".")
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, fe.Param())
	case "courselevel":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(models.CourseLevels, ", "))
	case "resourcetype":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(models.ResourceTypes, ", "))
	case "approvalstatus":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(models.ApprovalStatuses, ", "))
	case "uploadkind":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(models.UploadKinds, ", "))
	case "url", "http_url":
		return label + " must be a valid URL."
	case "email":
		return label + " must be a valid email address."
	default:
		return label + " is invalid."
	}
}

// IsValidCourseLevel reports whether s is an allowed course level.
func IsValidCourseLevel(s string) bool { return models.IsOneOf(s, models.CourseLevels) }

// IsValidResourceType reports whether s is an allowed resource type.
func IsValidResourceType(s string) bool { return models.IsOneOf(s, models.ResourceTypes) }

// IsValidApprovalStatus reports whether s is an allowed approval status.
func IsValidApprovalStatus(s string) bool { return models.IsOneOf(s, models.ApprovalStatuses) }
