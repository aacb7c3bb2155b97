// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize cleans instructor-authored rich text (course and
// lesson descriptions) before it is stored.
package htmlsanitize

import (
	"sync"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// ugc returns the shared policy. bluemonday policies are safe for
// concurrent use once built.
func ugc() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("u", "s", "mark", "sub", "sup")
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td", "pre", "code")
		p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		policy = p
	})
	return policy
}

// Sanitize strips scripts, event handlers, iframes, and unsafe URLs from s
// while keeping ordinary formatting.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc().Sanitize(s)
}

// IsPlainText reports whether s contains no markup. A '<' only opens a tag
// when a letter, '/', '!' or '?' follows it, so "x < 10" is plain text.
func IsPlainText(s string) bool {
	for i := 0; i < len(s)-1; i++ {
		if s[i] != '<' {
			continue
		}
		c := s[i+1]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '/' || c == '!' || c == '?' {
			return false
		}
	}
	return true
}

// SanitizeText cleans s only when it holds markup. Plain text is returned
// unchanged so characters like '&' and quotes survive a save.
func SanitizeText(s string) string {
	if IsPlainText(s) {
		return s
	}
	return Sanitize(s)
}

// SanitizeCourse cleans every rich-text field in the course tree in place.
func SanitizeCourse(c *models.Course) {
	c.Description = SanitizeText(c.Description)
	for mi := range c.Modules {
		for li := range c.Modules[mi].Lessons {
			l := &c.Modules[mi].Lessons[li]
			l.Description = SanitizeText(l.Description)
		}
	}
}
