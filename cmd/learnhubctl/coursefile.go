// cmd/learnhubctl/coursefile.go
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/editor"
	"gopkg.in/yaml.v3"
)

// courseFile is the YAML form of a course accepted by `learnhubctl submit`.
// Resource and thumbnail entries may name a local file; it is uploaded
// before the course is submitted.
type courseFile struct {
	Title            string       `yaml:"title"`
	Description      string       `yaml:"description"`
	Price            float64      `yaml:"price"`
	OriginalPrice    *float64     `yaml:"originalPrice"`
	Category         string       `yaml:"category"`
	Level            string       `yaml:"level"`
	Language         string       `yaml:"language"`
	Thumbnail        string       `yaml:"thumbnail"`
	LearningOutcomes []string     `yaml:"learningOutcomes"`
	Requirements     []string     `yaml:"requirements"`
	Provides         []string     `yaml:"provides"`
	Modules          []moduleFile `yaml:"modules"`
}

type moduleFile struct {
	Title   string       `yaml:"title"`
	Lessons []lessonFile `yaml:"lessons"`
}

type lessonFile struct {
	Title       string         `yaml:"title"`
	VideoID     string         `yaml:"videoId"`
	Duration    float64        `yaml:"duration"`
	Free        bool           `yaml:"free"`
	Description string         `yaml:"description"`
	Resources   []resourceFile `yaml:"resources"`
}

type resourceFile struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	File  string `yaml:"file"`
	Type  string `yaml:"type"`
}

func loadCourseFile(path string) (courseFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return courseFile{}, err
	}
	return parseCourseFile(raw)
}

func parseCourseFile(raw []byte) (courseFile, error) {
	var cf courseFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil {
		return courseFile{}, fmt.Errorf("parse course file: %w", err)
	}
	for mi, m := range cf.Modules {
		for li, l := range m.Lessons {
			for ri, r := range l.Resources {
				if r.URL != "" && r.File != "" {
					return courseFile{}, fmt.Errorf("modules[%d].lessons[%d].resources[%d]: set url or file, not both", mi, li, ri)
				}
			}
		}
	}
	return cf, nil
}

// isLocalFile reports whether ref names a file on disk rather than a URL.
func isLocalFile(ref string) bool {
	return ref != "" && !strings.Contains(ref, "://") && !strings.HasPrefix(ref, "/files/")
}

// apply builds cf into e, replacing whatever curriculum e holds. Local
// files are uploaded through up; relative paths resolve against baseDir.
func (cf courseFile) apply(ctx context.Context, e *editor.Editor, up editor.FileUploader, baseDir string) error {
	for e.Snapshot().ModuleCount() > 0 {
		if err := e.RemoveModule(0); err != nil {
			return err
		}
	}

	thumb := cf.Thumbnail
	if isLocalFile(thumb) {
		thumb = ""
	}
	err := e.SetDetails(func(d *editor.CourseDetails) {
		d.Title = cf.Title
		d.Description = cf.Description
		d.Price = cf.Price
		d.OriginalPrice = cf.OriginalPrice
		d.Category = cf.Category
		if cf.Level != "" {
			d.Level = cf.Level
		}
		d.Language = cf.Language
		d.Thumbnail = thumb
		d.LearningOutcomes = cf.LearningOutcomes
		d.Requirements = cf.Requirements
		d.Provides = cf.Provides
	})
	if err != nil {
		return err
	}
	if isLocalFile(cf.Thumbnail) {
		if err := uploadFile(baseDir, cf.Thumbnail, func(name string, f *os.File) error {
			_, err := e.AttachThumbnail(ctx, up, name, f)
			return err
		}); err != nil {
			return fmt.Errorf("thumbnail: %w", err)
		}
	}

	for mi, m := range cf.Modules {
		mkey, err := e.AddModule()
		if err != nil {
			return err
		}
		if m.Title != "" {
			if err := e.UpdateModuleTitleByKey(mkey, m.Title); err != nil {
				return err
			}
		}
		for li, l := range m.Lessons {
			if err := applyLesson(ctx, e, up, baseDir, mi, l); err != nil {
				return fmt.Errorf("modules[%d].lessons[%d]: %w", mi, li, err)
			}
		}
	}
	return nil
}

func applyLesson(ctx context.Context, e *editor.Editor, up editor.FileUploader, baseDir string, mi int, l lessonFile) error {
	lkey, err := e.AddLesson(mi)
	if err != nil {
		return err
	}
	set := func(field editor.LessonField, v any) error {
		return e.UpdateLessonByKey(lkey, field, v)
	}
	if l.Title != "" {
		if err := set(editor.LessonTitle, l.Title); err != nil {
			return err
		}
	}
	if err := set(editor.LessonVideoID, l.VideoID); err != nil {
		return err
	}
	if err := set(editor.LessonDuration, l.Duration); err != nil {
		return err
	}
	if err := set(editor.LessonIsFree, l.Free); err != nil {
		return err
	}
	if err := set(editor.LessonDescription, l.Description); err != nil {
		return err
	}

	snap := e.Snapshot()
	li := snap.LessonCount(mi) - 1
	for ri, r := range l.Resources {
		rkey, err := e.AddResource(mi, li)
		if err != nil {
			return err
		}
		if err := e.UpdateResourceFieldByKey(rkey, editor.ResourceTitle, r.Title); err != nil {
			return err
		}
		if r.Type != "" {
			if err := e.UpdateResourceFieldByKey(rkey, editor.ResourceType, r.Type); err != nil {
				return fmt.Errorf("resources[%d]: %w", ri, err)
			}
		}
		switch {
		case r.File != "":
			if err := uploadFile(baseDir, r.File, func(name string, f *os.File) error {
				_, err := e.AttachResourceFile(ctx, up, rkey, name, f)
				return err
			}); err != nil {
				return fmt.Errorf("resources[%d]: %w", ri, err)
			}
		case r.URL != "":
			if err := e.UpdateResourceFieldByKey(rkey, editor.ResourceURL, r.URL); err != nil {
				return err
			}
		}
	}
	return nil
}

func uploadFile(baseDir, ref string, fn func(name string, f *os.File) error) error {
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(filepath.Base(path), f)
}
