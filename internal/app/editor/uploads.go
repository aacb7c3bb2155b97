// internal/app/editor/uploads.go
package editor

import (
	"context"
	"io"

	"github.com/dalemusser/learnhub/internal/app/client"
	"github.com/dalemusser/learnhub/internal/domain/models"
)

// VideoUploader stores a lesson video and returns an opaque video id.
// Transcoding and playback happen elsewhere.
type VideoUploader interface {
	UploadVideo(ctx context.Context, filename string, r io.Reader) (string, error)
}

// FileUploader stores a file of the given kind ("thumbnail" or
// "resource") and returns its URL. previousURL, when set, names the file
// being replaced so the store can clean it up.
type FileUploader interface {
	Upload(ctx context.Context, kind, filename string, r io.Reader, previousURL string) (string, error)
}

var _ FileUploader = (*client.Client)(nil)

// AttachLessonVideo uploads a video and stores its id on the lesson. The
// upload runs without holding the editor, so edits (including removal of
// other lessons) may happen meanwhile; the result lands on lessonKey.
func (e *Editor) AttachLessonVideo(ctx context.Context, up VideoUploader, lessonKey, filename string, r io.Reader) (string, error) {
	id, err := up.UploadVideo(ctx, filename, r)
	if err != nil {
		return "", err
	}
	return id, e.SetLessonVideo(lessonKey, id)
}

// AttachResourceFile uploads a file for a resource and stores its URL. The
// resource's current URL, if any, is passed as the file to replace.
func (e *Editor) AttachResourceFile(ctx context.Context, up FileUploader, resourceKey, filename string, r io.Reader) (string, error) {
	e.mu.Lock()
	mi, li, ri, err := e.findResource(resourceKey)
	var prev string
	if err == nil {
		prev = e.modules[mi].lessons[li].resources[ri].res.URL
	}
	e.mu.Unlock()
	if err != nil {
		return "", err
	}

	url, err := up.Upload(ctx, models.UploadKindResource, filename, r, prev)
	if err != nil {
		return "", err
	}
	return url, e.SetResourceURL(resourceKey, url)
}

// AttachThumbnail uploads the course thumbnail, replacing the current one.
func (e *Editor) AttachThumbnail(ctx context.Context, up FileUploader, filename string, r io.Reader) (string, error) {
	e.mu.Lock()
	prev := e.meta.Thumbnail
	e.mu.Unlock()

	url, err := up.Upload(ctx, models.UploadKindThumbnail, filename, r, prev)
	if err != nil {
		return "", err
	}
	return url, e.SetThumbnail(url)
}
