// internal/app/features/uploads/handler.go
package uploads

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/auditlog"
	"github.com/dalemusser/learnhub/internal/app/system/authz"
	"github.com/dalemusser/learnhub/internal/app/system/filestore"
	"github.com/dalemusser/learnhub/internal/app/system/httpjson"
	"github.com/dalemusser/learnhub/internal/app/system/inputval"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes = 50 << 20

// multipart overhead allowed on top of the file itself
const formOverhead = 1 << 20

// Handler stores thumbnails and lesson resources and returns their URLs.
type Handler struct {
	Files    filestore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
	MaxBytes int64
	now      func() time.Time
}

// NewHandler constructs an upload Handler. maxBytes <= 0 uses DefaultMaxBytes.
func NewHandler(files filestore.Store, audit *auditlog.Logger, maxBytes int64, logger *zap.Logger) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Handler{
		Files:    files,
		Audit:    audit,
		Log:      logger,
		MaxBytes: maxBytes,
		now:      time.Now,
	}
}

type uploadForm struct {
	Type string `validate:"required,uploadkind" label:"Type"`
}

type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}

var thumbnailTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// HandleUpload handles POST /uploads.
//
// Multipart fields: file, type (thumbnail|resource), and an optional
// previousUrl. When previousUrl points at an object the caller uploaded
// earlier, it is removed after the new one is saved. A failed cleanup is
// only logged.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !authz.CanAuthor(r) {
		httpjson.WriteError(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes+formOverhead)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.reject(w, r, "", http.StatusRequestEntityTooLarge, "The file is too large.")
			return
		}
		h.reject(w, r, "", http.StatusBadRequest, "Invalid upload form.")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	form := uploadForm{Type: strings.TrimSpace(r.FormValue("type"))}
	if res := inputval.Validate(form); res.HasErrors() {
		h.reject(w, r, form.Type, http.StatusBadRequest, res.First())
		return
	}

	file, hdr, err := r.FormFile("file")
	if err != nil {
		h.reject(w, r, form.Type, http.StatusBadRequest, "Please choose a file to upload.")
		return
	}
	defer file.Close()

	if hdr.Size > h.MaxBytes {
		h.reject(w, r, form.Type, http.StatusRequestEntityTooLarge, "The file is too large.")
		return
	}

	contentType, err := detectContentType(file, hdr.Filename)
	if err != nil {
		h.reject(w, r, form.Type, http.StatusBadRequest, "Could not read the uploaded file.")
		return
	}
	if form.Type == models.UploadKindThumbnail && !models.IsOneOf(contentType, thumbnailTypes) {
		h.reject(w, r, form.Type, http.StatusBadRequest, "Thumbnails must be PNG, JPEG, WebP, or GIF images.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upload(), h.Log, "store upload")
	defer cancel()

	_, _, uploader, _ := authz.UserCtx(r)
	key := filestore.NewKey(form.Type, uploader, hdr.Filename, h.now())
	url, err := h.Files.Put(ctx, key, file, contentType)
	if err != nil {
		h.Log.Error("upload store failed", zap.String("key", key), zap.Error(err))
		h.Audit.FileUploadFailed(r.Context(), r, form.Type, "store error")
		httpjson.WriteError(w, http.StatusInternalServerError, "Upload failed. Please try again.")
		return
	}

	if prev := strings.TrimSpace(r.FormValue("previousUrl")); prev != "" && prev != url {
		h.removePrevious(ctx, r, prev)
	}

	h.Log.Info("file uploaded",
		zap.String("kind", form.Type),
		zap.String("key", key),
		zap.Int64("size", hdr.Size))
	h.Audit.FileUploaded(r.Context(), r, form.Type, url, hdr.Size)

	httpjson.WriteJSON(w, http.StatusCreated, uploadResponse{Success: true, URL: url})
}

// removePrevious deletes the object behind prev when it lives in this store
// and was uploaded by the caller. Admins may remove any stored object.
func (h *Handler) removePrevious(ctx context.Context, r *http.Request, prev string) {
	oldKey, ok := h.Files.KeyFromURL(prev)
	if !ok {
		return
	}
	if !authz.IsAdmin(r) {
		_, _, caller, _ := authz.UserCtx(r)
		owner, ok := filestore.KeyOwner(oldKey)
		if !ok || owner != caller {
			h.Log.Warn("previous upload not owned by caller; kept",
				zap.String("key", oldKey),
				zap.String("caller", caller.Hex()))
			return
		}
	}
	if err := h.Files.Delete(ctx, oldKey); err != nil {
		h.Log.Warn("previous upload cleanup failed", zap.String("key", oldKey), zap.Error(err))
	}
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, kind string, status int, msg string) {
	h.Audit.FileUploadFailed(r.Context(), r, kind, msg)
	httpjson.WriteError(w, status, msg)
}

// detectContentType prefers the extension and falls back to sniffing the
// first 512 bytes. The reader is rewound afterwards.
func detectContentType(f io.ReadSeeker, name string) (string, error) {
	if ct := filestore.ContentTypeForName(name); ct != "" {
		return ct, nil
	}
	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
