// internal/app/system/filestore/filestore.go

// Package filestore stores uploaded course files (thumbnails and lesson
// resources) in a WAFFLE storage backend and hands back the URL the course
// document records.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidKey is returned for keys that are empty or escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// Uploaded objects never change under a key, so clients may cache forever.
const cacheControl = "public, max-age=31536000, immutable"

// Store is what the upload endpoint needs from file storage.
type Store interface {
	// Put writes r under key and returns the public URL of the object.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Delete removes key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// KeyFromURL returns the key for a URL previously returned by Put, and
	// false when the URL does not belong to this store.
	KeyFromURL(url string) (string, bool)
}

// Files adapts a storage.Store (local disk, GCS, or memory in tests) to Store.
type Files struct {
	backend storage.Store
	prefix  string // URL every object URL starts with, including the trailing slash
}

// New wraps backend. The backend must be configured with a base URL so that
// stored objects have a public address.
func New(backend storage.Store) (*Files, error) {
	if backend == nil {
		return nil, errors.New("filestore: nil storage backend")
	}
	// URL("x") is "<base>/x" for every WAFFLE backend; the rest is the prefix.
	probe := backend.URL("x")
	prefix, ok := strings.CutSuffix(probe, "x")
	if !ok || prefix == "" {
		return nil, fmt.Errorf("filestore: %s backend has no base URL", backend.Backend())
	}
	return &Files{backend: backend, prefix: prefix}, nil
}

// Backend returns the wrapped storage backend.
func (f *Files) Backend() storage.Store { return f.backend }

// Put implements Store.
func (f *Files) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = ContentTypeForName(k)
	}
	opts := &storage.PutOptions{
		ContentType:  contentType,
		CacheControl: cacheControl,
	}
	if err := f.backend.Put(ctx, k, r, opts); err != nil {
		return "", fmt.Errorf("store %s: %w", k, err)
	}
	return f.backend.URL(k), nil
}

// Delete implements Store.
func (f *Files) Delete(ctx context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := f.backend.Delete(ctx, k); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete %s: %w", k, err)
	}
	return nil
}

// KeyFromURL implements Store.
func (f *Files) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, f.prefix)
	if !ok {
		return "", false
	}
	if _, err := cleanKey(key); err != nil {
		return "", false
	}
	return key, true
}

// NewKey builds "<kind>s/<ownerHex>/YYYY/MM/<uuid8>-<name>" for an upload.
// The owner segment is what KeyOwner reads back when a later upload asks to
// replace this object.
func NewKey(kind string, owner primitive.ObjectID, filename string, now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%ss/%s/%04d/%02d/%s-%s",
		kind, owner.Hex(), now.Year(), int(now.Month()), uuid.New().String()[:8], SanitizeFilename(filename))
}

// KeyOwner returns the uploader recorded in a key built by NewKey.
// Keys in any other layout have no owner.
func KeyOwner(key string) (primitive.ObjectID, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 5 {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(parts[1])
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// cleanKey rejects keys that are empty, absolute, or contain "..".
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") || c != key {
		return "", ErrInvalidKey
	}
	if err := storage.ValidatePath(c); err != nil {
		return "", ErrInvalidKey
	}
	return c, nil
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with '_'. Long names are cut to 100 bytes, keeping a short
// extension.
func SanitizeFilename(filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "." || filename == "/" {
		filename = ""
	}

	out := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	s := strings.TrimLeft(string(out), ".")
	if s == "" {
		return "file"
	}
	if len(s) > 100 {
		ext := path.Ext(s)
		if len(ext) > 0 && len(ext) < 10 {
			s = s[:100-len(ext)] + ext
		} else {
			s = s[:100]
		}
	}
	return s
}

// ContentTypeForName guesses a content type from the file extension.
// It returns "" when unknown so the caller can fall back to sniffing.
func ContentTypeForName(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	case ".zip":
		return "application/zip"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".mp4", ".m4v":
		return "video/mp4"
	default:
		return ""
	}
}
