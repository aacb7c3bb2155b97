// internal/app/client/uploads.go
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Upload sends one file to POST /uploads and returns the stored URL. kind
// is "thumbnail" or "resource"; previousURL, when set, is the file being
// replaced.
func (c *Client) Upload(ctx context.Context, kind, filename string, r io.Reader, previousURL string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("type", kind)
	if previousURL != "" {
		_ = mw.WriteField("previousUrl", previousURL)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("client: build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("client: read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("client: build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/uploads", &buf)
	if err != nil {
		return "", fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out struct {
		URL string `json:"url"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("%w: upload response had no url", ErrServer)
	}
	return out.URL, nil
}
