package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ErrObjectNotFound is returned by Delete when the object is already gone.
var ErrObjectNotFound = errors.New("gcs: object not found")

const objectCallTimeout = 30 * time.Second

// ObjectKey builds the bucket-relative key for an uploaded file. Keys are
// namespaced by the configured folder and the owning entity so cleanup can
// reason about them later.
func (c *Client) ObjectKey(entity, filename string) string {
	return path.Join(c.folder, entity, filename)
}

// Upload writes data to the default bucket under objectKey using the JSON
// API media upload and returns the object's public URL.
func (c *Client) Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	if c == nil || c.tokenSource == nil {
		return "", errors.New("gcs client not initialized")
	}
	if objectKey == "" {
		return "", errors.New("gcs: object key is required")
	}

	ctx, cancel := context.WithTimeout(ctx, objectCallTimeout)
	defer cancel()

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return "", err
	}

	u := fmt.Sprintf(
		"%s/upload/storage/v1/b/%s/o?uploadType=media&name=%s",
		c.apiBase,
		url.PathEscape(c.defaultBucket),
		url.QueryEscape(objectKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.objectClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return "", fmt.Errorf("gcs upload failed: %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return "", fmt.Errorf("gcs upload failed: %s", resp.Status)
	}

	return c.PublicURL(objectKey), nil
}

// Delete removes objectKey from the default bucket. A missing object is
// reported as ErrObjectNotFound so callers can treat it as already cleaned.
func (c *Client) Delete(ctx context.Context, objectKey string) error {
	if c == nil || c.tokenSource == nil {
		return errors.New("gcs client not initialized")
	}
	if objectKey == "" {
		return errors.New("gcs: object key is required")
	}

	ctx, cancel := context.WithTimeout(ctx, objectCallTimeout)
	defer cancel()

	token, err := c.tokenSource.Token(ctx)
	if err != nil {
		return err
	}

	u := fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s",
		c.apiBase,
		url.PathEscape(c.defaultBucket),
		url.PathEscape(objectKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.objectClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrObjectNotFound
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(b) > 0 {
			return fmt.Errorf("gcs delete failed: %s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return fmt.Errorf("gcs delete failed: %s", resp.Status)
	}
}

// PublicURL returns the canonical public URL for objectKey in the default
// bucket. Stored rows keep this URL; cleanup converts it back with
// ObjectKeyFromURL.
func (c *Client) PublicURL(objectKey string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.defaultBucket, objectKey)
}

// ObjectKeyFromURL extracts the bucket-relative object key from a public
// object URL produced by PublicURL.
func ObjectKeyFromURL(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("gcs: parsing object url: %w", err)
	}
	if parsed.Host != "storage.googleapis.com" {
		return "", fmt.Errorf("gcs: unexpected host %q", parsed.Host)
	}
	trimmed := strings.TrimPrefix(parsed.Path, "/")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("gcs: url %q has no object key", raw)
	}
	return parts[1], nil
}
