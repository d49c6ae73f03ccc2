package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scribe/internal/services"
)

// File states reported by the upload API.
const (
	FileStateProcessing = "PROCESSING"
	FileStateActive     = "ACTIVE"
	FileStateFailed     = "FAILED"
)

// FileRef identifies uploaded content on the service side.
type FileRef struct {
	Name string
	URI  string
}

// UploadFile pushes the media bytes through the raw upload endpoint and
// waits until the service reports the file as active. The returned
// reference is valid for file-backed generation calls.
func (c *Client) UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (FileRef, error) {
	var empty FileRef
	if err := c.checkReady(); err != nil {
		return empty, err
	}
	if len(data) == 0 {
		return empty, services.Wrap(services.ErrValidation, "gemini", "upload", "content is empty", nil)
	}

	ref, err := c.startUpload(ctx, data, mimeType, displayName)
	if err != nil {
		return empty, err
	}
	if err := c.awaitActive(ctx, ref.Name); err != nil {
		return empty, err
	}
	return ref, nil
}

func (c *Client) startUpload(ctx context.Context, data []byte, mimeType, displayName string) (FileRef, error) {
	var empty FileRef
	endpoint := c.cfg.BaseURL + "/upload/v1beta/files"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return empty, services.Wrap(services.ErrFatal, "gemini", "upload", "new request", err)
	}
	req.Header.Set("X-Goog-Api-Key", c.cfg.APIKey)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.Itoa(len(data)))
	req.Header.Set("Content-Type", mimeType)
	if name := strings.TrimSpace(displayName); name != "" {
		req.Header.Set("X-Goog-File-Name", name)
	}

	body, err := c.do(req)
	if err != nil {
		return empty, err
	}

	var parsed struct {
		File fileMetadata `json:"file"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return empty, services.Wrap(services.ErrFatal, "gemini", "upload", "decode response", err)
	}
	if parsed.File.Name == "" {
		return empty, services.Wrap(services.ErrFatal, "gemini", "upload", "response missing file name", nil)
	}
	if parsed.File.State == FileStateFailed {
		return empty, services.Wrap(services.ErrFatal, "gemini", "upload", "file processing failed", nil)
	}
	return FileRef{Name: parsed.File.Name, URI: parsed.File.URI}, nil
}

// awaitActive polls the file resource until it leaves the processing
// state or the configured wait budget is exhausted.
func (c *Client) awaitActive(ctx context.Context, name string) error {
	deadline := time.Now().Add(c.pollWait)
	elapsed := time.Duration(0)
	for {
		meta, err := c.fileState(ctx, name)
		if err != nil {
			return err
		}
		switch meta.State {
		case FileStateActive:
			return nil
		case FileStateFailed:
			return services.Wrap(services.ErrFatal, "gemini", "upload",
				fmt.Sprintf("file %s failed server-side processing", name), nil)
		}
		if c.sleeper != nil {
			elapsed += c.pollInterval
			if elapsed > c.pollWait {
				return c.pollExhausted(name)
			}
			c.sleeper(c.pollInterval)
		} else {
			if time.Now().After(deadline) {
				return c.pollExhausted(name)
			}
			timer := time.NewTimer(c.pollInterval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return classifyTransport(ctx.Err())
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			return classifyTransport(ctx.Err())
		}
	}
}

func (c *Client) pollExhausted(name string) error {
	return services.Wrap(services.ErrTimeout, "gemini", "upload",
		fmt.Sprintf("file %s not active after %s", name, c.pollWait), nil)
}

func (c *Client) fileState(ctx context.Context, name string) (fileMetadata, error) {
	var empty fileMetadata
	endpoint := c.cfg.BaseURL + "/v1beta/" + strings.TrimPrefix(name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return empty, services.Wrap(services.ErrFatal, "gemini", "upload", "new status request", err)
	}
	req.Header.Set("X-Goog-Api-Key", c.cfg.APIKey)

	body, err := c.do(req)
	if err != nil {
		return empty, err
	}
	var parsed fileMetadata
	if err := json.Unmarshal(body, &parsed); err != nil {
		return empty, services.Wrap(services.ErrFatal, "gemini", "upload", "decode status response", err)
	}
	return parsed, nil
}

type fileMetadata struct {
	Name  string `json:"name"`
	URI   string `json:"uri"`
	State string `json:"state"`
}
