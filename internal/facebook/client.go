// Package facebook publishes photos to a Facebook page via the Graph API.
package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// DefaultBaseURL is the Graph API endpoint photos are published against.
const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// DefaultTimeout bounds a single photo upload, matching the generous
// ceiling needed for large images on slow links.
const DefaultTimeout = 300 * time.Second

// ErrMissingCredentials indicates the page ID or access token was not
// configured. Checked before any network activity.
var ErrMissingCredentials = errors.New("facebook credentials missing: set FACEBOOK_PAGE_ID and FACEBOOK_ACCESS_TOKEN")

// APIError is a non-2xx response from the Graph API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("facebook api error: status %d: %s", e.StatusCode, e.Body)
}

// Client publishes photos to a single configured page.
type Client struct {
	baseURL     string
	pageID      string
	accessToken string
	httpClient  *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the Graph API base URL (used by tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithTimeout overrides the upload timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// NewClient creates a publisher for the given page. Credentials may be
// empty at construction time; they are validated on publish so a daemon
// without credentials can still serve its liveness endpoint.
func NewClient(pageID, accessToken string, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		pageID:      pageID,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredentials reports whether both page ID and access token are set.
func (c *Client) HasCredentials() bool {
	return c.pageID != "" && c.accessToken != ""
}

// photoResponse is the subset of the Graph API response we care about.
type photoResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

// PublishPhoto uploads the image at imagePath with the given caption and
// returns the remote post identifier. It fails fast with
// ErrMissingCredentials before touching the network, surfaces non-2xx
// responses as *APIError, and wraps transport failures distinctly.
func (c *Client) PublishPhoto(ctx context.Context, imagePath, caption string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingCredentials
	}

	img, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image %s: %w", imagePath, err)
	}
	defer img.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("caption", caption); err != nil {
		return "", fmt.Errorf("write caption field: %w", err)
	}
	if err := writer.WriteField("access_token", c.accessToken); err != nil {
		return "", fmt.Errorf("write access_token field: %w", err)
	}
	part, err := writer.CreateFormFile("source", imagePath)
	if err != nil {
		return "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := io.Copy(part, img); err != nil {
		return "", fmt.Errorf("read image %s: %w", imagePath, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	url := fmt.Sprintf("%s/%s/photos", c.baseURL, c.pageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish photo: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read publish response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var photo photoResponse
	if err := json.Unmarshal(respBody, &photo); err != nil {
		return "", fmt.Errorf("decode publish response: %w", err)
	}

	// The photos edge returns post_id for feed posts; fall back to the
	// photo object id when it is absent.
	postID := photo.PostID
	if postID == "" {
		postID = photo.ID
	}
	return postID, nil
}
