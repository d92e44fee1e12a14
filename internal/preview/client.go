package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 4 << 10

// defaultTimeout bounds one upload unless WithTimeout says otherwise.
const defaultTimeout = 2 * time.Minute

// UploadResult is the server's answer to a successful import.
type UploadResult struct {
	Message  string `json:"message"`
	Inserted int    `json:"inserted"`
}

// Client sends raw spreadsheet files to the import endpoint.
type Client struct {
	uploadURL string
	apiKey    string
	timeout   time.Duration
	http      *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithAPIKey sends key in the X-API-Key header.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout bounds each upload, response included. Zero disables the
// bound. The http.Client itself is never modified.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

// NewClient targets baseURL + "upload".
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse API URL: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("API URL %q is not absolute", baseURL)
	}

	c := &Client{
		uploadURL: u.JoinPath("upload").String(),
		timeout:   defaultTimeout,
		http:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// UploadURL returns the endpoint the client posts to.
func (c *Client) UploadURL() string { return c.uploadURL }

// Upload posts data as multipart field "file". Every failure is returned
// as a *TransportError.
func (c *Client) Upload(ctx context.Context, fileName string, data []byte) (*UploadResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, c.transportErr(0, "", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, c.transportErr(0, "", err)
	}
	if err := mw.Close(); err != nil {
		return nil, c.transportErr(0, "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return nil, c.transportErr(0, "", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportErr(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, c.transportErr(resp.StatusCode, strings.TrimSpace(string(msg)), nil)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, c.transportErr(resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return &result, nil
}

func (c *Client) transportErr(status int, body string, err error) error {
	return &TransportError{URL: c.uploadURL, StatusCode: status, Body: body, Err: err}
}
