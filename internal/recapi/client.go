// Package recapi is a client for the record-to-text cloud API used by
// Recording King. The service converts uploaded audio asynchronously:
// a file is uploaded, a conversion task is enqueued for it, and the
// task's progress endpoint is polled until the transcript is ready.
//
// Every response uses the envelope {code, msg, data} where code 200
// means success. Progress is normalized to [0,1] with 1 meaning the
// transcript is available in the result field.
package recapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/recordingking/rkdiag/internal/apierr"
	"github.com/recordingking/rkdiag/internal/poller"
)

// API endpoint paths.
const (
	pathUploadFile   = "/api/v1/upload-file"
	pathTaskAdd      = "/api/v1/task-add"
	pathTaskProgress = "/api/v1/task-progress"
)

// codeOK is the envelope code for a successful API call.
const codeOK = 200

// defaultRequestTimeout bounds a single HTTP round trip.
const defaultRequestTimeout = 30 * time.Second

// httpDoer abstracts HTTP client operations for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the record-to-text API. The base URL and bearer token
// are fixed at construction; the zero value is not usable.
type Client struct {
	baseURL string
	token   string
	http    httpDoer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing or custom timeouts).
func WithHTTPClient(d httpDoer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// NewClient creates a Client for the given base URL and bearer token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the common response wrapper.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// uploadEntry is one element of the upload-file response data array.
type uploadEntry struct {
	FileID json.Number `json:"file_id"`
}

// taskData is the task-add response data.
type taskData struct {
	TaskID json.Number `json:"task_id"`
}

// progressData is the task-progress response data.
type progressData struct {
	Progress float64 `json:"progress"`
	Result   string  `json:"result"`
	Status   string  `json:"status"`
}

// statusFailed is the explicit failure marker in a progress response.
const statusFailed = "failed"

// contentTypes maps audio file extensions to MIME types for upload.
var contentTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".webm": "audio/webm",
}

// contentTypeFor returns the MIME type for an audio file path.
func contentTypeFor(path string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// UploadFile uploads an audio file and returns the service-assigned
// file ID. Failures wrap apierr.ErrSubmission.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %v: %w", err, apierr.ErrSubmission)
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	// The service expects the array-style field name.
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(
		`form-data; name="file[]"; filename=%q`, filepath.Base(path))}
	header["Content-Type"] = []string{contentTypeFor(path)}
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("read audio file: %v: %w", err, apierr.ErrSubmission)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload form: %w", err)
	}

	env, err := c.post(ctx, pathUploadFile, w.FormDataContentType(), &body, true)
	if err != nil {
		return "", err
	}

	var entries []uploadEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil || len(entries) == 0 {
		return "", fmt.Errorf("upload response missing file_id: %w", apierr.ErrSubmission)
	}
	return entries[0].FileID.String(), nil
}

// CreateTask enqueues a conversion task for an uploaded file and
// returns the pending job. Failures wrap apierr.ErrSubmission.
func (c *Client) CreateTask(ctx context.Context, fileID string) (poller.Job, error) {
	form := url.Values{"file_id": {fileID}}
	env, err := c.post(ctx, pathTaskAdd, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), true)
	if err != nil {
		return poller.Job{}, err
	}

	var data taskData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.TaskID.String() == "" {
		return poller.Job{}, fmt.Errorf("task response missing task_id: %w", apierr.ErrSubmission)
	}
	return poller.Job{ID: data.TaskID.String(), Status: poller.StatusPending}, nil
}

// Submit uploads the audio file and enqueues its conversion task.
// This is the submission half of the poll workflow: it never polls.
func (c *Client) Submit(ctx context.Context, path string) (poller.Job, error) {
	fileID, err := c.UploadFile(ctx, path)
	if err != nil {
		return poller.Job{}, err
	}
	return c.CreateTask(ctx, fileID)
}

// TaskProgress queries the status of a conversion task once. The
// returned update maps progress 1 to StatusComplete and an explicit
// "failed" status to StatusFailed. Errors from this method are
// transient at the poll-loop level.
func (c *Client) TaskProgress(ctx context.Context, taskID string) (poller.Update, error) {
	form := url.Values{"task_id": {taskID}}
	env, err := c.post(ctx, pathTaskProgress, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()), false)
	if err != nil {
		return poller.Update{}, err
	}

	var data progressData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return poller.Update{}, fmt.Errorf("malformed progress response: %w", err)
	}

	update := poller.Update{Progress: data.Progress, Result: data.Result}
	switch {
	case data.Status == statusFailed:
		update.Status = poller.StatusFailed
		update.Detail = env.Msg
	case data.Progress >= 1:
		update.Status = poller.StatusComplete
	default:
		update.Status = poller.StatusPending
	}
	return update, nil
}

// post sends a request and decodes the response envelope. When submit
// is true, transport and HTTP-level failures wrap apierr.ErrSubmission;
// otherwise they are returned as plain errors for the poll loop to
// treat as transient.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, submit bool) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return envelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		if submit {
			return envelope{}, fmt.Errorf("%v: %w", err, apierr.ErrSubmission)
		}
		return envelope{}, fmt.Errorf("status query: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := classifyHTTP(resp.StatusCode, submit); err != nil {
		return envelope{}, err
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if submit {
			return envelope{}, fmt.Errorf("malformed response: %v: %w", err, apierr.ErrSubmission)
		}
		return envelope{}, fmt.Errorf("malformed response: %w", err)
	}
	if env.Code != codeOK {
		if submit {
			return envelope{}, fmt.Errorf("service code %d: %s: %w", env.Code, env.Msg, apierr.ErrSubmission)
		}
		return envelope{}, fmt.Errorf("service code %d: %s", env.Code, env.Msg)
	}
	return env, nil
}

// classifyHTTP maps HTTP status codes to sentinel errors.
func classifyHTTP(status int, submit bool) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return fmt.Errorf("HTTP %d: %w", status, apierr.ErrAuthFailed)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("HTTP %d: %w", status, apierr.ErrRateLimit)
	case status >= 400 && status < 500:
		if submit {
			return fmt.Errorf("HTTP %d: %w", status, apierr.ErrSubmission)
		}
		return fmt.Errorf("HTTP %d: %w", status, apierr.ErrBadRequest)
	default:
		if submit {
			return fmt.Errorf("HTTP %d: %w", status, apierr.ErrSubmission)
		}
		return fmt.Errorf("HTTP %d", status)
	}
}
