package recapi_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/recordingking/rkdiag/internal/apierr"
	"github.com/recordingking/rkdiag/internal/poller"
	"github.com/recordingking/rkdiag/internal/recapi"
)

// Notes:
// - Tests run against httptest servers speaking the {code,msg,data} envelope.
// - Auth header and multipart field naming are asserted on the server side
//   because the real service rejects requests silently otherwise.

const testToken = "test-token"

// writeTestAudio creates a small fake WAV file and returns its path.
func writeTestAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "probe.wav")
	if err := os.WriteFile(path, []byte("RIFFxxxxWAVEfmt "), 0o644); err != nil {
		t.Fatalf("write test audio: %v", err)
	}
	return path
}

func TestUploadFile_Success(t *testing.T) {
	t.Parallel()

	var gotAuth, gotField string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		for field := range r.MultipartForm.File {
			gotField = field
		}
		fmt.Fprint(w, `{"code":200,"msg":"success","data":[{"file_id":1234}]}`)
	}))
	defer srv.Close()

	c := recapi.NewClient(srv.URL, testToken)
	fileID, err := c.UploadFile(context.Background(), writeTestAudio(t))
	if err != nil {
		t.Fatalf("UploadFile() unexpected error: %v", err)
	}
	if fileID != "1234" {
		t.Errorf("UploadFile() = %q, want %q", fileID, "1234")
	}
	if gotAuth != "Bearer "+testToken {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer "+testToken)
	}
	if gotField != "file[]" {
		t.Errorf("multipart field = %q, want %q", gotField, "file[]")
	}
}

func TestUploadFile_MissingFile(t *testing.T) {
	t.Parallel()

	c := recapi.NewClient("http://127.0.0.1:0", testToken)
	_, err := c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "nope.wav"))
	if !errors.Is(err, apierr.ErrSubmission) {
		t.Errorf("UploadFile() error = %v, want wrapping %v", err, apierr.ErrSubmission)
	}
}

func TestCreateTask_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("file_id"); got != "1234" {
			t.Errorf("file_id = %q, want %q", got, "1234")
		}
		fmt.Fprint(w, `{"code":200,"msg":"success","data":{"task_id":567}}`)
	}))
	defer srv.Close()

	c := recapi.NewClient(srv.URL, testToken)
	job, err := c.CreateTask(context.Background(), "1234")
	if err != nil {
		t.Fatalf("CreateTask() unexpected error: %v", err)
	}
	if job.ID != "567" {
		t.Errorf("CreateTask() job.ID = %q, want %q", job.ID, "567")
	}
	if job.Status != poller.StatusPending {
		t.Errorf("CreateTask() job.Status = %q, want %q", job.Status, poller.StatusPending)
	}
}

func TestSubmit_RejectedBeforeAnyPoll(t *testing.T) {
	t.Parallel()

	var progressCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "task-progress") {
			progressCalls++
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"code":422,"msg":"unsupported format"}`)
	}))
	defer srv.Close()

	c := recapi.NewClient(srv.URL, testToken)
	_, err := c.Submit(context.Background(), writeTestAudio(t))
	if !errors.Is(err, apierr.ErrSubmission) {
		t.Errorf("Submit() error = %v, want wrapping %v", err, apierr.ErrSubmission)
	}
	if progressCalls != 0 {
		t.Errorf("progress endpoint called %d times during submit, want 0", progressCalls)
	}
}

func TestSubmit_EnvelopeRejection(t *testing.T) {
	t.Parallel()

	// HTTP 200 but envelope code != 200: still a submission error.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":500,"msg":"file too large","data":null}`)
	}))
	defer srv.Close()

	c := recapi.NewClient(srv.URL, testToken)
	_, err := c.Submit(context.Background(), writeTestAudio(t))
	if !errors.Is(err, apierr.ErrSubmission) {
		t.Errorf("Submit() error = %v, want wrapping %v", err, apierr.ErrSubmission)
	}
	if !strings.Contains(err.Error(), "file too large") {
		t.Errorf("Submit() error = %q, want containing service msg", err)
	}
}

func TestTaskProgress_States(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		want    poller.Update
		wantErr bool
	}{
		{
			name: "pending",
			body: `{"code":200,"msg":"success","data":{"progress":0,"result":""}}`,
			want: poller.Update{Status: poller.StatusPending, Progress: 0},
		},
		{
			name: "half way",
			body: `{"code":200,"msg":"success","data":{"progress":0.5,"result":""}}`,
			want: poller.Update{Status: poller.StatusPending, Progress: 0.5},
		},
		{
			name: "complete",
			body: `{"code":200,"msg":"success","data":{"progress":1,"result":"hello world"}}`,
			want: poller.Update{Status: poller.StatusComplete, Progress: 1, Result: "hello world"},
		},
		{
			name: "explicit failure",
			body: `{"code":200,"msg":"decode error","data":{"progress":0,"status":"failed"}}`,
			want: poller.Update{Status: poller.StatusFailed, Detail: "decode error"},
		},
		{
			name:    "envelope code not ok is transient",
			body:    `{"code":503,"msg":"busy","data":null}`,
			wantErr: true,
		},
		{
			name:    "malformed body is transient",
			body:    `{"code":200,"msg":"success","data":"not an object"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := r.ParseForm(); err != nil {
					t.Errorf("ParseForm: %v", err)
				}
				if got := r.PostForm.Get("task_id"); got != "567" {
					t.Errorf("task_id = %q, want %q", got, "567")
				}
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := recapi.NewClient(srv.URL, testToken)
			update, err := c.TaskProgress(context.Background(), "567")

			if tt.wantErr {
				if err == nil {
					t.Fatalf("TaskProgress() expected error, got %+v", update)
				}
				// Transient poll errors must not be submission errors.
				if errors.Is(err, apierr.ErrSubmission) {
					t.Errorf("TaskProgress() error = %v, must not wrap ErrSubmission", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TaskProgress() unexpected error: %v", err)
			}
			if update != tt.want {
				t.Errorf("TaskProgress() = %+v, want %+v", update, tt.want)
			}
		})
	}
}

func TestClassification_AuthAndRateLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, apierr.ErrAuthFailed},
		{"forbidden", http.StatusForbidden, apierr.ErrAuthFailed},
		{"rate limited", http.StatusTooManyRequests, apierr.ErrRateLimit},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := recapi.NewClient(srv.URL, testToken)
			_, err := c.TaskProgress(context.Background(), "567")
			if !errors.Is(err, tt.want) {
				t.Errorf("TaskProgress() error = %v, want wrapping %v", err, tt.want)
			}
		})
	}
}
