package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"scribe/internal/services"
)

func uploadServer(t *testing.T, states []string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/upload/v1beta/files":
			if got := r.Header.Get("X-Goog-Upload-Protocol"); got != "raw" {
				t.Errorf("upload protocol = %q", got)
			}
			w.Write([]byte(`{"file":{"name":"files/abc","uri":"https://files/abc","state":"PROCESSING"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v1beta/files/abc":
			idx := int(polls.Add(1)) - 1
			if idx >= len(states) {
				idx = len(states) - 1
			}
			w.Write([]byte(`{"name":"files/abc","uri":"https://files/abc","state":"` + states[idx] + `"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	return server, &polls
}

func TestUploadFileWaitsForActive(t *testing.T) {
	server, polls := uploadServer(t, []string{"PROCESSING", "PROCESSING", "ACTIVE"})
	defer server.Close()

	var slept []time.Duration
	cfg := testConfig(server.URL)
	cfg.UploadPollSeconds = 1
	cfg.UploadWaitSeconds = 60
	client := NewClient(cfg, WithSleeper(func(d time.Duration) { slept = append(slept, d) }))

	ref, err := client.UploadFile(context.Background(), []byte("audio"), "audio/mpeg", "segment_001.mp3")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if ref.Name != "files/abc" || ref.URI != "https://files/abc" {
		t.Fatalf("ref = %+v", ref)
	}
	if got := polls.Load(); got != 3 {
		t.Fatalf("polls = %d", got)
	}
	if len(slept) != 2 {
		t.Fatalf("sleeps = %v", slept)
	}
	for _, d := range slept {
		if d != time.Second {
			t.Fatalf("poll interval = %v", d)
		}
	}
}

func TestUploadFileFailedState(t *testing.T) {
	server, _ := uploadServer(t, []string{"FAILED"})
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(func(time.Duration) {}))
	_, err := client.UploadFile(context.Background(), []byte("audio"), "audio/mpeg", "x")
	if !errors.Is(err, services.ErrFatal) {
		t.Fatalf("want fatal, got %v", err)
	}
}

func TestUploadFileWaitExhausted(t *testing.T) {
	server, _ := uploadServer(t, []string{"PROCESSING"})
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.UploadPollSeconds = 1
	cfg.UploadWaitSeconds = 3
	client := NewClient(cfg, WithSleeper(func(time.Duration) {}))

	_, err := client.UploadFile(context.Background(), []byte("audio"), "audio/mpeg", "x")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("want timeout, got %v", err)
	}
}

func TestUploadFileEmptyContent(t *testing.T) {
	client := NewClient(testConfig("http://unused"))
	_, err := client.UploadFile(context.Background(), nil, "audio/mpeg", "x")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}
