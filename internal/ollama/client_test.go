package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTagsServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/version":
			w.Write([]byte(`{"version":"0.5.0"}`))
		case "/api/tags":
			w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionProbe(t *testing.T) {
	srv := newTagsServer(t, `{"models":[]}`)
	c := NewClient(srv.URL, zerolog.Nop())
	if err := c.Version(context.Background()); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !c.Ready(context.Background()) {
		t.Fatalf("ready must be true")
	}
}

func TestVersionProbeDown(t *testing.T) {
	srv := newTagsServer(t, `{}`)
	url := srv.URL
	srv.Close()
	c := NewClient(url, zerolog.Nop())
	if err := c.Version(context.Background()); err == nil {
		t.Fatalf("expected error against closed server")
	}
}

func TestHasModelSubstring(t *testing.T) {
	srv := newTagsServer(t, `{"models":[{"name":"llama3.1:latest"},{"name":"nomic-embed-text:latest"}]}`)
	c := NewClient(srv.URL, zerolog.Nop())
	ok, err := c.HasModel(context.Background(), "llama3.1")
	if err != nil {
		t.Fatalf("has model: %v", err)
	}
	if !ok {
		t.Fatalf("llama3.1 should match llama3.1:latest")
	}
	ok, err = c.HasModel(context.Background(), "mistral")
	if err != nil {
		t.Fatalf("has model: %v", err)
	}
	if ok {
		t.Fatalf("mistral must not match")
	}
}

func TestModelsDecodeError(t *testing.T) {
	srv := newTagsServer(t, `not json`)
	c := NewClient(srv.URL, zerolog.Nop())
	if _, err := c.Models(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestWaitReadyEventualSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"version":"0.5.0"}`))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, zerolog.Nop())
	if err := c.WaitReady(context.Background(), 5*time.Second); err != nil {
		t.Fatalf("wait ready: %v", err)
	}
}

func TestWaitReadyTimeout(t *testing.T) {
	srv := newTagsServer(t, `{}`)
	url := srv.URL
	srv.Close()
	c := NewClient(url, zerolog.Nop())
	start := time.Now()
	err := c.WaitReady(context.Background(), 1500*time.Millisecond)
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("poll ran far past its timeout")
	}
}
