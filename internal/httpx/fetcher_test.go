package httpx_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jobportal/aggregator/internal/httpx"
)

func newTestFetcher() *httpx.Fetcher {
	f := httpx.NewFetcher("aggregator-test/1.0")
	f.SetHostLimit("127.0.0.1", time.Millisecond, 100)
	return f
}

func TestFetchBytes_ReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>hello</html>")
	}))
	defer srv.Close()

	body, status, err := newTestFetcher().FetchBytes(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchBytes returned error: %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(body) != "<html>hello</html>" {
		t.Errorf("body = %q", body)
	}
}

func TestFetchBytes_NotFoundIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, _, err := newTestFetcher().FetchBytes(context.Background(), srv.URL+"/missing")
	if err == nil {
		t.Fatal("expected error on 404")
	}
	var fe *httpx.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error %v is not a FetchError", err)
	}
	if fe.Status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", fe.Status)
	}
}

func TestFetchBytes_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "recovered")
	}))
	defer srv.Close()

	body, _, err := newTestFetcher().FetchBytes(context.Background(), srv.URL+"/page")
	if err != nil {
		t.Fatalf("FetchBytes returned error after retries: %v", err)
	}
	if string(body) != "recovered" {
		t.Errorf("body = %q, want recovered", body)
	}
	if calls.Load() != 3 {
		t.Errorf("server saw %d attempts, want 3", calls.Load())
	}
}

func TestFetchBytes_HonorsRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		fmt.Fprint(w, "content")
	}))
	defer srv.Close()

	f := newTestFetcher()
	if _, _, err := f.FetchBytes(context.Background(), srv.URL+"/private/page"); err == nil {
		t.Fatal("expected robots.txt block")
	} else if !strings.Contains(err.Error(), "robots") {
		t.Errorf("error = %v, want robots.txt mention", err)
	}

	if _, _, err := f.FetchBytes(context.Background(), srv.URL+"/public"); err != nil {
		t.Errorf("allowed path blocked: %v", err)
	}
}

func TestFetchBytes_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "late")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := newTestFetcher().FetchBytes(ctx, srv.URL); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestFetchBytes_EmptyURL(t *testing.T) {
	if _, _, err := newTestFetcher().FetchBytes(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty url")
	}
}
