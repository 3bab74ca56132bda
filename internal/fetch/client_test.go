package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_FetchCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("expected bearer token, got %q", got)
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("type,title\nrecord,hello"))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "sekrit", 1<<20)
	defer c.Close()

	res, err := c.Fetch(context.Background(), srv.URL+"/export")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Filename != "export.csv" {
		t.Errorf("expected filename %q, got %q", "export.csv", res.Filename)
	}
	if string(res.Data) != "type,title\nrecord,hello" {
		t.Errorf("unexpected body: %q", res.Data)
	}
}

func TestClient_FilenameFromURLExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "", 1<<20)
	res, err := c.Fetch(context.Background(), srv.URL+"/data/timeline.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Filename != "timeline.json" {
		t.Errorf("expected filename %q, got %q", "timeline.json", res.Filename)
	}
}

func TestClient_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "", 1<<20)
	_, err := c.Fetch(context.Background(), srv.URL+"/x.csv")
	if err == nil {
		t.Fatal("expected error")
	}
	var re *RetryableError
	if !errors.As(err, &re) {
		t.Errorf("expected retryable error, got %v", err)
	}
}

func TestClient_NotFoundIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "", 1<<20)
	_, err := c.Fetch(context.Background(), srv.URL+"/missing.csv")
	if err == nil {
		t.Fatal("expected error")
	}
	var re *RetryableError
	if errors.As(err, &re) {
		t.Errorf("expected permanent error, got retryable: %v", err)
	}
}

func TestClient_SizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "", 1024)
	if _, err := c.Fetch(context.Background(), srv.URL+"/big.csv"); err == nil {
		t.Fatal("expected size cap error")
	}
}

func TestClient_RejectsNonHTTPScheme(t *testing.T) {
	c := NewClient(5*time.Second, "", 1024)
	if _, err := c.Fetch(context.Background(), "ftp://example.com/x.csv"); err == nil {
		t.Fatal("expected scheme error")
	}
}

func TestClient_UnknownContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("???"))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, "", 1<<20)
	if _, err := c.Fetch(context.Background(), srv.URL+"/blob"); err == nil {
		t.Fatal("expected format inference error")
	}
}
