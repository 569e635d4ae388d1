package corpus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// testConfig returns a Config pointed at a temp data root with fast retries.
func testConfig(t *testing.T) Config {
	t.Helper()
	config := DefaultConfig()
	config.DataRoot = t.TempDir()
	config.RetryDelay = 10 * time.Millisecond
	config.Timeout = 5 * time.Second
	return config
}

func TestFetchDownloadsCorpus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<Statute/>"))
	}))
	defer server.Close()

	fetcher, err := NewFetcher(testConfig(t))
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	corpus := Corpus{Name: "statutes/federal", URL: server.URL + "/C-44-CBCA.xml"}
	result, err := fetcher.Fetch(context.Background(), corpus)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if result.Skipped {
		t.Error("expected a fresh download, not a skip")
	}
	if result.Attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", result.Attempts)
	}
	if filepath.Base(result.LocalPath) != "C-44-CBCA.xml" {
		t.Errorf("unexpected local filename: %s", result.LocalPath)
	}

	data, err := os.ReadFile(result.LocalPath)
	if err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if string(data) != "<Statute/>" {
		t.Errorf("unexpected file contents: %q", data)
	}
}

func TestFetchSkipsMaterializedFile(t *testing.T) {
	requests := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte("fresh"))
	}))
	defer server.Close()

	config := testConfig(t)
	fetcher, err := NewFetcher(config)
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	corpus := Corpus{Name: "scc", URL: server.URL + "/cases.parquet"}
	localPath := fetcher.LocalPath(corpus)
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		t.Fatalf("failed to create corpus dir: %v", err)
	}
	if err := os.WriteFile(localPath, []byte("already here"), 0o644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	result, err := fetcher.Fetch(context.Background(), corpus)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !result.Skipped {
		t.Error("expected fetch to be skipped for materialized file")
	}
	if atomic.LoadInt32(&requests) != 0 {
		t.Errorf("expected no HTTP requests, got %d", requests)
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	attempts := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("eventually"))
	}))
	defer server.Close()

	fetcher, err := NewFetcher(testConfig(t))
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	result, err := fetcher.Fetch(context.Background(), Corpus{Name: "flaky", URL: server.URL + "/data.xml"})
	if err != nil {
		t.Fatalf("expected fetch to succeed after retries: %v", err)
	}
	if result.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", result.Attempts)
	}
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	attempts := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	config := testConfig(t)
	config.MaxRetries = 2
	fetcher, err := NewFetcher(config)
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	corpus := Corpus{Name: "down", URL: server.URL + "/data.xml"}
	if _, err := fetcher.Fetch(context.Background(), corpus); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", got)
	}

	// No partial file may be left behind.
	if _, err := os.Stat(fetcher.LocalPath(corpus)); !os.IsNotExist(err) {
		t.Error("expected no file after failed fetch")
	}
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	config := testConfig(t)
	config.RetryDelay = 10 * time.Second
	fetcher, err := NewFetcher(config)
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = fetcher.Fetch(ctx, Corpus{Name: "slow", URL: server.URL + "/data.xml"})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("fetch did not honor cancellation promptly (took %v)", elapsed)
	}
}

func TestFetchUsesDiskCache(t *testing.T) {
	requests := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.Write([]byte("cacheable"))
	}))
	defer server.Close()

	config := testConfig(t)
	config.CacheDir = filepath.Join(t.TempDir(), "cache")
	fetcher, err := NewFetcher(config)
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	corpus := Corpus{Name: "cached", URL: server.URL + "/data.xml"}
	first, err := fetcher.Fetch(context.Background(), corpus)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}

	// Remove the file but keep the cache entry pointing at it: the cache
	// record is then invalid and the corpus must be re-downloaded.
	if err := os.Remove(first.LocalPath); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	if _, err := fetcher.Fetch(context.Background(), corpus); err != nil {
		t.Fatalf("re-fetch failed: %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 2 {
		t.Errorf("expected 2 HTTP requests, got %d", got)
	}
}

func TestFetchAllContinuesPastFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad.xml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	config := testConfig(t)
	config.MaxRetries = 1
	fetcher, err := NewFetcher(config)
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	corpora := []Corpus{
		{Name: "good-one", URL: server.URL + "/one.xml"},
		{Name: "bad", URL: server.URL + "/bad.xml"},
		{Name: "good-two", URL: server.URL + "/two.xml"},
	}
	results, err := fetcher.FetchAll(context.Background(), corpora)
	if err == nil {
		t.Error("expected the bad corpus error to surface")
	}
	if len(results) != 2 {
		t.Errorf("expected 2 successful results, got %d", len(results))
	}
}
