// Package corpus acquires raw legal corpora (statute XML, case-law datasets)
// from remote services ahead of parsing: bounded retries with a fixed backoff
// delay, a per-corpus directory layout under a local data root, and a disk
// cache of fetch outcomes. The statute parser itself never touches the
// network; it assumes the input file is already materialized on disk.
package corpus

import (
	"log/slog"
	"net/http"
	"time"
)

// DefaultDataRoot is the default root directory for downloaded corpora.
const DefaultDataRoot = ".statutree/corpora"

// DefaultMaxRetries is the default number of download attempts per corpus.
const DefaultMaxRetries = 3

// DefaultRetryDelay is the default fixed delay between attempts.
const DefaultRetryDelay = 10 * time.Second

// DefaultTimeout is the default per-request HTTP timeout.
const DefaultTimeout = 5 * time.Minute

// DefaultUserAgent is the default User-Agent header sent with requests.
const DefaultUserAgent = "statutree-corpus/1.0"

// DefaultCacheTTL is the default time-to-live for cached fetch results.
const DefaultCacheTTL = 24 * time.Hour

// Config holds configuration for the corpus fetcher.
type Config struct {
	// DataRoot is the root directory; each corpus is stored in its own
	// subdirectory beneath it.
	DataRoot string

	// MaxRetries is the maximum number of download attempts.
	MaxRetries int

	// RetryDelay is the fixed delay between attempts (no exponential
	// growth; the upstream dataset service throttles rather than degrades).
	RetryDelay time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// HTTPClient allows injection of a custom HTTP client (for testing).
	// If nil, a client with the configured timeout is used.
	HTTPClient *http.Client

	// CacheDir enables disk caching of fetch results when non-empty.
	CacheDir string

	// Logger receives structured progress and retry diagnostics.
	// If nil, diagnostics are discarded.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataRoot:   DefaultDataRoot,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		Timeout:    DefaultTimeout,
		UserAgent:  DefaultUserAgent,
	}
}

// Corpus identifies a named remote corpus.
type Corpus struct {
	// Name is the corpus identifier, used as its directory name ("scc",
	// "statutes/federal").
	Name string `json:"name"`

	// URL is the download URL for the corpus file.
	URL string `json:"url"`

	// Filename is the local file name within the corpus directory. If
	// empty, the last path segment of the URL is used.
	Filename string `json:"filename"`
}

// FetchResult captures the outcome of fetching a single corpus.
type FetchResult struct {
	Corpus       Corpus    `json:"corpus"`
	LocalPath    string    `json:"local_path"`
	BytesWritten int64     `json:"bytes_written"`
	Skipped      bool      `json:"skipped"`
	Attempts     int       `json:"attempts"`
	FetchedAt    time.Time `json:"fetched_at"`
}
