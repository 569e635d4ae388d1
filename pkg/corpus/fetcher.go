package corpus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Fetcher downloads named corpora to the local data root with bounded
// retries and a fixed backoff delay between attempts.
type Fetcher struct {
	config     Config
	httpClient *http.Client
	cache      *DiskCache
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher with the given config, initializing the data
// root directory and, when configured, the fetch-result disk cache.
func NewFetcher(config Config) (*Fetcher, error) {
	if err := os.MkdirAll(config.DataRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data root %s: %w", config.DataRoot, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}

	var cache *DiskCache
	if config.CacheDir != "" {
		var err error
		cache, err = NewDiskCache(config.CacheDir, DefaultCacheTTL)
		if err != nil {
			return nil, err
		}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Fetcher{
		config:     config,
		httpClient: httpClient,
		cache:      cache,
		logger:     logger,
	}, nil
}

// LocalPath returns the path where the corpus file is (or will be)
// materialized: {DataRoot}/{corpus.Name}/{filename}.
func (fetcher *Fetcher) LocalPath(corpus Corpus) string {
	filename := corpus.Filename
	if filename == "" {
		filename = path.Base(corpus.URL)
	}
	return filepath.Join(fetcher.config.DataRoot, filepath.FromSlash(corpus.Name), filename)
}

// Fetch downloads a corpus to its local path. The download is skipped when
// the file already exists with non-zero size, or when a fresh cached result
// records a successful fetch of the same URL. Transient failures are retried
// up to MaxRetries times with a fixed RetryDelay in between; the context is
// honored both during requests and between attempts.
func (fetcher *Fetcher) Fetch(ctx context.Context, corpus Corpus) (*FetchResult, error) {
	localPath := fetcher.LocalPath(corpus)

	if info, err := os.Stat(localPath); err == nil && info.Size() > 0 {
		fetcher.logger.Info("corpus already materialized",
			"corpus", corpus.Name, "path", localPath, "bytes", info.Size())
		return &FetchResult{
			Corpus:    corpus,
			LocalPath: localPath,
			Skipped:   true,
			FetchedAt: time.Now(),
		}, nil
	}

	if fetcher.cache != nil {
		if cached, found := fetcher.cache.Get(corpus.URL); found {
			if _, err := os.Stat(cached.LocalPath); err == nil {
				fetcher.logger.Info("corpus fetch served from cache",
					"corpus", corpus.Name, "path", cached.LocalPath)
				cached.Skipped = true
				return &cached, nil
			}
			// Cached record points at a file that no longer exists.
			fetcher.cache.Invalidate(corpus.URL)
		}
	}

	if _, err := url.ParseRequestURI(corpus.URL); err != nil {
		return nil, fmt.Errorf("invalid corpus URL %q: %w", corpus.URL, err)
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create corpus directory for %s: %w", corpus.Name, err)
	}

	maxRetries := fetcher.config.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			fetcher.logger.Warn("retrying corpus download",
				"corpus", corpus.Name, "attempt", attempt, "delay", fetcher.config.RetryDelay)
			select {
			case <-time.After(fetcher.config.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		bytesWritten, err := fetcher.fetchAttempt(ctx, corpus.URL, localPath)
		if err == nil {
			result := FetchResult{
				Corpus:       corpus,
				LocalPath:    localPath,
				BytesWritten: bytesWritten,
				Attempts:     attempt,
				FetchedAt:    time.Now(),
			}
			fetcher.logger.Info("corpus downloaded",
				"corpus", corpus.Name, "path", localPath, "bytes", bytesWritten, "attempts", attempt)
			if fetcher.cache != nil {
				if cacheErr := fetcher.cache.Set(corpus.URL, result); cacheErr != nil {
					fetcher.logger.Warn("failed to cache fetch result", "error", cacheErr)
				}
			}
			return &result, nil
		}

		lastErr = err
		fetcher.logger.Warn("corpus download attempt failed",
			"corpus", corpus.Name, "attempt", attempt, "error", err)

		// Clean up any partial file before the next attempt.
		os.Remove(localPath)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed to fetch corpus %s after %d attempts: %w",
		corpus.Name, maxRetries, lastErr)
}

// fetchAttempt performs a single download attempt, writing to a temporary
// file that is renamed into place only on success.
func (fetcher *Fetcher) fetchAttempt(ctx context.Context, downloadURL string, localPath string) (int64, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("User-Agent", fetcher.config.UserAgent)

	response, err := fetcher.httpClient.Do(request)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", downloadURL, err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return 0, fmt.Errorf("HTTP %d for %s", response.StatusCode, downloadURL)
	}

	temporaryPath := localPath + ".partial"
	outputFile, err := os.Create(temporaryPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", temporaryPath, err)
	}

	bytesWritten, err := io.Copy(outputFile, response.Body)
	closeErr := outputFile.Close()
	if err != nil {
		os.Remove(temporaryPath)
		return 0, fmt.Errorf("failed to write %s: %w", temporaryPath, err)
	}
	if closeErr != nil {
		os.Remove(temporaryPath)
		return 0, fmt.Errorf("failed to close %s: %w", temporaryPath, closeErr)
	}

	if err := os.Rename(temporaryPath, localPath); err != nil {
		os.Remove(temporaryPath)
		return 0, fmt.Errorf("failed to move %s into place: %w", temporaryPath, err)
	}
	return bytesWritten, nil
}

// FetchAll fetches each corpus in turn, collecting per-corpus results.
// A failed corpus does not stop the remaining ones; the first error is
// returned alongside whatever succeeded.
func (fetcher *Fetcher) FetchAll(ctx context.Context, corpora []Corpus) ([]*FetchResult, error) {
	var results []*FetchResult
	var firstErr error
	for _, corpus := range corpora {
		result, err := fetcher.Fetch(ctx, corpus)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}
		results = append(results, result)
	}
	return results, firstErr
}
