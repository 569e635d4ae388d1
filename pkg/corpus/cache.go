package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskCache provides persistent, file-based caching of corpus fetch results.
// Each entry is a JSON file keyed by the SHA-256 hash of the corpus URL.
type DiskCache struct {
	cacheDir string
	cacheTTL time.Duration
}

// diskCacheEntry wraps a FetchResult with an expiration timestamp.
type diskCacheEntry struct {
	Result    FetchResult `json:"result"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// NewDiskCache creates a disk cache in the given directory with the
// specified TTL, creating the directory if needed.
func NewDiskCache(cacheDir string, cacheTTL time.Duration) (*DiskCache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", cacheDir, err)
	}
	return &DiskCache{cacheDir: cacheDir, cacheTTL: cacheTTL}, nil
}

// Get retrieves the cached fetch result for a corpus URL. Returns the result
// and true if found and not expired; expired entries are removed on read.
func (cache *DiskCache) Get(corpusURL string) (FetchResult, bool) {
	cacheFilePath := cache.pathFor(corpusURL)

	data, err := os.ReadFile(cacheFilePath)
	if err != nil {
		return FetchResult{}, false
	}

	var entry diskCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return FetchResult{}, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(cacheFilePath)
		return FetchResult{}, false
	}

	return entry.Result, true
}

// Set stores a fetch result for a corpus URL.
func (cache *DiskCache) Set(corpusURL string, result FetchResult) error {
	entry := diskCacheEntry{
		Result:    result,
		ExpiresAt: time.Now().Add(cache.cacheTTL),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	cacheFilePath := cache.pathFor(corpusURL)
	if err := os.WriteFile(cacheFilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", cacheFilePath, err)
	}
	return nil
}

// Invalidate removes the cached entry for a corpus URL, if any.
func (cache *DiskCache) Invalidate(corpusURL string) {
	_ = os.Remove(cache.pathFor(corpusURL))
}

// keyFor returns the SHA-256 hash of the URL, used as the cache filename.
func (cache *DiskCache) keyFor(corpusURL string) string {
	hash := sha256.Sum256([]byte(corpusURL))
	return hex.EncodeToString(hash[:])
}

// pathFor returns the full file path for a cached URL.
func (cache *DiskCache) pathFor(corpusURL string) string {
	return filepath.Join(cache.cacheDir, cache.keyFor(corpusURL)+".json")
}
