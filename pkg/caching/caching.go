// Package caching is a file-backed TTL cache for pipeline responses, keyed by
// message content and extraction options.
package caching

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dtnitsch/email-reply-parser/models"
)

// Cache provides a simple file-based cache with a TTL.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

// Key hashes everything that influences a response: the request fields and the options.
func Key(email models.RawEmail, opts models.ExtractOptions) string {
	h := sha256.New()
	for _, part := range []string{email.HTML, email.Subject, email.SenderHeader, email.DateHeader, email.PriorSubject} {
		fmt.Fprintf(h, "%d:%s|", len(part), part)
	}
	fmt.Fprintf(h, "attachments=%d|", len(email.Attachments))
	for _, a := range email.Attachments {
		fmt.Fprintf(h, "%d:%s:%d:%d:%s|", len(a.Name), a.Name, a.Size, len(a.ContentType), a.ContentType)
	}
	fmt.Fprintf(h, "sig=%t|thread=%t", opts.IncludeSignature, opts.FullThread)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get retrieves a response from the cache.
// It returns the response and true if the entry is found and not expired.
// A ttl of zero never expires.
func (c *Cache) Get(key string) (models.Response, bool) {
	filePath := filepath.Join(c.path, key+".json")

	info, err := os.Stat(filePath)
	if err != nil {
		return models.Response{}, false // Cache miss
	}

	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return models.Response{}, false // Cache miss (expired)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return models.Response{}, false
	}

	var resp models.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.Response{}, false
	}
	return resp, true
}

// Set stores a response. Failed responses are not cached.
func (c *Cache) Set(key string, resp models.Response) error {
	if !resp.Success {
		return nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	filePath := filepath.Join(c.path, key+".json")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
