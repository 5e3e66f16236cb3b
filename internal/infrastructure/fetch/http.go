// Package fetch provides origin fetchers for clip payloads.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hszk-dev/clipstore/internal/domain/repository"
)

// HTTPConfig holds configuration for the HTTP origin fetcher.
type HTTPConfig struct {
	// Timeout bounds a single origin request end to end.
	Timeout time.Duration
	// FailureMemoTTL is how long a failed URL is remembered before the
	// origin is asked again. Zero disables the memo.
	FailureMemoTTL time.Duration
}

// DefaultHTTPConfig returns an HTTPConfig with sensible defaults.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:        2 * time.Minute,
		FailureMemoTTL: 30 * time.Second,
	}
}

// HTTP fetches clip payloads from the origin over plain HTTPS. Failed URLs
// are memoized for a short TTL so a hot card pointing at a dead clip does
// not hammer the origin on every render.
type HTTP struct {
	client *http.Client
	memo   *gocache.Cache
}

// Compile-time verification that HTTP implements repository.Origin.
var _ repository.Origin = (*HTTP)(nil)

// NewHTTP creates an HTTP origin fetcher.
func NewHTTP(cfg HTTPConfig) *HTTP {
	f := &HTTP{
		client: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.FailureMemoTTL > 0 {
		f.memo = gocache.New(cfg.FailureMemoTTL, 2*cfg.FailureMemoTTL)
	}
	return f
}

// Fetch retrieves the full payload at url. Non-2xx statuses are errors;
// 404 maps to repository.ErrObjectNotFound.
func (f *HTTP) Fetch(ctx context.Context, url string) ([]byte, int64, error) {
	if f.memo != nil {
		if cached, found := f.memo.Get(url); found {
			return nil, 0, cached.(error)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build origin request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("origin request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var ferr error
		if resp.StatusCode == http.StatusNotFound {
			ferr = repository.ErrObjectNotFound
		} else {
			ferr = fmt.Errorf("origin returned status %d", resp.StatusCode)
		}
		f.remember(url, ferr)
		return nil, 0, ferr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read origin response: %w", err)
	}

	// The origin-declared length is budget accounting input only. -1 means
	// the origin sent none; record 0 per the cache's accounting contract.
	declaredSize := resp.ContentLength
	if declaredSize < 0 {
		declaredSize = 0
	}

	return data, declaredSize, nil
}

func (f *HTTP) remember(url string, err error) {
	if f.memo != nil {
		f.memo.SetDefault(url, err)
	}
}
