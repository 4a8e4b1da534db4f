package sdftext

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// fontLoader fetches, parses and caches fonts by URL or file path.
// Concurrent requests for the same source are coalesced so the bytes
// are fetched and parsed at most once; a source that fails is retried
// once against the fallback URL before the error is surfaced.
type fontLoader struct {
	fallbackURL string
	client      *http.Client

	mu     sync.RWMutex
	fonts  map[string]*Font
	flight singleflight.Group
}

func newFontLoader(fallbackURL string) *fontLoader {
	return &fontLoader{
		fallbackURL: fallbackURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		fonts:       make(map[string]*Font),
	}
}

// Load returns the font for a URL or file path, fetching and parsing it
// on first use. On failure it falls back to the loader's default font;
// if that also fails, the original error is returned wrapped.
func (l *fontLoader) Load(ctx context.Context, src string) (*Font, error) {
	f, err := l.load(ctx, src)
	if err == nil {
		return f, nil
	}
	if src == l.fallbackURL {
		return nil, err
	}

	Logger().Warn("font load failed, retrying with fallback",
		"font", src, "fallback", l.fallbackURL, "error", err)

	fallback, fbErr := l.load(ctx, l.fallbackURL)
	if fbErr != nil {
		return nil, fmt.Errorf("%w (fallback also failed: %v)", err, fbErr)
	}
	return fallback, nil
}

// load resolves one source through the cache, coalescing concurrent
// requests for the same source into a single fetch.
func (l *fontLoader) load(ctx context.Context, src string) (*Font, error) {
	l.mu.RLock()
	f, ok := l.fonts[src]
	l.mu.RUnlock()
	if ok {
		return f, nil
	}

	v, err, _ := l.flight.Do(src, func() (any, error) {
		// Double-check: an earlier flight may have populated the cache
		// between the RLock and Do.
		l.mu.RLock()
		f, ok := l.fonts[src]
		l.mu.RUnlock()
		if ok {
			return f, nil
		}

		start := time.Now()
		data, err := l.fetch(ctx, src)
		if err != nil {
			return nil, &FontLoadError{URL: src, Err: err}
		}

		font, err := newFont(src, data)
		if err != nil {
			return nil, &FontParseError{URL: src, Err: err}
		}

		l.mu.Lock()
		l.fonts[src] = font
		l.mu.Unlock()

		Logger().Info("font loaded",
			"font", src, "bytes", len(data), "elapsed", time.Since(start))
		return font, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Font), nil
}

// fetch reads font bytes from an http(s) URL or the local filesystem.
func (l *fontLoader) fetch(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(src)
}
