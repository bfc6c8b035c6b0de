package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/iatifetch/internal/cache"
)

// Package sentinel errors.
var (
	// ErrBadStatus is returned (wrapped) when a server answers outside 2xx.
	ErrBadStatus = errors.New("fetch: unexpected response status")
	// ErrDecode is returned (wrapped) when a response body fails to decode.
	ErrDecode = errors.New("fetch: response body decode failed")
)

// RequestLog records the outcome of every network request for later
// inspection. The relational store implements it; tests use a no-op.
type RequestLog interface {
	// RecordRequest persists one request outcome. Failures to record are
	// the implementation's to log; fetching never depends on them.
	RecordRequest(ctx context.Context, key, rawURL, method string, outcome string, detail string) error
}

// nopRequestLog discards request records.
type nopRequestLog struct{}

func (nopRequestLog) RecordRequest(_ context.Context, _, _, _, _, _ string) error { return nil }

// Fetcher performs cache-or-fetch operations.
type Fetcher struct {
	client     *http.Client
	cache      cache.Cache
	requestLog RequestLog
	logger     *slog.Logger
	timeout    time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets the HTTP client shared across fetches.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithRequestLog sets the request outcome recorder.
func WithRequestLog(rl RequestLog) FetcherOption {
	return func(f *Fetcher) {
		f.requestLog = rl
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a Fetcher backed by the given response cache.
func NewFetcher(c cache.Cache, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		cache:      c,
		requestLog: nopRequestLog{},
		logger:     slog.New(slog.DiscardHandler),
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		// Callers sharing one crawl should pass one client so the
		// connection pool is shared too.
		f.logger.Warn("no shared HTTP client configured; creating one for this fetcher")
		f.client = NewHTTPClient(ClientConfig{Timeout: f.timeout})
	}
	return f
}

// Options adjusts a single cache-or-fetch operation.
type Options struct {
	// Refresh evicts any cached entry before fetching, forcing a network
	// round trip.
	Refresh bool

	// NoStore skips writing the response to the cache. Used for bodies
	// too large or too volatile to be worth memoizing.
	NoStore bool
}

// FetchOrCache returns the response body for a descriptor, consulting the
// cache first. A cache hit never touches the network. Expected failures
// come back as soft results; only genuinely unexpected conditions are
// hard. The context bounds the whole operation.
func (f *Fetcher) FetchOrCache(ctx context.Context, desc Descriptor, opts Options) Result {
	key := desc.Key()

	if opts.Refresh {
		if err := f.cache.Delete(ctx, key); err != nil {
			f.logger.WarnContext(ctx, "cache eviction failed", "key", key, "error", err)
		}
	} else {
		body, hit, err := f.cache.Get(ctx, key)
		if err != nil {
			f.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
		if hit {
			return f.decode(desc, body)
		}
	}

	result := f.fetch(ctx, desc, key, opts)
	f.record(ctx, desc, key, result)
	return result
}

// fetch performs the network round trip and classifies the outcome.
func (f *Fetcher) fetch(ctx context.Context, desc Descriptor, key string, opts Options) Result {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := f.newRequest(ctx, desc)
	if err != nil {
		return Hard(fmt.Errorf("build request for %s: %w", desc.URL, err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Connection refused, DNS failure, TLS handshake failure, and
		// timeout all land here. All are expected when crawling
		// third-party hosts.
		f.logger.InfoContext(ctx, "request failed", "url", desc.URL, "error", err)
		return Soft(fmt.Errorf("request %s: %w", desc.URL, err))
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.WarnContext(ctx, "close response body", "url", desc.URL, "error", err)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		f.logger.InfoContext(ctx, "bad response status",
			"url", desc.URL, "status", resp.StatusCode)
		return Soft(fmt.Errorf("%w: %d from %s", ErrBadStatus, resp.StatusCode, desc.URL))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logger.InfoContext(ctx, "read response body failed", "url", desc.URL, "error", err)
		return Soft(fmt.Errorf("read body of %s: %w", desc.URL, err))
	}
	body := string(raw)

	// Decode before caching. A body that fails to decode is a soft
	// failure and must not pin its key, or every later lookup would
	// replay the failure without refetching.
	result := f.decode(desc, body)
	if result.OK() && !opts.NoStore {
		if err := f.cache.Set(ctx, key, body); err != nil {
			f.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
	}
	return result
}

// newRequest builds the HTTP request with merged query parameters.
func (f *Fetcher) newRequest(ctx context.Context, desc Descriptor) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, desc.EffectiveMethod(), desc.URL, nil)
	if err != nil {
		return nil, err
	}
	if len(desc.Params) > 0 {
		q := req.URL.Query()
		for k, v := range desc.Params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	req.Header.Set("User-Agent", "iatifetch/1.0")
	return req, nil
}

// decode converts a textual body into the descriptor's declared shape.
// Decoding failures are soft: a registry endpoint sometimes answers an
// HTML error page with a 200 status.
func (f *Fetcher) decode(desc Descriptor, body string) Result {
	switch desc.BodyType {
	case BodyJSON:
		var v any
		if err := json.Unmarshal([]byte(body), &v); err != nil {
			return Soft(fmt.Errorf("%w: json from %s: %s", ErrDecode, desc.URL, err))
		}
		return Ok(v)
	case BodyText, BodyXML, "":
		return Ok(body)
	default:
		return Hard(fmt.Errorf("%w: unknown body type %q", ErrDecode, desc.BodyType))
	}
}

// record writes the request outcome to the request log.
func (f *Fetcher) record(ctx context.Context, desc Descriptor, key string, result Result) {
	detail := ""
	if result.Reason != nil {
		detail = result.Reason.Error()
	}
	rawURL := desc.URL
	if u, err := url.Parse(desc.URL); err == nil && len(desc.Params) > 0 {
		q := u.Query()
		for k, v := range desc.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		rawURL = u.String()
	}
	if err := f.requestLog.RecordRequest(ctx, key, rawURL, desc.EffectiveMethod(), result.Outcome.String(), detail); err != nil {
		f.logger.WarnContext(ctx, "record request outcome failed",
			"url", strings.TrimSpace(desc.URL), "error", err)
	}
}
