// Package cacclient implements the polling client runtime: the
// always-readable snapshot cache, the conditional-refresh HTTP protocol,
// and the multi-tenant factory that shares client instances.
package cacclient

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/vitaliisemenov/cac/pkg/cac"
	"github.com/vitaliisemenov/cac/pkg/caclogger"
)

// httpDoer is the minimal surface Client needs from an HTTP transport,
// satisfied by *http.Client and by test doubles.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// newDefaultHTTPClient builds an *http.Client the way the teacher builds
// its webhook transport: explicit timeouts, a TLS 1.2 floor, and
// connection pooling, rather than relying on http.DefaultClient's zero
// values.
func newDefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     30 * time.Second,
			ForceAttemptHTTP2:   true,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   5 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Client is the per-tenant polling client described in spec §4.5: it owns
// an HTTP request template, a polling interval, and a snapshotStore, and
// is safe to share by reference across any number of readers.
type Client struct {
	tenant          string
	hostname        string
	pollingInterval time.Duration
	http            httpDoer
	logger          *slog.Logger
	limiter         *rate.Limiter
	store           *snapshotStore
	metrics         *Metrics

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New constructs a Client for opts.Tenant, performing the unconditional
// initial fetch described in spec §4.5 steps 1-5. Construction fails with
// a wrapped ErrFetch or ErrDecode if that initial fetch does not succeed,
// since no usable snapshot exists yet to fall back on.
func New(ctx context.Context, opts ClientOptions) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	doer := opts.HTTPClient
	if doer == nil {
		doer = newDefaultHTTPClient()
	}
	burst := opts.RefreshBurst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		tenant:          opts.Tenant,
		hostname:        opts.Hostname,
		pollingInterval: opts.PollingInterval,
		http:            doer,
		logger:          logger,
		limiter:         rate.NewLimiter(rate.Every(opts.PollingInterval/2+time.Millisecond), burst),
		metrics:         GetMetrics(),
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}

	doc, lastModified, err := c.fetchUnconditional(ctx)
	if err != nil {
		return nil, err
	}

	c.store = newSnapshotStore(doc, lastModified)
	c.metrics.SnapshotInstalls.WithLabelValues(c.tenant).Inc()
	logger.Info("cac: initial snapshot installed", "tenant", c.tenant, "last_modified", lastModified)
	return c, nil
}

func (c *Client) configURL() string {
	return fmt.Sprintf("%s/config", c.hostname)
}

// fetchUnconditional issues the initial GET with no If-Modified-Since
// header (spec §4.5 step 2-4).
func (c *Client) fetchUnconditional(ctx context.Context) (cac.Document, time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.configURL(), nil)
	if err != nil {
		return cac.Document{}, time.Time{}, fmt.Errorf("cacclient: building request: %w", err)
	}
	req.Header.Set("x-tenant", c.tenant)

	resp, err := c.http.Do(req)
	if err != nil {
		return cac.Document{}, time.Time{}, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return cac.Document{}, time.Time{}, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	doc, err := decodeDocument(resp.Body)
	if err != nil {
		return cac.Document{}, time.Time{}, err
	}

	lastModified := parseLastModified(resp.Header.Get("Last-Modified"), c.logger)
	return doc, lastModified, nil
}

func decodeDocument(body io.Reader) (cac.Document, error) {
	var doc cac.Document
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return cac.Document{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return doc, nil
}

// rfc2822Layout is Go's closest stock layout to RFC 2822 (numeric zone
// offset, as chrono's to_rfc2822/parse_from_rfc2822 produce and expect in
// the original source this spec is based on).
const rfc2822Layout = time.RFC1123Z

// parseLastModified parses an RFC 2822 Last-Modified header, falling back
// to the Unix epoch when absent or unparseable (spec §4.5 step 4). Both
// the numeric-offset and named-zone RFC 1123 variants are accepted since
// real HTTP servers commonly emit the latter.
func parseLastModified(header string, logger *slog.Logger) time.Time {
	if header == "" {
		return time.Unix(0, 0).UTC()
	}
	t, err := time.Parse(rfc2822Layout, header)
	if err != nil {
		t, err = time.Parse(time.RFC1123, header)
	}
	if err != nil {
		logger.Error("cacclient: failed to parse Last-Modified header", "value", header, "error", err)
		return time.Unix(0, 0).UTC()
	}
	return t.UTC()
}

// refresh performs one conditional-fetch tick per spec §4.5 "Refresh
// protocol". It never returns an error to its caller in the polling loop:
// failures are logged and the existing snapshot is retained. The boolean
// return reports whether a new snapshot was installed, used only by tests.
func (c *Client) refresh(ctx context.Context) bool {
	correlationID := uuid.NewString()
	ctx = caclogger.WithCorrelationID(ctx, correlationID)
	logger := caclogger.FromContext(ctx, c.logger)

	start := time.Now()
	current := c.store.read()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.configURL(), nil)
	if err != nil {
		logger.Error("cacclient: building refresh request", "tenant", c.tenant, "error", err)
		c.metrics.FetchErrors.WithLabelValues(c.tenant).Inc()
		return false
	}
	req.Header.Set("x-tenant", c.tenant)
	req.Header.Set("If-Modified-Since", current.lastModified.Format(rfc2822Layout))

	resp, err := c.http.Do(req)
	c.metrics.RefreshDuration.WithLabelValues(c.tenant).Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Error("cacclient: refresh transport error", "tenant", c.tenant, "error", err)
		c.metrics.FetchErrors.WithLabelValues(c.tenant).Inc()
		return false
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		logger.Debug("cacclient: skipping update, remote not modified", "tenant", c.tenant)
		c.metrics.NotModified.WithLabelValues(c.tenant).Inc()
		return false

	case resp.StatusCode == http.StatusOK:
		doc, err := decodeDocument(resp.Body)
		if err != nil {
			logger.Error("cacclient: decode error on refresh", "tenant", c.tenant, "error", err)
			c.metrics.DecodeErrors.WithLabelValues(c.tenant).Inc()
			return false
		}
		newLastModified := current.lastModified
		if header := resp.Header.Get("Last-Modified"); header != "" {
			newLastModified = parseLastModified(header, logger)
		}
		c.store.replace(doc, newLastModified)
		c.metrics.SnapshotInstalls.WithLabelValues(c.tenant).Inc()
		logger.Info("cacclient: new config received, updating", "tenant", c.tenant, "last_modified", newLastModified)
		return true

	default:
		logger.Error("cacclient: fetch failed", "tenant", c.tenant, "status", resp.StatusCode)
		c.metrics.FetchErrors.WithLabelValues(c.tenant).Inc()
		return false
	}
}

// RunPollingUpdates drives the refresh loop on a steady interval timer
// until ctx is cancelled or Stop is called. Ticks never overlap: if a
// refresh outruns the interval, the next refresh starts immediately after
// the previous one completes rather than queuing up duplicate ticks
// (spec §4.5 "Polling loop").
//
// Each tick additionally waits on a token-bucket limiter keyed to the
// polling interval before calling refresh, so a misconfigured near-zero
// interval cannot turn a stalled upstream into a busy-spin against it.
func (c *Client) RunPollingUpdates(ctx context.Context) {
	ticker := time.NewTicker(c.pollingInterval)
	defer ticker.Stop()
	defer close(c.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			if err := c.limiter.Wait(ctx); err != nil {
				continue
			}
			c.refresh(ctx)
		}
	}
}

// Stop signals RunPollingUpdates to exit; it returns at once and does not
// wait for the loop to finish. Safe to call multiple times or never (it has
// no effect if RunPollingUpdates was never started).
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// GetFullConfigState returns a deep copy of the currently installed
// Document.
func (c *Client) GetFullConfigState() cac.Document {
	return c.store.read().document.Clone()
}

// GetLastModified returns the timestamp of the currently installed
// snapshot.
func (c *Client) GetLastModified() time.Time {
	return c.store.read().lastModified
}

// Eval resolves query against the current snapshot under strategy.
func (c *Client) Eval(query map[string]cac.Value, strategy cac.Strategy) cac.EvalResult {
	snap := c.store.read()
	return cac.EvalCAC(snap.document.DefaultConfigs, snap.document.Contexts, snap.document.Overrides, query, strategy)
}

// GetResolvedConfig evaluates query against the current snapshot and
// projects the result onto keys. An empty keys slice returns every
// resolved key.
func (c *Client) GetResolvedConfig(query map[string]cac.Value, keys []string, strategy cac.Strategy) map[string]cac.Value {
	result := c.Eval(query, strategy)
	return projectKeys(result.Resolved, keys)
}

// GetDefaultConfig returns the current snapshot's default_configs,
// projected onto keys. An empty keys slice returns every default.
func (c *Client) GetDefaultConfig(keys []string) map[string]cac.Value {
	snap := c.store.read()
	return projectKeys(snap.document.DefaultConfigs, keys)
}

func projectKeys(m map[string]cac.Value, keys []string) map[string]cac.Value {
	if len(keys) == 0 {
		out := make(map[string]cac.Value, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	out := make(map[string]cac.Value, len(want))
	for k, v := range m {
		if _, ok := want[k]; ok {
			out[k] = v
		}
	}
	return out
}
