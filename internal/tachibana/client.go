package tachibana

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/kabudata/tachibana-adapter/internal/metrics"
)

// Client issues the venue's GET requests. Request URLs arrive here in
// readable form; the quasi-JSON fragment after "?" is percent-encoded before
// the wire. Response bodies are Shift-JIS and are transcoded to UTF-8 before
// decoding.
type Client struct {
	logger *zap.Logger
	http   *http.Client
}

func NewClient(logger *zap.Logger, timeout time.Duration) *Client {
	return &Client{
		logger: logger,
		http:   &http.Client{Timeout: timeout},
	}
}

// encodeRequestURL percent-encodes everything after the first "?". The
// fragment contains braces, quotes and commas that must not reach the server
// raw.
func encodeRequestURL(raw string) string {
	i := strings.Index(raw, "?")
	if i < 0 {
		return raw
	}
	return raw[:i+1] + url.QueryEscape(raw[i+1:])
}

// Get fetches one request and returns the UTF-8 response body.
func (c *Client) Get(ctx context.Context, op, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, encodeRequestURL(rawURL), nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveAPIRequest(op, "error", elapsed)
		c.logger.Warn("tachibana.request_failed",
			zap.String("op", op),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(transform.NewReader(resp.Body, japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		metrics.ObserveAPIRequest(op, "error", elapsed)
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		metrics.ObserveAPIRequest(op, fmt.Sprintf("http_%d", resp.StatusCode), elapsed)
		return nil, &TransportError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	metrics.ObserveAPIRequest(op, "ok", elapsed)
	c.logger.Debug("tachibana.request_complete",
		zap.String("op", op),
		zap.Duration("elapsed", elapsed),
		zap.Int("bytes", len(body)))
	return body, nil
}
