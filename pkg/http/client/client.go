package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

type Response struct {
	StatusCode int
	Body       []byte
}

type Interface interface {
	Get(ctx context.Context, path string) (*Response, error)
}

// Client is a thin HTTP GET client with bounded retries. Only transport-level
// failures (timeout, DNS, refused/reset connections) are retried; a completed
// exchange with a non-2xx status is returned to the caller as a Response.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts int
	backoffBase time.Duration
	GetFunc     func(ctx context.Context, path string) (*Response, error)
}

type Options struct {
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	BackoffBase time.Duration
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = 750 * time.Millisecond
	}

	// No connection caching: one short-lived transport per client, closed
	// idle connections between refreshes keep the dial path predictable.
	transport := &http.Transport{
		DisableKeepAlives: true,
		DialContext: (&net.Dialer{
			Timeout: 5 * time.Second,
		}).DialContext,
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		maxAttempts: opts.MaxAttempts,
		backoffBase: opts.BackoffBase,
	}
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, path)
	}

	var fullURL string
	if c.baseURL == "" {
		fullURL = path
	} else {
		fullURL = c.baseURL + path
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.doGet(ctx, fullURL)
		if err == nil {
			return resp, nil
		}
		if !isTransient(err) {
			return nil, err
		}
		lastErr = err

		if attempt == c.maxAttempts {
			break
		}

		// Exponential backoff between retries only, never after the last one.
		delay := c.backoffBase << (attempt - 1)
		log.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Str("url", fullURL).
			Msg("Transient fetch failure, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}

func (c *Client) doGet(ctx context.Context, fullURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			return
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// isTransient reports whether a transport error is worth retrying.
func isTransient(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		err = urlErr.Err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// Refused, reset, or otherwise lost connections.
		return true
	}

	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}
