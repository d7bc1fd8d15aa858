package itsukaralink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const DefaultFeedURL = "https://api.itsukaralink.jp/events.json"

const (
	ReasonTransport = "transport"
	ReasonStatus    = "status"
	ReasonDecode    = "decode"
)

// ErrUnknownStatus is wrapped in a decode FetchError when the body carries
// neither "ok" nor "ng", including a literal null or an empty object.
var ErrUnknownStatus = errors.New("feed status is neither ok nor ng")

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

// FetchError is returned for every failed fetch. Reason is one of the
// Reason* constants.
type FetchError struct {
	Reason string
	URL    string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Options struct {
	FeedURL string
	// CORSRelay is prepended verbatim to FeedURL when set.
	CORSRelay string
	UserAgent string
	Logger    *zap.Logger
}

type Client struct {
	httpClient *http.Client
	url        string
	userAgent  string
	logger     *zap.Logger
}

func NewClient(httpClient *http.Client, opts Options) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	feedURL := strings.TrimSpace(opts.FeedURL)
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		url:        strings.TrimSpace(opts.CORSRelay) + feedURL,
		userAgent:  strings.TrimSpace(opts.UserAgent),
		logger:     logger,
	}
}

// URL is the effective request URL, relay prefix included.
func (c *Client) URL() string {
	return c.url
}

func (c *Client) FetchEvents(ctx context.Context) (*EventsResponse, error) {
	c.logger.Info("fetch events", zap.String("url", c.url))

	body, err := c.doRequest(ctx)
	if err != nil {
		c.logger.Error("fetch events failed", zap.String("url", c.url), zap.Error(err))
		return nil, err
	}
	resp, err := parseEventsResponse(body)
	if err != nil {
		ferr := &FetchError{Reason: ReasonDecode, URL: c.url, Err: err}
		c.logger.Error("fetch events failed", zap.String("url", c.url), zap.Error(ferr))
		return nil, ferr
	}
	if resp.Status != StatusOK && resp.Status != StatusNG {
		ferr := &FetchError{Reason: ReasonDecode, URL: c.url, Err: fmt.Errorf("%w: %q", ErrUnknownStatus, resp.Status)}
		c.logger.Error("fetch events failed", zap.String("url", c.url), zap.Error(ferr))
		return nil, ferr
	}
	if !resp.OK() {
		c.logger.Error("fetch events: upstream status is not ok",
			zap.String("url", c.url),
			zap.String("status", resp.Status),
		)
	}
	return resp, nil
}

func (c *Client) doRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{Reason: ReasonTransport, URL: c.url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Reason: ReasonTransport, URL: c.url, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Reason: ReasonTransport, URL: c.url, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Reason: ReasonStatus, URL: c.url, Err: &APIError{Status: resp.StatusCode, Body: truncate(string(body), 512)}}
	}
	return body, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
