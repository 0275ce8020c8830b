package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/five82/feedsync/internal/feed"
	"github.com/five82/feedsync/internal/mutation"
)

// FeedFetcher is the subset of the backend the client screens use.
// *Client implements it; tests substitute fakes.
type FeedFetcher interface {
	FetchPage(ctx context.Context, pageIndex, pageSize int) ([]feed.Item, error)
	Write(ctx context.Context, itemID string, kind mutation.Kind) error
}

var (
	_ FeedFetcher     = (*Client)(nil)
	_ feed.PageLoader = (*Client)(nil)
	_ mutation.Writer = (*Client)(nil)
)

const (
	defaultBaseURL   = "http://127.0.0.1:8780"
	defaultUserAgent = "feedsync/0.1"
	defaultTimeout   = 10 * time.Second
	defaultRate      = 10
)

// Option configures a Client.
type Option func(*Client)

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// Client talks to the feed HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	token     string
	userAgent string
}

// NewClient builds a Client for baseURL (scheme optional).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		limiter:   rate.NewLimiter(rate.Limit(defaultRate), defaultRate),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// pageResponse mirrors GET /api/feed.
type pageResponse struct {
	Items []feed.Item `json:"items"`
	Page  int         `json:"page"`
}

// reactionRequest is the body of POST /api/posts/{id}/reactions.
type reactionRequest struct {
	Kind string `json:"kind"`
}

// FetchPage retrieves one page of the feed.
func (c *Client) FetchPage(ctx context.Context, pageIndex, pageSize int) ([]feed.Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if pageIndex < 0 {
		return nil, fmt.Errorf("page index %d is negative", pageIndex)
	}
	values := url.Values{}
	values.Set("page", strconv.Itoa(pageIndex))
	if pageSize > 0 {
		values.Set("size", strconv.Itoa(pageSize))
	}
	rel := &url.URL{Path: "/api/feed", RawQuery: values.Encode()}
	var payload pageResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// Write toggles a reaction on a post.
func (c *Client) Write(ctx context.Context, itemID string, kind mutation.Kind) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("item id required")
	}
	body, err := json.Marshal(reactionRequest{Kind: string(kind)})
	if err != nil {
		return fmt.Errorf("encode reaction: %w", err)
	}
	rel := &url.URL{Path: "/api/posts/" + url.PathEscape(itemID) + "/reactions"}
	return c.doURL(ctx, http.MethodPost, rel, body, nil)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body []byte, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}
	reqURL := c.baseURL.ResolveReference(rel)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
