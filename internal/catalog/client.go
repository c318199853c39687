// Package catalog is a thin client for the remote product API. Responses are
// decoded into product snapshots. Single-product lookups are memoized for a
// short TTL; listings always hit the API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/storefront/internal/core/product"
	"github.com/colonyops/storefront/pkg/kv"
)

// ErrNotFound is returned when the API has no product with the requested id.
var ErrNotFound = errors.New("product not found")

// Source defines the catalog lookups used by the commands and the TUI.
// It is implemented by *Client and can be faked in tests.
type Source interface {
	GetProduct(ctx context.Context, id string) (product.Product, error)
	Products(ctx context.Context) ([]product.Product, error)
	Search(ctx context.Context, query string) ([]product.Product, error)
	ByCategory(ctx context.Context, category string) ([]product.Product, error)
	Featured(ctx context.Context) ([]product.Product, error)
	BestSellers(ctx context.Context) ([]product.Product, error)
	OnSale(ctx context.Context) ([]product.Product, error)
}

var _ Source = (*Client)(nil)

// Client talks to the product HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    zerolog.Logger
	cache     *kv.Store[string, product.Product]
}

const (
	defaultUserAgent = "storefront"
	defaultTimeout   = 10 * time.Second
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    zerolog.Logger
	// CacheTTL memoizes GetProduct results. Zero disables the cache.
	CacheTTL time.Duration
}

// NewClient builds a Client for the API rooted at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		logger:    opts.Logger,
	}
	if opts.CacheTTL > 0 {
		c.cache = kv.New[string, product.Product](opts.CacheTTL)
	}
	return c, nil
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (product.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return product.Product{}, product.ErrMissingID
	}
	if c.cache != nil {
		if p, ok := c.cache.Get(id); ok {
			return p, nil
		}
	}

	var env envelope
	if err := c.get(ctx, nil, &env, "products", id); err != nil {
		return product.Product{}, err
	}
	if !env.ok() {
		return product.Product{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	p, err := product.Decode(env.Data)
	if err != nil {
		return product.Product{}, fmt.Errorf("product %s: %w", id, err)
	}
	if c.cache != nil {
		c.cache.Set(id, p)
	}
	return p, nil
}

// Products lists the full catalog.
func (c *Client) Products(ctx context.Context) ([]product.Product, error) {
	return c.list(ctx, nil, "products")
}

// Search runs a free-text product search.
func (c *Client) Search(ctx context.Context, query string) ([]product.Product, error) {
	return c.list(ctx, url.Values{"q": {query}}, "products", "search")
}

// ByCategory lists products in a category.
func (c *Client) ByCategory(ctx context.Context, category string) ([]product.Product, error) {
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("category required")
	}
	return c.list(ctx, nil, "products", "category", category)
}

// Featured lists featured products.
func (c *Client) Featured(ctx context.Context) ([]product.Product, error) {
	return c.list(ctx, nil, "products", "featured")
}

// BestSellers lists best-selling products.
func (c *Client) BestSellers(ctx context.Context) ([]product.Product, error) {
	return c.list(ctx, nil, "products", "bestsellers")
}

// OnSale lists discounted products.
func (c *Client) OnSale(ctx context.Context) ([]product.Product, error) {
	return c.list(ctx, nil, "products", "onsale")
}

func (c *Client) list(ctx context.Context, query url.Values, segments ...string) ([]product.Product, error) {
	path := strings.Join(segments, "/")
	var raw json.RawMessage
	if err := c.get(ctx, query, &raw, segments...); err != nil {
		return nil, err
	}

	items, err := decodeList(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	out := make([]product.Product, 0, len(items))
	for _, item := range items {
		p, err := product.Decode(item)
		if err != nil {
			c.logger.Debug().Err(err).Str("path", path).Msg("skip catalog product")
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, query url.Values, dest any, segments ...string) error {
	path := strings.Join(segments, "/")
	reqURL := c.baseURL.JoinPath(segments...)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("url", reqURL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("catalog request")

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("catalog base url is required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
