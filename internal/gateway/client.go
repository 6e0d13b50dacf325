package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-core/internal/cart"
	"github.com/angelmondragon/storefront-core/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-core/pkg/errors"
	"github.com/angelmondragon/storefront-core/pkg/metrics"
	"github.com/google/uuid"
)

const (
	defaultTimeout           = 10 * time.Second
	errorBodyReadLimit int64 = 2048
)

var errBaseURLRequired = errors.New("gateway base url is required")

// TokenSource supplies the current session token, or empty when the session
// is unauthenticated.
type TokenSource interface {
	Token() string
}

// Client wraps the remote cart REST endpoints. Failures of any kind collapse
// into a single gateway-error category; retries and backoff are the caller's
// explicit non-concern.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	metrics    *metrics.CartMetrics
}

var _ cart.Gateway = (*Client)(nil)

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMetrics attaches gateway call metrics.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the cart gateway client for the configured backend.
func NewClient(cfg config.GatewayConfig, tokens TokenSource, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if tokens == nil {
		return nil, errors.New("token source is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		tokens:     tokens,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// FetchCart returns the full server cart normalized into line items.
func (c *Client) FetchCart(ctx context.Context) ([]cart.LineItem, error) {
	var resp cartResponse
	if err := c.do(ctx, "fetch", http.MethodGet, "/cart", nil, &resp); err != nil {
		return nil, err
	}
	items := make([]cart.LineItem, 0, len(resp.Items))
	for _, dto := range resp.Items {
		items = append(items, dto.toLineItem())
	}
	return items, nil
}

// AddItem creates a server cart line for the variant/size pair.
func (c *Client) AddItem(ctx context.Context, variantID, sizeID uuid.UUID, quantity int) error {
	body := addItemRequest{
		ProductVariantID: variantID,
		SizeID:           sizeID,
		Quantity:         quantity,
	}
	return c.do(ctx, "add", http.MethodPost, "/cart/items", body, nil)
}

// Increase bumps the line quantity by one.
func (c *Client) Increase(ctx context.Context, lineItemID string) error {
	return c.do(ctx, "increase", http.MethodPost, "/cart/items/"+lineItemID+"/increase", nil, nil)
}

// Decrease lowers the line quantity by one; the backend removes the line at
// zero.
func (c *Client) Decrease(ctx context.Context, lineItemID string) error {
	return c.do(ctx, "decrease", http.MethodPost, "/cart/items/"+lineItemID+"/decrease", nil, nil)
}

// Remove deletes the line item.
func (c *Client) Remove(ctx context.Context, lineItemID string) error {
	return c.do(ctx, "remove", http.MethodDelete, "/cart/items/"+lineItemID, nil, nil)
}

// Clear empties the server cart.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, "clear", http.MethodDelete, "/cart", nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, dest any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "encode request")
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveGateway(op, time.Since(start))
	if err != nil {
		c.metrics.IncGatewayFailure(op)
		return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "call cart backend")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.metrics.IncGatewayFailure(op)
		return pkgerrors.Wrap(pkgerrors.CodeGateway, errorFromResponse(resp), "call cart backend")
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			c.metrics.IncGatewayFailure(op)
			return pkgerrors.Wrap(pkgerrors.CodeGateway, err, "decode response")
		}
	}
	return nil
}

func errorFromResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	var envelope errorResponse
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, envelope.Error.Message)
	}
	return fmt.Errorf("backend returned %d", resp.StatusCode)
}
