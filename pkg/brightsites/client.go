package brightsites

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIPath is the orders endpoint of the storefront API.
const APIPath = "/api/v2.6.1/orders"

// Order statuses the sweeper cares about. The API accepts more, but only
// these two participate in the stale-order transition.
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
)

// Order is a single order as returned by the orders endpoint. CreatedAt is
// kept as the raw API string; timestamp parsing rules live with the sweeper.
type Order struct {
	OrderID   int64  `json:"order_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// OrdersPage is one page of a ListOrders response.
type OrdersPage struct {
	Orders      []Order `json:"orders"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
}

// ListOrdersParams are the query parameters for ListOrders. The timestamps
// are passed through verbatim in the API's "2006-01-02T15:04:05" format.
type ListOrdersParams struct {
	CreatedAtFrom string
	CreatedAtTo   string
	Page          int
	PerPage       int
}

// APIError is returned for non-2xx responses from the storefront API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("storefront API %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Config holds the settings for a store API client.
type Config struct {
	// Subdomain is the store's subdomain on the platform
	Subdomain string
	// Domain is the platform domain, e.g. "mybrightsites.com"
	Domain string
	// Token is the store's API key
	Token string
	// Timeout is the per-request timeout (default 30s)
	Timeout time.Duration
	// BaseURL overrides the https://{subdomain}.{domain} base. Used in tests.
	BaseURL string
	// HTTPClient overrides the default client. Used in tests.
	HTTPClient *http.Client
}

// Client talks to a single store's orders API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for one store.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.%s", cfg.Subdomain, cfg.Domain)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		token:      cfg.Token,
		httpClient: httpClient,
	}
}

// ListOrders fetches one page of orders created inside the given window.
func (c *Client) ListOrders(ctx context.Context, params ListOrdersParams) (*OrdersPage, error) {
	query := url.Values{}
	query.Set("token", c.token)
	if params.CreatedAtFrom != "" {
		query.Set("created_at_from", params.CreatedAtFrom)
	}
	if params.CreatedAtTo != "" {
		query.Set("created_at_to", params.CreatedAtTo)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(params.PerPage))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+APIPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build orders request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read orders response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Method:     http.MethodGet,
			Path:       APIPath,
			Body:       truncate(string(body), 512),
		}
	}

	var page OrdersPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode orders response: %w", err)
	}
	if page.CurrentPage == 0 {
		page.CurrentPage = 1
	}
	if page.TotalPages == 0 {
		page.TotalPages = 1
	}

	return &page, nil
}

// ListAllOrders walks every page of orders for the window.
func (c *Client) ListAllOrders(ctx context.Context, params ListOrdersParams) ([]Order, error) {
	var all []Order

	params.Page = 1
	for {
		page, err := c.ListOrders(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Orders...)

		if page.CurrentPage >= page.TotalPages {
			return all, nil
		}
		params.Page = page.CurrentPage + 1
	}
}

// UpdateOrderStatus moves an order to the given status.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	payload := map[string]interface{}{
		"order": map[string]string{"status": status},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode order update: %w", err)
	}

	path := fmt.Sprintf("%s/%d", APIPath, orderID)
	reqURL := fmt.Sprintf("%s%s?token=%s", c.baseURL, path, url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build order update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The API accepts the token both ways; send the header too, matching
	// what store integrations expect.
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update order %d: %w", orderID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     http.MethodPut,
			Path:       path,
			Body:       truncate(string(body), 512),
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
