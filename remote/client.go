package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API is the surface of the external commerce platform this system consumes.
// The HTTP collaborator owns retry/backoff; callers see timeouts and API
// errors as plain errors and classify them at the service boundary.
type API interface {
	ListCatalogObjects(ctx context.Context, objType string) ([]CatalogObject, error)
	ListLocations(ctx context.Context) ([]Location, error)
	RetrieveLocation(ctx context.Context, id string) (*Location, error)
	CreateOrder(ctx context.Context, spec OrderSpec, idempotencyKey string) (*Order, error)
	UpdateOrder(ctx context.Context, id string, patch OrderPatch, idempotencyKey string) (*Order, error)
	ClearOrderFields(ctx context.Context, id string, version int64, fieldPaths []string) (*Order, error)
	CreatePayment(ctx context.Context, spec PaymentSpec) (*Payment, error)
}

// Client talks to the platform's REST API for one merchant token.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a platform API client. Base URL may carry a scheme or
// not; trailing slashes are normalized away.
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type apiError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

type envelope struct {
	Objects   []CatalogObject `json:"objects"`
	Cursor    string          `json:"cursor"`
	Locations []Location      `json:"locations"`
	Location  *Location       `json:"location"`
	Order     *Order          `json:"order"`
	Payment   *Payment        `json:"payment"`
	Errors    []apiError      `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("platform request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode response (%s %s, status %d): %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 {
		if len(env.Errors) > 0 {
			msgs := make([]string, len(env.Errors))
			for i, e := range env.Errors {
				msgs[i] = e.Code + ": " + e.Detail
			}
			return nil, fmt.Errorf("platform error (status %d): %s", resp.StatusCode, strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("platform error (status %d): %s", resp.StatusCode, string(data))
	}
	return &env, nil
}

// ListCatalogObjects pages through the catalog list endpoint for one type.
func (c *Client) ListCatalogObjects(ctx context.Context, objType string) ([]CatalogObject, error) {
	var all []CatalogObject
	cursor := ""
	for {
		q := url.Values{"types": {objType}}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		env, err := c.do(ctx, http.MethodGet, "/v2/catalog/list", q, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, env.Objects...)
		if env.Cursor == "" {
			return all, nil
		}
		cursor = env.Cursor
	}
}

func (c *Client) ListLocations(ctx context.Context) ([]Location, error) {
	env, err := c.do(ctx, http.MethodGet, "/v2/locations", nil, nil)
	if err != nil {
		return nil, err
	}
	return env.Locations, nil
}

func (c *Client) RetrieveLocation(ctx context.Context, id string) (*Location, error) {
	env, err := c.do(ctx, http.MethodGet, "/v2/locations/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	if env.Location == nil {
		return nil, fmt.Errorf("empty location in response for %q", id)
	}
	return env.Location, nil
}

func (c *Client) CreateOrder(ctx context.Context, spec OrderSpec, idempotencyKey string) (*Order, error) {
	body := map[string]interface{}{"order": spec}
	if idempotencyKey != "" {
		body["idempotency_key"] = idempotencyKey
	}
	env, err := c.do(ctx, http.MethodPost, "/v2/orders", nil, body)
	if err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, fmt.Errorf("empty order in create response")
	}
	return env.Order, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id string, patch OrderPatch, idempotencyKey string) (*Order, error) {
	body := map[string]interface{}{"order": patch}
	if idempotencyKey != "" {
		body["idempotency_key"] = idempotencyKey
	}
	env, err := c.do(ctx, http.MethodPut, "/v2/orders/"+url.PathEscape(id), nil, body)
	if err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, fmt.Errorf("empty order in update response")
	}
	return env.Order, nil
}

func (c *Client) ClearOrderFields(ctx context.Context, id string, version int64, fieldPaths []string) (*Order, error) {
	body := map[string]interface{}{
		"order":           OrderPatch{Version: version},
		"fields_to_clear": fieldPaths,
	}
	env, err := c.do(ctx, http.MethodPut, "/v2/orders/"+url.PathEscape(id), nil, body)
	if err != nil {
		return nil, err
	}
	if env.Order == nil {
		return nil, fmt.Errorf("empty order in clear-fields response")
	}
	return env.Order, nil
}

func (c *Client) CreatePayment(ctx context.Context, spec PaymentSpec) (*Payment, error) {
	env, err := c.do(ctx, http.MethodPost, "/v2/payments", nil, spec)
	if err != nil {
		return nil, err
	}
	if env.Payment == nil {
		return nil, fmt.Errorf("empty payment in response")
	}
	return env.Payment, nil
}
