package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/shopdesk/internal/models"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 * 1024 * 1024

// ErrUnauthorized matches API errors caused by a missing, invalid or expired token
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a failure reported by the catalog API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog API returned status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// Client talks to the catalog REST API. Authenticated calls take the admin
// token as an argument; the client itself holds no credentials.
type Client struct {
	BaseURL    string
	APIPath    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a new catalog client
func NewClient(baseURL, apiPath string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIPath: strings.Trim(apiPath, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignIn exchanges admin credentials for a token
func (c *Client) SignIn(ctx context.Context, username, password string) (*models.Credential, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var resp struct {
		Token   string `json:"token"`
		Expired int64  `json:"expired"` // unix milliseconds
	}
	if err := c.do(ctx, http.MethodPost, c.BaseURL+"/admin/signin", "", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("failed to sign in: response carried no token")
	}

	cred := &models.Credential{Token: resp.Token}
	if resp.Expired > 0 {
		cred.Expires = time.UnixMilli(resp.Expired)
	}
	return cred, nil
}

// CheckUser verifies that token still grants admin access
func (c *Client) CheckUser(ctx context.Context, token string) error {
	if err := c.do(ctx, http.MethodPost, c.BaseURL+"/api/user/check", token, nil, nil); err != nil {
		return fmt.Errorf("failed to check login: %w", err)
	}
	return nil
}

// ListAdminProducts fetches one page of the admin product list
func (c *Client) ListAdminProducts(ctx context.Context, token string, page int) (*models.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	var resp models.ProductPage
	endpoint := c.apiURL("/admin/products") + "?page=" + strconv.Itoa(page)
	if err := c.do(ctx, http.MethodGet, endpoint, token, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list products (page %d): %w", page, err)
	}
	return &resp, nil
}

// AllAdminProducts walks every page of the admin product list
func (c *Client) AllAdminProducts(ctx context.Context, token string) ([]models.Product, error) {
	var products []models.Product
	for page := 1; ; page++ {
		resp, err := c.ListAdminProducts(ctx, token, page)
		if err != nil {
			return nil, err
		}
		products = append(products, resp.Products...)

		slog.Debug("Fetched product page", "page", page, "total_pages", resp.Pagination.TotalPages, "count", len(resp.Products))

		if !resp.Pagination.HasNext || page >= resp.Pagination.TotalPages {
			return products, nil
		}
	}
}

// FindAdminProduct searches the admin list for a product by id
func (c *Client) FindAdminProduct(ctx context.Context, token, id string) (*models.Product, error) {
	products, err := c.AllAdminProducts(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, &APIError{StatusCode: http.StatusNotFound, Message: "product not found: " + id}
}

// CreateProduct adds a new product
func (c *Client) CreateProduct(ctx context.Context, token string, product models.Product) error {
	product.ID = ""
	body := map[string]any{"data": product}
	if err := c.do(ctx, http.MethodPost, c.apiURL("/admin/product"), token, body, nil); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// UpdateProduct replaces an existing product
func (c *Client) UpdateProduct(ctx context.Context, token, id string, product models.Product) error {
	product.ID = id
	body := map[string]any{"data": product}
	if err := c.do(ctx, http.MethodPut, c.apiURL("/admin/product/"+url.PathEscape(id)), token, body, nil); err != nil {
		return fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return nil
}

// DeleteProduct removes a product
func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	if err := c.do(ctx, http.MethodDelete, c.apiURL("/admin/product/"+url.PathEscape(id)), token, nil, nil); err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

// ListProducts fetches the public storefront product list
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var resp struct {
		Products []models.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, c.apiURL("/products"), "", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return resp.Products, nil
}

// GetProduct fetches one public product
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var resp struct {
		Product models.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, c.apiURL("/product/"+url.PathEscape(id)), "", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return &resp.Product, nil
}

// GetCart fetches the current cart
func (c *Client) GetCart(ctx context.Context) (*models.Cart, error) {
	var resp struct {
		Data models.Cart `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.apiURL("/cart"), "", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &resp.Data, nil
}

type cartLine struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// AddToCart puts qty units of a product into the cart
func (c *Client) AddToCart(ctx context.Context, productID string, qty int) error {
	body := map[string]any{"data": cartLine{ProductID: productID, Qty: qty}}
	if err := c.do(ctx, http.MethodPost, c.apiURL("/cart"), "", body, nil); err != nil {
		return fmt.Errorf("failed to add %s to cart: %w", productID, err)
	}
	return nil
}

// UpdateCartItem sets the quantity of a cart line
func (c *Client) UpdateCartItem(ctx context.Context, cartID, productID string, qty int) error {
	body := map[string]any{"data": cartLine{ProductID: productID, Qty: qty}}
	if err := c.do(ctx, http.MethodPut, c.apiURL("/cart/"+url.PathEscape(cartID)), "", body, nil); err != nil {
		return fmt.Errorf("failed to update cart item %s: %w", cartID, err)
	}
	return nil
}

// RemoveCartItem deletes one cart line
func (c *Client) RemoveCartItem(ctx context.Context, cartID string) error {
	if err := c.do(ctx, http.MethodDelete, c.apiURL("/cart/"+url.PathEscape(cartID)), "", nil, nil); err != nil {
		return fmt.Errorf("failed to remove cart item %s: %w", cartID, err)
	}
	return nil
}

// ClearCart empties the cart
func (c *Client) ClearCart(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, c.apiURL("/carts"), "", nil, nil); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// SubmitOrder places an order for the current cart
func (c *Client) SubmitOrder(ctx context.Context, order models.Order) (*models.OrderResult, error) {
	var resp models.OrderResult
	body := map[string]any{"data": order}
	if err := c.do(ctx, http.MethodPost, c.apiURL("/order"), "", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to submit order: %w", err)
	}
	return &resp, nil
}

func (c *Client) apiURL(suffix string) string {
	return c.BaseURL + "/api/" + c.APIPath + suffix
}

// do sends a JSON request and decodes the JSON response into out when out is non-nil
func (c *Client) do(ctx context.Context, method, endpoint, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	slog.Debug("Calling catalog API", "method", method, "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Message json.RawMessage `json:"message"`
	}
	// Error pages are not always JSON; the status code still decides.
	_ = json.Unmarshal(data, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := parseMessage(envelope.Message)
		if msg == "" && len(data) > 0 && envelope.Success == nil {
			msg = strings.TrimSpace(string(data))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if envelope.Success != nil && !*envelope.Success {
		return &APIError{StatusCode: resp.StatusCode, Message: parseMessage(envelope.Message)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// parseMessage reads the API's message field, which is either a string or a list of strings
func parseMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return string(raw)
}
