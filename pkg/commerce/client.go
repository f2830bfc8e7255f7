// Package commerce is a client for the upstream marketplace platform's REST
// APIs: the WooCommerce-style commerce endpoints, the Dokan-style store
// (vendor) endpoints, and the marketplace back-office endpoints (contracts,
// helpdesk, invoices, service listings).
package commerce

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
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when the upstream responds 404.
var ErrNotFound = errors.New("commerce: resource not found")

// APIError is a non-2xx upstream response other than 404.
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("commerce: API request failed with status %d: %s", e.StatusCode, e.Body)
}

// ClientOptions configures the commerce API client.
type ClientOptions struct {
	// BaseURL is the platform base URL without any /wp-json suffix.
	BaseURL string
	// ConsumerKey and ConsumerSecret authenticate via HTTP basic auth.
	ConsumerKey    string
	ConsumerSecret string
	// RetryMax is the maximum number of retries (default: 3).
	RetryMax int
	// Timeout is the HTTP client timeout (default: 30 seconds).
	Timeout time.Duration
	// RequestsPerSecond caps outbound call rate (default: 10).
	RequestsPerSecond int
}

// Client is the commerce API client.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	httpClient     *retryablehttp.Client
	limiter        *rate.Limiter
}

// NewClient creates a commerce API client.
func NewClient(opts ClientOptions) *Client {
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/wp-json")

	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	if opts.RetryMax == 0 {
		opts.RetryMax = 3
	}

	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 10
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.HTTPClient.Timeout = opts.Timeout
	retryClient.Logger = nil

	return &Client{
		baseURL:        opts.BaseURL,
		consumerKey:    opts.ConsumerKey,
		consumerSecret: opts.ConsumerSecret,
		httpClient:     retryClient,
		limiter:        rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.RequestsPerSecond),
	}
}

func (c *Client) commerceURL(path string) string { return c.baseURL + "/wp-json/wc/v3" + path }

func (c *Client) storeURL(path string) string { return c.baseURL + "/wp-json/dokan/v1" + path }

func (c *Client) backofficeURL(path string) string {
	return c.baseURL + "/wp-json/marketplace/v1" + path
}

// do performs one API call: rate-limit, build request, basic auth, decode into out.
func (c *Client) do(ctx context.Context, method, reqURL string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}

		reqBody = bytes.NewReader(encoded)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			slog.Error("Failed to read error response body", "error", readErr)
		}

		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// ProductListOptions filters ListProducts.
type ProductListOptions struct {
	Category string
	StoreID  string
	PerPage  int
}

// ListProducts retrieves catalog products.
func (c *Client) ListProducts(ctx context.Context, opts ProductListOptions) ([]Product, error) {
	query := url.Values{}
	if opts.Category != "" {
		query.Set("category", opts.Category)
	}

	if opts.StoreID != "" {
		query.Set("store", opts.StoreID)
	}

	if opts.PerPage > 0 {
		query.Set("per_page", fmt.Sprintf("%d", opts.PerPage))
	}

	var products []Product
	if err := c.do(ctx, http.MethodGet, c.commerceURL("/products"), query, nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	return products, nil
}

// GetProduct retrieves one product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, c.commerceURL(fmt.Sprintf("/products/%d", id)), nil, nil, &product); err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}

	return &product, nil
}

// OrderListOptions filters ListOrders.
type OrderListOptions struct {
	Status  string
	StoreID string
}

// ListOrders retrieves orders.
func (c *Client) ListOrders(ctx context.Context, opts OrderListOptions) ([]Order, error) {
	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}

	if opts.StoreID != "" {
		query.Set("store", opts.StoreID)
	}

	var orders []Order
	if err := c.do(ctx, http.MethodGet, c.commerceURL("/orders"), query, nil, &orders); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return orders, nil
}

// ListSellers retrieves vendor stores.
func (c *Client) ListSellers(ctx context.Context) ([]Seller, error) {
	var sellers []Seller
	if err := c.do(ctx, http.MethodGet, c.storeURL("/stores"), nil, nil, &sellers); err != nil {
		return nil, fmt.Errorf("list sellers: %w", err)
	}

	return sellers, nil
}

// UpdateSellerStatus changes a seller store's moderation status.
func (c *Client) UpdateSellerStatus(ctx context.Context, id string, status SellerStatus) (*Seller, error) {
	var seller Seller

	payload := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPut, c.storeURL("/stores/"+id+"/status"), nil, payload, &seller); err != nil {
		return nil, fmt.Errorf("update seller %s status: %w", id, err)
	}

	return &seller, nil
}

// ListContracts retrieves seller contracts.
func (c *Client) ListContracts(ctx context.Context) ([]Contract, error) {
	var contracts []Contract
	if err := c.do(ctx, http.MethodGet, c.backofficeURL("/contracts"), nil, nil, &contracts); err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}

	return contracts, nil
}

// UpdateContractStatus validates or invalidates a contract.
func (c *Client) UpdateContractStatus(ctx context.Context, id string, status ContractStatus) (*Contract, error) {
	var contract Contract

	payload := map[string]string{"status": string(status)}
	if err := c.do(ctx, http.MethodPut, c.backofficeURL("/contracts/"+id+"/status"), nil, payload, &contract); err != nil {
		return nil, fmt.Errorf("update contract %s status: %w", id, err)
	}

	return &contract, nil
}

// ListTickets retrieves helpdesk tickets.
func (c *Client) ListTickets(ctx context.Context) ([]Ticket, error) {
	var tickets []Ticket
	if err := c.do(ctx, http.MethodGet, c.backofficeURL("/tickets"), nil, nil, &tickets); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	return tickets, nil
}

// TicketReplyInput is the payload for ReplyTicket.
type TicketReplyInput struct {
	Author  string `json:"author"`
	Message string `json:"message"`
}

// ReplyTicket posts a reply and returns the updated ticket.
func (c *Client) ReplyTicket(ctx context.Context, id string, input TicketReplyInput) (*Ticket, error) {
	var ticket Ticket
	if err := c.do(ctx, http.MethodPost, c.backofficeURL("/tickets/"+id+"/replies"), nil, input, &ticket); err != nil {
		return nil, fmt.Errorf("reply ticket %s: %w", id, err)
	}

	return &ticket, nil
}

// CloseTicket closes a ticket and returns it.
func (c *Client) CloseTicket(ctx context.Context, id string) (*Ticket, error) {
	var ticket Ticket
	if err := c.do(ctx, http.MethodPost, c.backofficeURL("/tickets/"+id+"/close"), nil, nil, &ticket); err != nil {
		return nil, fmt.Errorf("close ticket %s: %w", id, err)
	}

	return &ticket, nil
}

// SubmitTicketSurvey records a satisfaction score on a closed ticket.
func (c *Client) SubmitTicketSurvey(ctx context.Context, id string, score int) (*Ticket, error) {
	var ticket Ticket

	payload := map[string]int{"score": score}
	if err := c.do(ctx, http.MethodPost, c.backofficeURL("/tickets/"+id+"/survey"), nil, payload, &ticket); err != nil {
		return nil, fmt.Errorf("submit survey for ticket %s: %w", id, err)
	}

	return &ticket, nil
}

// ListInvoices retrieves seller invoices.
func (c *Client) ListInvoices(ctx context.Context) ([]Invoice, error) {
	var invoices []Invoice
	if err := c.do(ctx, http.MethodGet, c.backofficeURL("/invoices"), nil, nil, &invoices); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	return invoices, nil
}

// PayInvoice marks an invoice paid and returns it.
func (c *Client) PayInvoice(ctx context.Context, id string) (*Invoice, error) {
	var invoice Invoice
	if err := c.do(ctx, http.MethodPost, c.backofficeURL("/invoices/"+id+"/pay"), nil, nil, &invoice); err != nil {
		return nil, fmt.Errorf("pay invoice %s: %w", id, err)
	}

	return &invoice, nil
}

// ListServiceListings retrieves seller service listings.
func (c *Client) ListServiceListings(ctx context.Context) ([]ServiceListing, error) {
	var listings []ServiceListing
	if err := c.do(ctx, http.MethodGet, c.backofficeURL("/services"), nil, nil, &listings); err != nil {
		return nil, fmt.Errorf("list service listings: %w", err)
	}

	return listings, nil
}

// UpsertServiceListing creates or replaces a service listing.
func (c *Client) UpsertServiceListing(ctx context.Context, listing ServiceListing) (*ServiceListing, error) {
	var saved ServiceListing
	if err := c.do(ctx, http.MethodPut, c.backofficeURL("/services/"+listing.ID), nil, listing, &saved); err != nil {
		return nil, fmt.Errorf("upsert service listing %s: %w", listing.ID, err)
	}

	return &saved, nil
}
