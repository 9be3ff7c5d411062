// Package orderapi is the REST client for the platform data service. The
// service speaks a PostgREST-style dialect: filters in query parameters,
// exact counts via the Prefer header, totals in the Content-Range header.
package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rafflehq/orderops/internal/orders"
)

const (
	ordersPath = "/rest/v1/orders"
	userAgent  = "orderops"

	// maxErrorBodyBytes caps how much of an error response body is read
	// and logged.
	maxErrorBodyBytes = 2048
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the base URL of the data service (e.g. "https://db.example.com").
	BaseURL string
	// ServiceKey is the service-level credential sent with every request.
	ServiceKey string
	// HTTPClient is used for all requests. If nil, a client with a 30s
	// timeout is used.
	HTTPClient *http.Client
	// Logger is used for request-level debug logging. If nil, logging is
	// disabled.
	Logger *zerolog.Logger
}

// Client talks to the data service's orders table.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     zerolog.Logger

	// now stamps approved_at/sold_at on bulk transitions; replaced in tests.
	now func() time.Time
}

// NewClient creates a data service client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("orderapi: BaseURL is required")
	}
	if config.ServiceKey == "" {
		return nil, fmt.Errorf("orderapi: ServiceKey is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := zerolog.Nop()
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		serviceKey: config.ServiceKey,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// CountOrders returns the exact count of orders with the given status.
// Zero is a valid count, not an error. The count is requested as a HEAD
// with Prefer: count=exact so no row payload travels back; the total
// arrives in the Content-Range header.
func (c *Client) CountOrders(ctx context.Context, status orders.Status) (int, error) {
	query := "select=id&status=eq." + status.String()
	resp, err := c.doRequest(ctx, http.MethodHead, query, nil, "count=exact")
	if err != nil {
		return 0, fmt.Errorf("counting %s orders: %w", status, err)
	}
	defer drainAndClose(resp.Body)

	total, err := parseContentRangeTotal(resp.Header.Get("Content-Range"))
	if err != nil {
		return 0, fmt.Errorf("counting %s orders: %w", status, err)
	}
	return total, nil
}

// PendingOrderIDs returns up to limit identifiers currently in
// pending_approval state, projecting only the identifier column. The
// backend chooses the order; fewer than limit, or zero, may come back if
// the pending set has shrunk since it was counted.
func (c *Client) PendingOrderIDs(ctx context.Context, limit int) ([]orders.ID, error) {
	if limit < 1 {
		return nil, fmt.Errorf("orderapi: limit must be positive, got %d", limit)
	}

	query := "select=id&status=eq." + orders.StatusPendingApproval.String() +
		"&limit=" + strconv.Itoa(limit)
	resp, err := c.doRequest(ctx, http.MethodGet, query, nil, "")
	if err != nil {
		return nil, fmt.Errorf("fetching pending order ids: %w", err)
	}
	defer drainAndClose(resp.Body)

	var rows []struct {
		ID orders.ID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("parsing pending order ids: %w", err)
	}

	ids := make([]orders.ID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// CompleteOrders issues one bulk conditional update transitioning the given
// orders to completed, stamping approved_at and sold_at. The update only
// matches rows still in pending_approval, so re-submitting an already
// completed identifier is a no-op. Returns the number of rows the backend
// actually matched and transitioned, which can be less than len(ids) when
// another actor got there first.
func (c *Client) CompleteOrders(ctx context.Context, ids []orders.ID) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("orderapi: CompleteOrders requires at least one id")
	}

	now := c.now().UTC().Format(time.RFC3339)
	body := map[string]string{
		"status":      orders.StatusCompleted.String(),
		"approved_at": now,
		"sold_at":     now,
	}

	query := "id=in.(" + joinIDs(ids) + ")&status=eq." + orders.StatusPendingApproval.String()
	resp, err := c.doRequest(ctx, http.MethodPatch, query, body, "count=exact, return=minimal")
	if err != nil {
		return 0, fmt.Errorf("completing %d orders: %w", len(ids), err)
	}
	defer drainAndClose(resp.Body)

	matched, err := parseContentRangeTotal(resp.Header.Get("Content-Range"))
	if err != nil {
		return 0, fmt.Errorf("completing %d orders: %w", len(ids), err)
	}

	c.logger.Debug().
		Int("submitted", len(ids)).
		Int("matched", matched).
		Msg("bulk transition applied")

	return matched, nil
}

// doRequest issues one request against the orders table. 2xx responses are
// returned as-is; anything else becomes an *APIError with the status code
// and as much of the response body as could be parsed.
func (c *Client) doRequest(
	ctx context.Context,
	method, query string,
	body any,
	prefer string,
) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	url := c.baseURL + ordersPath + "?" + query
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer drainAndClose(resp.Body)
		return nil, c.errorFromResponse(resp)
	}

	return resp, nil
}

// errorFromResponse builds an *APIError from a non-2xx response. The body
// is best-effort: a JSON {message, code} object is parsed when present,
// otherwise the raw text (capped) becomes the message.
func (c *Client) errorFromResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		apiErr.Message = resp.Status
		return apiErr
	}

	if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
	}

	return apiErr
}

// parseContentRangeTotal extracts the total from a Content-Range header of
// the form "*/N" or "lo-hi/N".
func parseContentRangeTotal(header string) (int, error) {
	if header == "" {
		return 0, fmt.Errorf("response is missing the Content-Range header")
	}

	_, totalPart, found := strings.Cut(header, "/")
	if !found {
		return 0, fmt.Errorf("malformed Content-Range header %q", header)
	}

	total, err := strconv.Atoi(totalPart)
	if err != nil {
		return 0, fmt.Errorf("malformed Content-Range total in %q", header)
	}
	if total < 0 {
		return 0, fmt.Errorf("negative Content-Range total in %q", header)
	}
	return total, nil
}

// joinIDs renders an identifier set for an in.(...) filter.
func joinIDs(ids []orders.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

// drainAndClose drains the rest of a response body before closing so the
// underlying connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
