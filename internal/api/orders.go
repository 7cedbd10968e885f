package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"fieldline/internal/domain"
	"fieldline/internal/status"
)

// Orders lists orders, optionally filtered to one calendar day
// (YYYY-MM-DD). An empty date lists everything.
func (c *Client) Orders(ctx context.Context, date string) ([]domain.Order, error) {
	endpoint := "api/orders"
	if date != "" {
		endpoint += "?date=" + url.QueryEscape(date)
	}
	var orders []domain.Order
	err := c.do(ctx, http.MethodGet, endpoint, nil, &orders)
	return orders, err
}

// CreateOrder creates a new order; the backend allocates the erp number.
func (c *Client) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, http.MethodPost, "api/orders", req, &order)
	return order, err
}

// UpdateOrder replaces the mutable fields of an order by erp number.
func (c *Client) UpdateOrder(ctx context.Context, erpNumber int64, req domain.CreateOrderRequest) (domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("api/orders/%d", erpNumber), req, &order)
	return order, err
}

// AssignOrder hands an order to an engineer. The server validates the
// assignment and returns the updated order.
func (c *Client) AssignOrder(ctx context.Context, erpNumber, engineerID int64) (domain.Order, error) {
	body := map[string]any{
		"engineer_id": engineerID,
		"erp_number":  erpNumber,
	}
	var order domain.Order
	err := c.do(ctx, http.MethodPost, "api/orders/assign", body, &order)
	return order, err
}

// UnassignOrder returns an order to the dispatch pool.
func (c *Client) UnassignOrder(ctx context.Context, erpNumber int64) (domain.Order, error) {
	body := map[string]any{"erp_number": erpNumber}
	var order domain.Order
	err := c.do(ctx, http.MethodPost, "api/orders/unassign", body, &order)
	return order, err
}

// OrderReportToken fetches the report link token for an order.
func (c *Client) OrderReportToken(ctx context.Context, erpNumber int64) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("api/orders/%d/report-link", erpNumber), nil, &out)
	return out.Token, err
}

// SetOrderStatus moves an order along its lifecycle with a status-only
// update.
func (c *Client) SetOrderStatus(ctx context.Context, erpNumber int64, st string) (domain.Order, error) {
	body := map[string]any{"status": st}
	var order domain.Order
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("api/orders/%d", erpNumber), body, &order)
	return order, err
}

// CancelOrder marks an order canceled by the client.
func (c *Client) CancelOrder(ctx context.Context, erpNumber int64) (domain.Order, error) {
	return c.SetOrderStatus(ctx, erpNumber, status.Canceled)
}
