package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"fieldline/internal/domain"
)

// RepeatRequests lists repeat requests, optionally filtered by status
// (typically "pending").
func (c *Client) RepeatRequests(ctx context.Context, st string) ([]domain.RepeatRequest, error) {
	endpoint := "api/repeat-requests"
	if st != "" {
		endpoint += "?status=" + url.QueryEscape(st)
	}
	var reqs []domain.RepeatRequest
	err := c.do(ctx, http.MethodGet, endpoint, nil, &reqs)
	return reqs, err
}

// ConfirmRepeatRequest confirms a pending repeat request: the backend
// creates a follow-up order from the submitted form and links it to the
// originating one.
func (c *Client) ConfirmRepeatRequest(ctx context.Context, id int64, req domain.CreateOrderRequest) (domain.Order, error) {
	var order domain.Order
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("api/repeat-requests/%d/confirm", id), req, &order)
	return order, err
}
