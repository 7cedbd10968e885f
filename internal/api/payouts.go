package api

import (
	"context"
	"net/http"
	"net/url"

	"fieldline/internal/domain"
)

// EngineerMotivations returns the monthly incentive table, month formatted
// as YYYY-MM.
func (c *Client) EngineerMotivations(ctx context.Context, month string) ([]domain.EngineerMotivation, error) {
	var rows []domain.EngineerMotivation
	err := c.do(ctx, http.MethodGet, "api/motivations/engineer?month="+url.QueryEscape(month), nil, &rows)
	return rows, err
}

// EngineerPayouts returns payout balances for a date range (YYYY-MM-DD).
func (c *Client) EngineerPayouts(ctx context.Context, from, to string) ([]domain.EngineerPayout, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	var rows []domain.EngineerPayout
	err := c.do(ctx, http.MethodGet, "api/payouts/engineers?"+q.Encode(), nil, &rows)
	return rows, err
}

// PayEngineer records an advance payment against an engineer's month.
func (c *Client) PayEngineer(ctx context.Context, engineerID int64, month string, amount float64) (domain.EngineerPayout, error) {
	body := map[string]any{
		"engineer_id": engineerID,
		"month":       month,
		"amount":      amount,
	}
	var row domain.EngineerPayout
	err := c.do(ctx, http.MethodPost, "api/payouts/engineers/pay", body, &row)
	return row, err
}

// Profit returns the per-day net profit series for a date range.
func (c *Client) Profit(ctx context.Context, from, to string) ([]domain.ProfitRow, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	var rows []domain.ProfitRow
	err := c.do(ctx, http.MethodGet, "api/profit?"+q.Encode(), nil, &rows)
	return rows, err
}
