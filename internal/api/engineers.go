package api

import (
	"context"
	"net/http"
	"net/url"

	"fieldline/internal/domain"
)

// Engineers lists engineers with their on-duty flag resolved for the given
// day (YYYY-MM-DD).
func (c *Client) Engineers(ctx context.Context, date string) ([]domain.Engineer, error) {
	endpoint := "api/engineers"
	if date != "" {
		endpoint += "?date=" + url.QueryEscape(date)
	}
	var engineers []domain.Engineer
	err := c.do(ctx, http.MethodGet, endpoint, nil, &engineers)
	return engineers, err
}

// CreateEngineer registers a new engineer, unapproved by default.
func (c *Client) CreateEngineer(ctx context.Context, req domain.CreateEngineerRequest) (domain.Engineer, error) {
	var eng domain.Engineer
	err := c.do(ctx, http.MethodPost, "api/engineers", req, &eng)
	return eng, err
}

// ApproveEngineer clears an engineer for receiving assignments.
func (c *Client) ApproveEngineer(ctx context.Context, engineerID int64) (domain.Engineer, error) {
	body := map[string]any{"engineer_id": engineerID}
	var eng domain.Engineer
	err := c.do(ctx, http.MethodPost, "api/engineers/accept-engineer", body, &eng)
	return eng, err
}

// ToggleWorking flips an engineer's on-duty flag for the current day.
func (c *Client) ToggleWorking(ctx context.Context, engineerID int64) (domain.Engineer, error) {
	body := map[string]any{"engineer_id": engineerID}
	var eng domain.Engineer
	err := c.do(ctx, http.MethodPost, "api/engineers/toggle-working", body, &eng)
	return eng, err
}
