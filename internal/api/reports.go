package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"fieldline/internal/domain"
)

// ReportLinkInfo resolves a token-bearing report link into the order the
// engineer is reporting on. The call does not require a dispatcher session.
func (c *Client) ReportLinkInfo(ctx context.Context, token string) (domain.ReportLinkInfo, error) {
	var info domain.ReportLinkInfo
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("api/reports/link/%s", url.PathEscape(token)), nil, &info)
	return info, err
}

// SubmitReport sends an engineer's field report. A report with has_repeat
// set asks the dispatcher to schedule a follow-up visit.
func (c *Client) SubmitReport(ctx context.Context, payload domain.ReportPayload) (domain.ReportResponse, error) {
	var resp domain.ReportResponse
	err := c.do(ctx, http.MethodPost, "api/reports/submit", payload, &resp)
	return resp, err
}
