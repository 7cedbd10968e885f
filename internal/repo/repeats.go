package repo

import (
	"context"
	"database/sql"
	"time"

	"fieldline/internal/domain"
)

const repeatColumns = `id, order_id, engineer_id, description, requested_at,
COALESCE(scheduled_at,''), confirmed, status, repeat_order_id`

func scanRepeatRequest(row rowScanner) (domain.RepeatRequest, error) {
	var (
		rr          domain.RepeatRequest
		requestedAt string
		scheduledAt string
		repeatOrder sql.NullInt64
	)
	err := row.Scan(&rr.ID, &rr.OrderID, &rr.EngineerID, &rr.Description, &requestedAt,
		&scheduledAt, &rr.Confirmed, &rr.Status, &repeatOrder)
	if err == sql.ErrNoRows {
		return rr, ErrNotFound
	}
	if err != nil {
		return rr, err
	}
	rr.RequestedAt = parseTime(requestedAt)
	rr.ScheduledAt = parseTime(scheduledAt)
	if repeatOrder.Valid {
		rr.RepeatOrderID = &repeatOrder.Int64
	}
	return rr, nil
}

// ListRepeatRequests returns requests, optionally filtered by status, each
// with its source order attached.
func (r Repo) ListRepeatRequests(ctx context.Context, status string) ([]domain.RepeatRequest, error) {
	query := `SELECT ` + repeatColumns + ` FROM repeat_requests`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY requested_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.RepeatRequest
	for rows.Next() {
		rr, err := scanRepeatRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		o, err := r.GetOrderByID(ctx, out[i].OrderID)
		if err != nil && err != ErrNotFound {
			return nil, err
		}
		if err == nil {
			out[i].Order = &o
		}
	}
	return out, nil
}

func (r Repo) GetRepeatRequest(ctx context.Context, id int64) (domain.RepeatRequest, error) {
	rr, err := scanRepeatRequest(r.DB.QueryRowContext(ctx,
		`SELECT `+repeatColumns+` FROM repeat_requests WHERE id = ?`, id))
	if err != nil {
		return rr, err
	}
	o, err := r.GetOrderByID(ctx, rr.OrderID)
	if err == nil {
		rr.Order = &o
	} else if err != ErrNotFound {
		return rr, err
	}
	return rr, nil
}

func (r Repo) CreateRepeatRequest(ctx context.Context, orderID, engineerID int64, description string, scheduledAt *time.Time, now time.Time) (domain.RepeatRequest, error) {
	var scheduled any
	if scheduledAt != nil {
		scheduled = timeStr(*scheduledAt)
	}
	res, err := r.DB.ExecContext(ctx, `INSERT INTO repeat_requests(order_id, engineer_id, description, requested_at, scheduled_at)
VALUES (?,?,?,?,?)`,
		orderID, engineerID, description, timeStr(now), scheduled)
	if err != nil {
		return domain.RepeatRequest{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.RepeatRequest{}, err
	}
	return r.GetRepeatRequest(ctx, id)
}

// ConfirmRepeatRequest marks the request confirmed and links the follow-up
// order created from it.
func (r Repo) ConfirmRepeatRequest(ctx context.Context, id, repeatOrderID int64) (domain.RepeatRequest, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE repeat_requests SET confirmed = 1, status = 'confirmed', repeat_order_id = ? WHERE id = ?`,
		repeatOrderID, id)
	if err != nil {
		return domain.RepeatRequest{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.RepeatRequest{}, ErrNotFound
	}
	return r.GetRepeatRequest(ctx, id)
}
