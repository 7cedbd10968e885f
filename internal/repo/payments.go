package repo

import (
	"context"
	"time"
)

func (r Repo) InsertPayment(ctx context.Context, engineerID int64, month string, amount float64, now time.Time) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO payments(engineer_id, month, amount, created_at) VALUES (?,?,?,?)`,
		engineerID, month, amount, timeStr(now))
	return err
}

// PaidAdvance sums what was already paid out to an engineer for a month.
func (r Repo) PaidAdvance(ctx context.Context, engineerID int64, month string) (float64, error) {
	var total float64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE engineer_id = ? AND month = ?`,
		engineerID, month).Scan(&total)
	return total, err
}
