package repo

import (
	"context"
	"database/sql"
	"time"

	"fieldline/internal/domain"
)

const engineerColumns = `id, first_name, second_name, username, phone, telegram_id, is_approved, is_working`

func scanEngineer(row rowScanner) (domain.Engineer, error) {
	var e domain.Engineer
	err := row.Scan(&e.ID, &e.FirstName, &e.SecondName, &e.Username, &e.Phone,
		&e.TelegramID, &e.IsApproved, &e.IsWorking)
	if err == sql.ErrNoRows {
		return e, ErrNotFound
	}
	return e, err
}

func (r Repo) ListEngineers(ctx context.Context) ([]domain.Engineer, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+engineerColumns+` FROM engineers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Engineer
	for rows.Next() {
		e, err := scanEngineer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r Repo) GetEngineer(ctx context.Context, id int64) (domain.Engineer, error) {
	return scanEngineer(r.DB.QueryRowContext(ctx, `SELECT `+engineerColumns+` FROM engineers WHERE id = ?`, id))
}

func (r Repo) CreateEngineer(ctx context.Context, req domain.CreateEngineerRequest, now time.Time) (domain.Engineer, error) {
	res, err := r.DB.ExecContext(ctx, `INSERT INTO engineers(first_name, second_name, username, phone, telegram_id, created_at)
VALUES (?,?,?,?,?,?)`,
		req.FirstName, req.SecondName, req.Username, req.Phone, req.TelegramID, timeStr(now))
	if err != nil {
		return domain.Engineer{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Engineer{}, err
	}
	return r.GetEngineer(ctx, id)
}

func (r Repo) ApproveEngineer(ctx context.Context, id int64) (domain.Engineer, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE engineers SET is_approved = 1 WHERE id = ?`, id)
	if err != nil {
		return domain.Engineer{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Engineer{}, ErrNotFound
	}
	return r.GetEngineer(ctx, id)
}

// ToggleEngineerWorking flips the on-duty flag and returns the updated row.
func (r Repo) ToggleEngineerWorking(ctx context.Context, id int64) (domain.Engineer, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE engineers SET is_working = 1 - is_working WHERE id = ?`, id)
	if err != nil {
		return domain.Engineer{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Engineer{}, ErrNotFound
	}
	return r.GetEngineer(ctx, id)
}
