package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fieldline/internal/domain"
)

// Dictionary tables share one shape; the table name is always one of the
// two literals below, never caller input.
const (
	TableAggregators = "aggregators"
	TableProblems    = "problems"
)

func scanDictionaryItem(row rowScanner) (domain.DictionaryItem, error) {
	var (
		d         domain.DictionaryItem
		createdAt string
		updatedAt sql.NullString
	)
	err := row.Scan(&d.ID, &d.Name, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	if err != nil {
		return d, err
	}
	d.CreatedAt = parseTime(createdAt)
	if updatedAt.Valid {
		d.UpdatedAt = parseTime(updatedAt.String)
	}
	return d, nil
}

func (r Repo) ListDictionary(ctx context.Context, table string) ([]domain.DictionaryItem, error) {
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s ORDER BY name`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.DictionaryItem
	for rows.Next() {
		d, err := scanDictionaryItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r Repo) GetDictionaryItem(ctx context.Context, table string, id int64) (domain.DictionaryItem, error) {
	return scanDictionaryItem(r.DB.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s WHERE id = ?`, table), id))
}

func (r Repo) CreateDictionaryItem(ctx context.Context, table, name string, now time.Time) (domain.DictionaryItem, error) {
	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s(name, created_at) VALUES (?,?)`, table), name, timeStr(now))
	if err != nil {
		return domain.DictionaryItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.DictionaryItem{}, err
	}
	return r.GetDictionaryItem(ctx, table, id)
}
