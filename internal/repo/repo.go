// Package repo is the dev server's SQLite storage layer.
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fieldline/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func timeStr(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

const orderColumns = `o.id, o.erp_number, o.aggregator_id, o.problem_id, o.price, o.our_percent,
o.client_name, o.phones_json, o.address, o.note, o.work_volume,
COALESCE(o.scheduled_at,''), o.engineer_id, o.status, o.is_repeat,
o.repeat_id, o.repeat_erp_number, o.repeat_description, o.repeated_by,
o.report_token, o.finish_price, o.created_at,
a.name, p.name,
e.id, e.first_name, e.second_name, e.username, e.phone, e.telegram_id, e.is_approved, e.is_working`

const orderFrom = ` FROM orders o
JOIN aggregators a ON a.id = o.aggregator_id
JOIN problems p ON p.id = o.problem_id
LEFT JOIN engineers e ON e.id = o.engineer_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, string, error) {
	var (
		o            domain.Order
		phonesJSON   string
		scheduledAt  string
		createdAt    string
		engineerID   sql.NullInt64
		repeatID     sql.NullInt64
		repeatErp    sql.NullInt64
		reportToken  string
		aggName      string
		probName     string
		eID          sql.NullInt64
		eFirst       sql.NullString
		eSecond      sql.NullString
		eUsername    sql.NullString
		ePhone       sql.NullString
		eTelegram    sql.NullInt64
		eApproved    sql.NullBool
		eWorking     sql.NullBool
	)
	err := row.Scan(&o.ID, &o.ErpNumber, &o.AggregatorID, &o.ProblemID, &o.Price, &o.OurPercent,
		&o.ClientName, &phonesJSON, &o.Address, &o.Note, &o.WorkVolume,
		&scheduledAt, &engineerID, &o.Status, &o.IsRepeat,
		&repeatID, &repeatErp, &o.RepeatDescription, &o.RepeatedBy,
		&reportToken, &o.FinishPrice, &createdAt,
		&aggName, &probName,
		&eID, &eFirst, &eSecond, &eUsername, &ePhone, &eTelegram, &eApproved, &eWorking)
	if err == sql.ErrNoRows {
		return o, "", ErrNotFound
	}
	if err != nil {
		return o, "", err
	}
	if err := json.Unmarshal([]byte(phonesJSON), &o.Phones); err != nil {
		o.Phones = nil
	}
	o.ScheduledAt = parseTime(scheduledAt)
	o.CreatedAt = parseTime(createdAt)
	o.Aggregator = &domain.DictionaryItem{ID: o.AggregatorID, Name: aggName}
	o.Problem = &domain.DictionaryItem{ID: o.ProblemID, Name: probName}
	if engineerID.Valid {
		o.EngineerID = &engineerID.Int64
	}
	if repeatID.Valid {
		o.RepeatID = &repeatID.Int64
	}
	if repeatErp.Valid {
		o.RepeatErpNumber = &repeatErp.Int64
	}
	if eID.Valid {
		o.Engineer = &domain.Engineer{
			ID:         eID.Int64,
			FirstName:  eFirst.String,
			SecondName: eSecond.String,
			Username:   eUsername.String,
			Phone:      ePhone.String,
			TelegramID: eTelegram.Int64,
			IsApproved: eApproved.Bool,
			IsWorking:  eWorking.Bool,
		}
	}
	return o, reportToken, nil
}

// ListOrders returns orders, optionally narrowed to one calendar day. The
// day filter matches the scheduled date; orders without a schedule stay
// visible so the unassigned pool survives the filter.
func (r Repo) ListOrders(ctx context.Context, date string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom
	var args []any
	if date != "" {
		query += ` WHERE o.scheduled_at IS NULL OR date(o.scheduled_at) = ?`
		args = append(args, date)
	}
	query += ` ORDER BY o.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Order
	for rows.Next() {
		o, _, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetOrderByErp fetches one order by its business-facing number.
func (r Repo) GetOrderByErp(ctx context.Context, erpNumber int64) (domain.Order, error) {
	o, _, err := scanOrder(r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+orderFrom+` WHERE o.erp_number = ?`, erpNumber))
	return o, err
}

// GetOrderByID fetches one order by internal id.
func (r Repo) GetOrderByID(ctx context.Context, id int64) (domain.Order, error) {
	o, _, err := scanOrder(r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+orderFrom+` WHERE o.id = ?`, id))
	return o, err
}

// GetOrderByReportToken resolves a report link token to its order.
func (r Repo) GetOrderByReportToken(ctx context.Context, token string) (domain.Order, error) {
	if token == "" {
		return domain.Order{}, ErrNotFound
	}
	o, _, err := scanOrder(r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+orderFrom+` WHERE o.report_token = ?`, token))
	return o, err
}

// ReportToken returns the report link token for an order.
func (r Repo) ReportToken(ctx context.Context, erpNumber int64) (string, error) {
	_, token, err := scanOrder(r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+orderFrom+` WHERE o.erp_number = ?`, erpNumber))
	return token, err
}

// NextErpNumber allocates the next business-facing order number.
func (r Repo) NextErpNumber(ctx context.Context) (int64, error) {
	var next int64
	err := r.DB.QueryRowContext(ctx, `SELECT COALESCE(MAX(erp_number), 999) + 1 FROM orders`).Scan(&next)
	return next, err
}

// CreateOrder inserts a new order and returns it fully joined.
func (r Repo) CreateOrder(ctx context.Context, req domain.CreateOrderRequest, erpNumber int64, reportToken string, scheduledAt *time.Time, now time.Time) (domain.Order, error) {
	phones, err := json.Marshal(req.Phones)
	if err != nil {
		return domain.Order{}, err
	}
	var scheduled any
	if scheduledAt != nil {
		scheduled = timeStr(*scheduledAt)
	}
	isRepeat := req.RepeatID != nil
	_, err = r.DB.ExecContext(ctx, `INSERT INTO orders(
erp_number, aggregator_id, problem_id, price, our_percent, client_name,
phones_json, address, note, work_volume, scheduled_at, engineer_id, status,
is_repeat, repeat_id, repeat_erp_number, report_token, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		erpNumber, req.AggregatorID, req.ProblemID, req.Price, req.OurPercent, req.ClientName,
		string(phones), req.Address, req.Note, req.WorkVolume, scheduled, nullableID(req.EngineerID), req.Status,
		isRepeat, nullableID(req.RepeatID), nullableID(req.RepeatErpNumber), reportToken, timeStr(now))
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return r.GetOrderByErp(ctx, erpNumber)
}

// UpdateOrder replaces the mutable fields of an order.
func (r Repo) UpdateOrder(ctx context.Context, erpNumber int64, req domain.CreateOrderRequest, scheduledAt *time.Time) (domain.Order, error) {
	phones, err := json.Marshal(req.Phones)
	if err != nil {
		return domain.Order{}, err
	}
	var scheduled any
	if scheduledAt != nil {
		scheduled = timeStr(*scheduledAt)
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE orders SET
aggregator_id=?, problem_id=?, price=?, our_percent=?, client_name=?,
phones_json=?, address=?, note=?, work_volume=?, scheduled_at=?, status=?
WHERE erp_number=?`,
		req.AggregatorID, req.ProblemID, req.Price, req.OurPercent, req.ClientName,
		string(phones), req.Address, req.Note, req.WorkVolume, scheduled, req.Status,
		erpNumber)
	if err != nil {
		return domain.Order{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Order{}, ErrNotFound
	}
	return r.GetOrderByErp(ctx, erpNumber)
}

// SetOrderAssignment sets or clears the engineer and moves the status.
func (r Repo) SetOrderAssignment(ctx context.Context, erpNumber int64, engineerID *int64, st string) (domain.Order, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE orders SET engineer_id=?, status=? WHERE erp_number=?`,
		nullableID(engineerID), st, erpNumber)
	if err != nil {
		return domain.Order{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Order{}, ErrNotFound
	}
	return r.GetOrderByErp(ctx, erpNumber)
}

// SetOrderStatus moves an order's lifecycle status.
func (r Repo) SetOrderStatus(ctx context.Context, erpNumber int64, st string) (domain.Order, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE orders SET status=? WHERE erp_number=?`, st, erpNumber)
	if err != nil {
		return domain.Order{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Order{}, ErrNotFound
	}
	return r.GetOrderByErp(ctx, erpNumber)
}

// SetOrderReport records a submitted report: final price and new status.
func (r Repo) SetOrderReport(ctx context.Context, erpNumber int64, finishPrice, st string) (domain.Order, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE orders SET finish_price=?, status=? WHERE erp_number=?`,
		finishPrice, st, erpNumber)
	if err != nil {
		return domain.Order{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Order{}, ErrNotFound
	}
	return r.GetOrderByErp(ctx, erpNumber)
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
