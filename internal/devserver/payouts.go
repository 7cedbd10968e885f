package devserver

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"fieldline/internal/domain"
	"fieldline/internal/events"
	"fieldline/internal/status"
)

// motivationPercent is the flat incentive share of gross profit used by
// the dev aggregates.
const motivationPercent = 25.0

func (s *server) registerPayouts(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "engineer-motivations",
		Method:      http.MethodGet,
		Path:        "/motivations/engineer",
		Summary:     "Monthly engineer motivation table",
	}, func(ctx context.Context, input *struct {
		Month string `query:"month"`
	}) (*struct {
		Body []domain.EngineerMotivation `json:"body"`
	}, error) {
		rows, err := s.engineerMotivations(ctx, input.Month)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.EngineerMotivation `json:"body"`
		}{Body: rows}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "engineer-payouts",
		Method:      http.MethodGet,
		Path:        "/payouts/engineers",
		Summary:     "Engineer payout balances",
	}, func(ctx context.Context, input *struct {
		From string `query:"from"`
		To   string `query:"to"`
	}) (*struct {
		Body []domain.EngineerPayout `json:"body"`
	}, error) {
		rows, err := s.engineerPayouts(ctx, input.From, input.To)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.EngineerPayout `json:"body"`
		}{Body: rows}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "pay-engineer",
		Method:      http.MethodPost,
		Path:        "/payouts/engineers/pay",
		Summary:     "Record an advance payment",
	}, func(ctx context.Context, input *struct {
		Body struct {
			EngineerID int64   `json:"engineer_id"`
			Month      string  `json:"month"`
			Amount     float64 `json:"amount"`
		} `json:"body"`
	}) (*struct {
		Body domain.EngineerPayout `json:"body"`
	}, error) {
		if input.Body.Month == "" {
			return nil, newAPIError(http.StatusBadRequest, "month is required")
		}
		if input.Body.Amount <= 0 {
			return nil, newAPIError(http.StatusBadRequest, "amount is required to be positive")
		}
		eng, err := s.repo.GetEngineer(ctx, input.Body.EngineerID)
		if err != nil {
			return nil, handleError(err)
		}
		if err := s.repo.InsertPayment(ctx, eng.ID, input.Body.Month, input.Body.Amount, s.now()); err != nil {
			return nil, handleError(err)
		}
		s.record(ctx, "payout.paid", "engineer", eng.ID, events.EventPayload{"month": input.Body.Month, "amount": input.Body.Amount})
		row, err := s.payoutRow(ctx, eng, input.Body.Month)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.EngineerPayout `json:"body"`
		}{Body: row}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "profit",
		Method:      http.MethodGet,
		Path:        "/profit",
		Summary:     "Daily net profit",
	}, func(ctx context.Context, input *struct {
		From string `query:"from"`
		To   string `query:"to"`
	}) (*struct {
		Body []domain.ProfitRow `json:"body"`
	}, error) {
		rows, err := s.profit(ctx, input.From, input.To)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.ProfitRow `json:"body"`
		}{Body: rows}, nil
	})
}

func closedWithReport(o domain.Order) bool {
	switch o.Status {
	case status.ClosedWithoutRepeat, status.SentToCash, status.ClosedFinally:
		return o.FinishPrice != "" && o.EngineerID != nil
	}
	return false
}

func orderMonth(o domain.Order) string {
	if o.CreatedAt == nil {
		return ""
	}
	return o.CreatedAt.Format("2006-01")
}

func orderDay(o domain.Order) string {
	if o.CreatedAt == nil {
		return ""
	}
	return o.CreatedAt.Format("2006-01-02")
}

func finishPrice(o domain.Order) float64 {
	v, err := strconv.ParseFloat(o.FinishPrice, 64)
	if err != nil {
		return 0
	}
	return v
}

func (s *server) engineerMotivations(ctx context.Context, month string) ([]domain.EngineerMotivation, error) {
	orders, err := s.repo.ListOrders(ctx, "")
	if err != nil {
		return nil, err
	}
	engineers, err := s.repo.ListEngineers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.EngineerMotivation)
	var rows []domain.EngineerMotivation
	for _, e := range engineers {
		rows = append(rows, domain.EngineerMotivation{
			EngineerID:        e.ID,
			EngineerName:      e.FullName(),
			MotivationPercent: motivationPercent,
		})
	}
	for i := range rows {
		byID[rows[i].EngineerID] = &rows[i]
	}
	for _, o := range orders {
		if !closedWithReport(o) || orderMonth(o) != month {
			continue
		}
		row, ok := byID[*o.EngineerID]
		if !ok {
			continue
		}
		amount := finishPrice(o)
		gross := amount * float64(o.OurPercent) / 100
		row.ReportsCount++
		row.OrdersTotalAmount += amount
		row.GrossProfit += gross
		row.AggregatorPayout += amount - gross
		if o.IsRepeat {
			row.RepeatOrdersCount++
			row.RepeatOrdersAmount += amount
		} else {
			row.PrimaryOrdersCount++
		}
	}
	out := rows[:0]
	for _, row := range rows {
		if row.ReportsCount == 0 {
			continue
		}
		row.AverageCheck = row.OrdersTotalAmount / float64(row.ReportsCount)
		row.TotalMotivationAmount = row.GrossProfit * motivationPercent / 100
		out = append(out, row)
	}
	return out, nil
}

func (s *server) payoutRow(ctx context.Context, eng domain.Engineer, month string) (domain.EngineerPayout, error) {
	motivations, err := s.engineerMotivations(ctx, month)
	if err != nil {
		return domain.EngineerPayout{}, err
	}
	var salary float64
	for _, m := range motivations {
		if m.EngineerID == eng.ID {
			salary = m.TotalMotivationAmount
			break
		}
	}
	paid, err := s.repo.PaidAdvance(ctx, eng.ID, month)
	if err != nil {
		return domain.EngineerPayout{}, err
	}
	left := salary - paid
	return domain.EngineerPayout{
		EngineerID:  eng.ID,
		FirstName:   eng.FirstName,
		SecondName:  eng.SecondName,
		Salary:      salary,
		Advance:     paid,
		PaidAdvance: paid,
		Left:        left,
		Total:       salary,
		CanPay:      left > 0,
		Month:       month,
	}, nil
}

// engineerPayouts reports one row per engineer for the month the range
// starts in. The from date carries the month; to is accepted for protocol
// compatibility.
func (s *server) engineerPayouts(ctx context.Context, from, _ string) ([]domain.EngineerPayout, error) {
	month := from
	if len(month) >= 7 {
		month = month[:7]
	}
	engineers, err := s.repo.ListEngineers(ctx)
	if err != nil {
		return nil, err
	}
	var rows []domain.EngineerPayout
	for _, e := range engineers {
		if !e.IsApproved {
			continue
		}
		row, err := s.payoutRow(ctx, e, month)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *server) profit(ctx context.Context, from, to string) ([]domain.ProfitRow, error) {
	orders, err := s.repo.ListOrders(ctx, "")
	if err != nil {
		return nil, err
	}
	byDay := map[string]float64{}
	for _, o := range orders {
		if !closedWithReport(o) {
			continue
		}
		day := orderDay(o)
		if day == "" || (from != "" && day < from) || (to != "" && day > to) {
			continue
		}
		byDay[day] += finishPrice(o) * float64(o.OurPercent) / 100
	}
	var rows []domain.ProfitRow
	for day, net := range byDay {
		rows = append(rows, domain.ProfitRow{Period: day, NetProfit: net})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows, nil
}
