package domain

import "time"

// Order is a field-service request. Field names follow the backend wire
// format; erp_number is the business-facing identifier used in all
// cross-references, id is internal to the backend.
type Order struct {
	ID                int64           `json:"id"`
	ErpNumber         int64           `json:"erp_number"`
	AggregatorID      int64           `json:"aggregator_id"`
	Aggregator        *DictionaryItem `json:"aggregator,omitempty"`
	ProblemID         int64           `json:"problem_id"`
	Problem           *DictionaryItem `json:"problem,omitempty"`
	Price             string          `json:"price"`
	OurPercent        int             `json:"our_percent"`
	ClientName        string          `json:"client_name"`
	Phones            []string        `json:"phones"`
	Address           string          `json:"address"`
	Note              string          `json:"note,omitempty"`
	WorkVolume        string          `json:"work_volume"`
	ScheduledAt       *time.Time      `json:"scheduled_at,omitempty"`
	EngineerID        *int64          `json:"engineer_id,omitempty"`
	Engineer          *Engineer       `json:"engineer,omitempty"`
	Status            string          `json:"status"`
	IsRepeat          bool            `json:"is_repeat,omitempty"`
	RepeatID          *int64          `json:"repeat_id,omitempty"`
	RepeatErpNumber   *int64          `json:"repeat_erp_number,omitempty"`
	RepeatDescription string          `json:"repeat_description,omitempty"`
	RepeatedBy        string          `json:"repeated_by,omitempty"`
	FinishPrice       string          `json:"finish_price,omitempty"`
	CreatedAt         *time.Time      `json:"created_at,omitempty"`
}

// Assigned reports whether the order has an engineer.
func (o Order) Assigned() bool { return o.Engineer != nil }

// Engineer is a field worker. is_working is a day-scoped on-duty flag,
// is_approved gates whether the engineer can receive assignments.
type Engineer struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name,omitempty"`
	Username   string `json:"username"`
	Phone      string `json:"phone,omitempty"`
	TelegramID int64  `json:"telegram_id,omitempty"`
	IsApproved bool   `json:"is_approved"`
	IsWorking  bool   `json:"is_working"`
}

// FullName joins first and second name for display.
func (e Engineer) FullName() string {
	if e.SecondName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.SecondName
}

// DictionaryItem is a reference-data entry (aggregator/source or problem).
type DictionaryItem struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// RepeatRequest is an engineer-initiated request for a follow-up visit on a
// previously serviced order. Confirming it creates a new order linked
// through repeat_id.
type RepeatRequest struct {
	ID            int64      `json:"id"`
	OrderID       int64      `json:"order_id"`
	Order         *Order     `json:"order,omitempty"`
	EngineerID    int64      `json:"engineer_id"`
	Description   string     `json:"description"`
	RequestedAt   *time.Time `json:"requested_at,omitempty"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	Confirmed     bool       `json:"confirmed"`
	Status        string     `json:"status"`
	RepeatOrderID *int64     `json:"repeat_order_id,omitempty"`
}

// CreateOrderRequest is the payload for order create and update calls.
type CreateOrderRequest struct {
	AggregatorID    int64    `json:"aggregator_id" required:"false"`
	ProblemID       int64    `json:"problem_id" required:"false"`
	Price           string   `json:"price" required:"false"`
	OurPercent      int      `json:"our_percent" required:"false"`
	ClientName      string   `json:"client_name" required:"false"`
	Phones          []string `json:"phones" required:"false"`
	Address         string   `json:"address" required:"false"`
	WorkVolume      string   `json:"work_volume" required:"false"`
	Note            string   `json:"note,omitempty"`
	ScheduledAt     string   `json:"scheduled_at,omitempty"`
	EngineerID      *int64   `json:"engineer_id,omitempty"`
	Status          string   `json:"status" required:"false"`
	RepeatID        *int64   `json:"repeat_id,omitempty"`
	RepeatErpNumber *int64   `json:"repeat_erp_number,omitempty"`
}

// CreateEngineerRequest is the payload for engineer creation.
type CreateEngineerRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name,omitempty"`
	Username   string `json:"username"`
	Phone      string `json:"phone,omitempty"`
	TelegramID int64  `json:"telegram_id,omitempty"`
}

// ReportLinkInfo is what an engineer sees when opening a token-bearing
// report link: the order to report on.
type ReportLinkInfo struct {
	ErpNumber  int64  `json:"erp_number"`
	ClientName string `json:"client_name"`
	Address    string `json:"address"`
	Price      string `json:"price"`
	Status     string `json:"status"`
}

// ReportPayload is an engineer's submitted field report.
type ReportPayload struct {
	Token       string `json:"token"`
	FinishPrice string `json:"finish_price"`
	HasRepeat   bool   `json:"has_repeat"`
	RepeatDate  string `json:"repeat_date,omitempty"`
	RepeatNote  string `json:"repeat_note"`
}

// ReportResponse acknowledges a submitted report.
type ReportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Status  string `json:"status,omitempty"`
}

// EngineerMotivation is a monthly incentive summary for one engineer.
type EngineerMotivation struct {
	EngineerID            int64   `json:"engineer_id"`
	EngineerName          string  `json:"engineer_name"`
	ReportsCount          int     `json:"reports_count"`
	PrimaryOrdersCount    int     `json:"primary_orders_count"`
	RepeatOrdersCount     int     `json:"repeat_orders_count"`
	OrdersTotalAmount     float64 `json:"orders_total_amount"`
	RepeatOrdersAmount    float64 `json:"repeat_orders_amount"`
	GrossProfit           float64 `json:"gross_profit"`
	AverageCheck          float64 `json:"average_check"`
	MotivationPercent     float64 `json:"motivation_percent"`
	TotalMotivationAmount float64 `json:"total_motivation_amount"`
	AggregatorPayout      float64 `json:"aggregator_payout"`
}

// EngineerPayout is a payout balance row for one engineer and month.
type EngineerPayout struct {
	EngineerID  int64   `json:"engineer_id"`
	FirstName   string  `json:"first_name"`
	SecondName  string  `json:"second_name"`
	Salary      float64 `json:"salary"`
	Advance     float64 `json:"advance"`
	PaidAdvance float64 `json:"paid_advance"`
	Left        float64 `json:"left"`
	Total       float64 `json:"total"`
	CanPay      bool    `json:"can_pay"`
	Month       string  `json:"month"`
}

// ProfitRow is net profit for one period bucket.
type ProfitRow struct {
	Period    string  `json:"period"`
	NetProfit float64 `json:"net_profit"`
}
