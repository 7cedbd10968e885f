// Package forms holds the client-side form state for order and engineer
// creation: field values, input filters, required-field validation, and
// submission payload composition. Validation failures never reach the
// network.
package forms

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"fieldline/internal/domain"
	"fieldline/internal/status"
)

var validate = validator.New()

// scheduledLayout matches the datetime-local wire format the backend
// accepts for scheduled_at composed from the form's date and time fields.
const scheduledLayout = "2006-01-02T15:04"

var (
	priceRe   = regexp.MustCompile(`^\d*(\.\d*)?$`)
	percentRe = regexp.MustCompile(`^\d*(\.\d*)?$`)
)

// OrderForm collects the mutable fields of an order before create/update.
// The zero slots come from NewOrderForm or FromOrder.
type OrderForm struct {
	AggregatorID    int64
	ProblemID       int64
	Price           string
	OurPercent      int
	ClientName      string
	Phones          []string
	Address         string
	WorkVolume      string
	Note            string
	Date            string // YYYY-MM-DD
	Time            string // HH:MM
	Status          string
	EngineerID      *int64
	RepeatID        *int64
	RepeatErpNumber *int64
}

// NewOrderForm returns a create-mode form: empty fields, one phone slot,
// the initial status.
func NewOrderForm() *OrderForm {
	return &OrderForm{
		Phones: []string{""},
		Status: status.New,
	}
}

// FromOrder returns an edit-mode form prefilled from an existing order.
func FromOrder(o domain.Order) *OrderForm {
	f := &OrderForm{
		AggregatorID:    o.AggregatorID,
		ProblemID:       o.ProblemID,
		Price:           o.Price,
		OurPercent:      o.OurPercent,
		ClientName:      o.ClientName,
		Phones:          append([]string(nil), o.Phones...),
		Address:         o.Address,
		WorkVolume:      o.WorkVolume,
		Note:            o.Note,
		Status:          o.Status,
		EngineerID:      o.EngineerID,
		RepeatID:        o.RepeatID,
		RepeatErpNumber: o.RepeatErpNumber,
	}
	if len(f.Phones) == 0 {
		f.Phones = []string{""}
	}
	if o.ScheduledAt != nil {
		f.Date = o.ScheduledAt.Format("2006-01-02")
		f.Time = o.ScheduledAt.Format("15:04")
	}
	return f
}

// SetPrice applies a price keystroke buffer; input that is not numeric with
// an optional decimal part is rejected and the field keeps its value.
func (f *OrderForm) SetPrice(input string) bool {
	if !priceRe.MatchString(input) {
		return false
	}
	f.Price = input
	return true
}

// SetPercent applies a commission-share input, rejecting non-numeric text
// and clamping the value to [0,100].
func (f *OrderForm) SetPercent(input string) bool {
	if input == "" {
		f.OurPercent = 0
		return true
	}
	if !percentRe.MatchString(input) {
		return false
	}
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return false
	}
	f.OurPercent = int(math.Round(math.Min(100, math.Max(0, v))))
	return true
}

// AddPhone appends an empty phone slot.
func (f *OrderForm) AddPhone() { f.Phones = append(f.Phones, "") }

// RemovePhone removes a phone slot; the last remaining slot cannot be
// removed.
func (f *OrderForm) RemovePhone(i int) error {
	if len(f.Phones) <= 1 {
		return errors.New("at least one phone slot is required")
	}
	if i < 0 || i >= len(f.Phones) {
		return fmt.Errorf("no phone slot %d", i)
	}
	f.Phones = append(f.Phones[:i], f.Phones[i+1:]...)
	return nil
}

// orderFields mirrors the required-field contract for validation; phones
// are validated after blank entries are stripped.
type orderFields struct {
	AggregatorID int64    `validate:"required,gt=0"`
	ProblemID    int64    `validate:"required,gt=0"`
	WorkVolume   string   `validate:"required"`
	Address      string   `validate:"required"`
	ClientName   string   `validate:"required"`
	Phones       []string `validate:"required,min=1,dive,required"`
	OurPercent   int      `validate:"gte=0,lte=100"`
}

var orderFieldLabels = map[string]string{
	"AggregatorID": "источник",
	"ProblemID":    "проблематика",
	"WorkVolume":   "объём работ",
	"Address":      "адрес",
	"ClientName":   "имя клиента",
	"Phones":       "телефон",
	"OurPercent":   "наш процент",
}

// Validate checks the required-field set. The error lists every missing or
// invalid field by its display name.
func (f *OrderForm) Validate() error {
	fields := orderFields{
		AggregatorID: f.AggregatorID,
		ProblemID:    f.ProblemID,
		WorkVolume:   strings.TrimSpace(f.WorkVolume),
		Address:      strings.TrimSpace(f.Address),
		ClientName:   strings.TrimSpace(f.ClientName),
		Phones:       f.cleanPhones(),
		OurPercent:   f.OurPercent,
	}
	err := validate.Struct(fields)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var missing []string
	seen := map[string]bool{}
	for _, fe := range verrs {
		label := orderFieldLabels[fe.StructField()]
		if label == "" {
			label = fe.StructField()
		}
		if !seen[label] {
			missing = append(missing, label)
			seen[label] = true
		}
	}
	return fmt.Errorf("не заполнено или неверно: %s", strings.Join(missing, ", "))
}

func (f *OrderForm) cleanPhones() []string {
	var out []string
	for _, p := range f.Phones {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// BuildRequest validates the form and composes the submission payload.
// Date and time merge into scheduled_at only when both are present; blank
// phone entries are stripped.
func (f *OrderForm) BuildRequest() (domain.CreateOrderRequest, error) {
	if err := f.Validate(); err != nil {
		return domain.CreateOrderRequest{}, err
	}
	st := f.Status
	if st == "" {
		st = status.New
	}
	req := domain.CreateOrderRequest{
		AggregatorID:    f.AggregatorID,
		ProblemID:       f.ProblemID,
		Price:           f.Price,
		OurPercent:      f.OurPercent,
		ClientName:      strings.TrimSpace(f.ClientName),
		Phones:          f.cleanPhones(),
		Address:         strings.TrimSpace(f.Address),
		WorkVolume:      strings.TrimSpace(f.WorkVolume),
		Note:            strings.TrimSpace(f.Note),
		Status:          st,
		EngineerID:      f.EngineerID,
		RepeatID:        f.RepeatID,
		RepeatErpNumber: f.RepeatErpNumber,
	}
	if f.Date != "" && f.Time != "" {
		composed := f.Date + "T" + f.Time
		if _, err := time.Parse(scheduledLayout, composed); err != nil {
			return domain.CreateOrderRequest{}, fmt.Errorf("неверные дата или время: %s", composed)
		}
		req.ScheduledAt = composed
	}
	return req, nil
}
