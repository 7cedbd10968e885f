package forms

import (
	"strings"
	"testing"
	"time"

	"fieldline/internal/domain"
	"fieldline/internal/status"
)

func validOrderForm() *OrderForm {
	f := NewOrderForm()
	f.AggregatorID = 1
	f.ProblemID = 2
	f.ClientName = "Иван Иванов"
	f.Phones = []string{"+79990001122"}
	f.Address = "Ленина 1"
	f.WorkVolume = "диагностика"
	return f
}

func TestNewOrderFormDefaults(t *testing.T) {
	f := NewOrderForm()
	if len(f.Phones) != 1 || f.Phones[0] != "" {
		t.Fatalf("new form phones = %v, want one empty slot", f.Phones)
	}
	if f.Status != status.New {
		t.Fatalf("new form status = %q", f.Status)
	}
}

func TestValidateListsMissingFields(t *testing.T) {
	f := NewOrderForm()
	err := f.Validate()
	if err == nil {
		t.Fatal("empty form should not validate")
	}
	msg := err.Error()
	for _, label := range []string{"источник", "проблематика", "имя клиента", "телефон", "адрес", "объём работ"} {
		if !strings.Contains(msg, label) {
			t.Errorf("error %q misses field %q", msg, label)
		}
	}
}

func TestValidatePhonesAllBlank(t *testing.T) {
	f := validOrderForm()
	f.Phones = []string{"", "   "}
	err := f.Validate()
	if err == nil || !strings.Contains(err.Error(), "телефон") {
		t.Fatalf("blank-only phones should fail on телефон, got %v", err)
	}
}

func TestBuildRequestStripsBlankPhones(t *testing.T) {
	f := validOrderForm()
	f.Phones = []string{"+79990001122", "", "  ", "+79990003344"}
	req, err := f.BuildRequest()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []string{"+79990001122", "+79990003344"}
	if len(req.Phones) != len(want) {
		t.Fatalf("phones = %v, want %v", req.Phones, want)
	}
	for i := range want {
		if req.Phones[i] != want[i] {
			t.Fatalf("phones = %v, want %v", req.Phones, want)
		}
	}
}

func TestBuildRequestScheduledAt(t *testing.T) {
	f := validOrderForm()
	f.Date = "2026-03-05"
	f.Time = "14:00"
	req, err := f.BuildRequest()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.ScheduledAt != "2026-03-05T14:00" {
		t.Fatalf("scheduled_at = %q", req.ScheduledAt)
	}

	// Date without time stays unscheduled.
	f.Time = ""
	req, err = f.BuildRequest()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.ScheduledAt != "" {
		t.Fatalf("scheduled_at = %q, want empty without time", req.ScheduledAt)
	}

	f.Date = ""
	f.Time = "14:00"
	req, err = f.BuildRequest()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.ScheduledAt != "" {
		t.Fatalf("scheduled_at = %q, want empty without date", req.ScheduledAt)
	}

	f.Date = "garbage"
	f.Time = "14:00"
	if _, err := f.BuildRequest(); err == nil {
		t.Fatal("bad date should fail")
	}
}

func TestSetPriceFiltersInput(t *testing.T) {
	f := NewOrderForm()
	for _, in := range []string{"", "1500", "1500.", "1500.50", ".5"} {
		if !f.SetPrice(in) {
			t.Errorf("SetPrice(%q) rejected", in)
		}
		if f.Price != in {
			t.Errorf("price = %q after SetPrice(%q)", f.Price, in)
		}
	}
	f.SetPrice("1500")
	for _, in := range []string{"15oo", "15,00", "-5", "1500.50.1", "1e3"} {
		if f.SetPrice(in) {
			t.Errorf("SetPrice(%q) accepted", in)
		}
		if f.Price != "1500" {
			t.Errorf("rejected input %q changed price to %q", in, f.Price)
		}
	}
}

func TestSetPercentClamps(t *testing.T) {
	f := NewOrderForm()
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"40", 40},
		{"40.6", 41},
		{"150", 100},
		{"0", 0},
	}
	for _, c := range cases {
		if !f.SetPercent(c.in) {
			t.Errorf("SetPercent(%q) rejected", c.in)
			continue
		}
		if f.OurPercent != c.want {
			t.Errorf("SetPercent(%q) = %d, want %d", c.in, f.OurPercent, c.want)
		}
	}
	f.OurPercent = 40
	if f.SetPercent("abc") {
		t.Error("SetPercent(abc) accepted")
	}
	if f.OurPercent != 40 {
		t.Errorf("rejected input changed percent to %d", f.OurPercent)
	}
}

func TestPercentOutOfRangeFailsValidation(t *testing.T) {
	f := validOrderForm()
	f.OurPercent = 120
	if err := f.Validate(); err == nil || !strings.Contains(err.Error(), "наш процент") {
		t.Fatalf("percent 120 should fail, got %v", err)
	}
}

func TestPhoneSlots(t *testing.T) {
	f := NewOrderForm()
	f.AddPhone()
	if len(f.Phones) != 2 {
		t.Fatalf("phones = %v", f.Phones)
	}
	if err := f.RemovePhone(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := f.RemovePhone(0); err == nil {
		t.Fatal("removing the last slot should fail")
	}
	if err := f.RemovePhone(5); err == nil {
		t.Fatal("removing a missing slot should fail")
	}
}

func TestFromOrderPrefill(t *testing.T) {
	scheduled := time.Date(2026, 3, 5, 14, 0, 0, 0, time.Local)
	engID := int64(7)
	o := domain.Order{
		ErpNumber:    1001,
		AggregatorID: 3,
		ProblemID:    4,
		Price:        "2500",
		OurPercent:   40,
		ClientName:   "Анна",
		Phones:       []string{"+79990001122"},
		Address:      "Мира 5",
		WorkVolume:   "замена",
		ScheduledAt:  &scheduled,
		EngineerID:   &engID,
		Status:       status.InProccess,
	}
	f := FromOrder(o)
	if f.Date != "2026-03-05" || f.Time != "14:00" {
		t.Fatalf("prefill split %q / %q", f.Date, f.Time)
	}
	if f.Status != status.InProccess || f.EngineerID == nil || *f.EngineerID != 7 {
		t.Fatalf("prefill lost status/engineer: %+v", f)
	}
	// Mutating the form must not touch the source order.
	f.Phones[0] = "other"
	if o.Phones[0] != "+79990001122" {
		t.Fatal("form shares phone slice with source order")
	}

	empty := FromOrder(domain.Order{})
	if len(empty.Phones) != 1 {
		t.Fatalf("prefill of phoneless order should leave one slot, got %v", empty.Phones)
	}
}

func TestEngineerForm(t *testing.T) {
	f := &EngineerForm{}
	if err := f.Validate(); err == nil || !strings.Contains(err.Error(), "имя") {
		t.Fatalf("empty engineer form: %v", err)
	}
	f.FirstName = "Пётр"
	f.Username = "petr"
	f.TelegramID = "abc"
	if err := f.Validate(); err == nil {
		t.Fatal("non-numeric telegram id should fail")
	}
	f.TelegramID = "123456"
	req, err := f.BuildRequest()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if req.TelegramID != 123456 {
		t.Fatalf("telegram id = %d", req.TelegramID)
	}
}
