package board

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"fieldline/internal/domain"
	"fieldline/internal/status"
)

type fakeBackend struct {
	assignErr   error
	assignCalls int
	lastAssign  [2]int64
	onAssign    func()

	unassignErr error
	cancelErr   error
	approveErr  error
	toggleErr   error

	engineer domain.Engineer
}

func (f *fakeBackend) AssignOrder(ctx context.Context, erpNumber, engineerID int64) (domain.Order, error) {
	f.assignCalls++
	f.lastAssign = [2]int64{erpNumber, engineerID}
	if f.onAssign != nil {
		f.onAssign()
	}
	if f.assignErr != nil {
		return domain.Order{}, f.assignErr
	}
	eng := f.engineer
	if eng.ID == 0 {
		eng = domain.Engineer{ID: engineerID, FirstName: "Иван", IsApproved: true}
	}
	return domain.Order{
		ErpNumber:  erpNumber,
		EngineerID: &eng.ID,
		Engineer:   &eng,
		Status:     status.InProccess,
	}, nil
}

func (f *fakeBackend) UnassignOrder(ctx context.Context, erpNumber int64) (domain.Order, error) {
	if f.unassignErr != nil {
		return domain.Order{}, f.unassignErr
	}
	return domain.Order{ErpNumber: erpNumber, Status: status.New}, nil
}

func (f *fakeBackend) CancelOrder(ctx context.Context, erpNumber int64) (domain.Order, error) {
	if f.cancelErr != nil {
		return domain.Order{}, f.cancelErr
	}
	return domain.Order{ErpNumber: erpNumber, Status: status.Canceled}, nil
}

func (f *fakeBackend) ApproveEngineer(ctx context.Context, engineerID int64) (domain.Engineer, error) {
	if f.approveErr != nil {
		return domain.Engineer{}, f.approveErr
	}
	return domain.Engineer{ID: engineerID, IsApproved: true}, nil
}

func (f *fakeBackend) ToggleWorking(ctx context.Context, engineerID int64) (domain.Engineer, error) {
	if f.toggleErr != nil {
		return domain.Engineer{}, f.toggleErr
	}
	return domain.Engineer{ID: engineerID, IsApproved: true, IsWorking: true}, nil
}

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func order(erp int64, st string, createdAt *time.Time) domain.Order {
	return domain.Order{ErpNumber: erp, Status: st, CreatedAt: createdAt}
}

func TestFilterTabs(t *testing.T) {
	b := New(&fakeBackend{})
	engID := int64(5)
	b.SetOrders([]domain.Order{
		order(1, status.New, ts("2026-03-01T10:00:00Z")),
		order(2, status.InProccess, ts("2026-03-01T12:00:00Z")),
		order(3, status.Working, ts("2026-03-01T09:00:00Z")),
		order(4, status.Canceled, ts("2026-03-01T11:00:00Z")),
		order(5, status.ClosedFinally, ts("2026-03-01T08:00:00Z")),
		{ErpNumber: 6, Status: status.New, EngineerID: &engID, Engineer: &domain.Engineer{ID: engID}},
	})

	all := b.Filter(status.TabAll)
	if len(all) != 6 {
		t.Fatalf("all tab: got %d orders, want 6", len(all))
	}

	inProgress := b.Filter(status.TabInProgress)
	if len(inProgress) != 2 {
		t.Fatalf("in_progress tab: got %d orders, want 2", len(inProgress))
	}
	if inProgress[0].ErpNumber != 3 || inProgress[1].ErpNumber != 2 {
		t.Fatalf("in_progress tab not oldest-first: %d, %d", inProgress[0].ErpNumber, inProgress[1].ErpNumber)
	}

	closed := b.Filter(status.TabClosed)
	if len(closed) != 2 {
		t.Fatalf("closed tab: got %d orders, want 2", len(closed))
	}
	if closed[0].ErpNumber != 4 || closed[1].ErpNumber != 5 {
		t.Fatalf("closed tab not newest-first: %d, %d", closed[0].ErpNumber, closed[1].ErpNumber)
	}

	single := b.Filter(status.New)
	if len(single) != 2 {
		t.Fatalf("new tab: got %d orders, want 2", len(single))
	}
}

func TestFilterMissingCreatedAtSortsOldest(t *testing.T) {
	b := New(&fakeBackend{})
	b.SetOrders([]domain.Order{
		order(1, status.InProccess, ts("2026-03-01T12:00:00Z")),
		order(2, status.InProccess, nil),
	})
	got := b.Filter(status.TabInProgress)
	if got[0].ErpNumber != 2 {
		t.Fatalf("order without created_at should sort first in ascending tab, got %d", got[0].ErpNumber)
	}
}

func TestFilterIdempotent(t *testing.T) {
	b := New(&fakeBackend{})
	b.SetOrders([]domain.Order{
		order(1, status.New, ts("2026-03-01T10:00:00Z")),
		order(2, status.New, ts("2026-03-01T10:00:00Z")),
		order(3, status.New, ts("2026-03-01T09:00:00Z")),
	})
	first := b.Filter(status.TabAll)
	second := b.Filter(status.TabAll)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("filtering twice gave different results: %v vs %v", first, second)
	}
	// Equal timestamps keep their input order.
	if first[0].ErpNumber != 1 || first[1].ErpNumber != 2 || first[2].ErpNumber != 3 {
		t.Fatalf("sort not stable for equal timestamps: %v", first)
	}
}

func TestUnassignedPool(t *testing.T) {
	b := New(&fakeBackend{})
	engID := int64(7)
	b.SetOrders([]domain.Order{
		order(1, status.New, nil),
		{ErpNumber: 2, Status: status.New, EngineerID: &engID, Engineer: &domain.Engineer{ID: engID}},
		order(3, status.Canceled, nil),
		order(4, status.Working, nil),
	})
	pool := b.Unassigned()
	if len(pool) != 1 || pool[0].ErpNumber != 1 {
		t.Fatalf("pool = %v, want only order 1", pool)
	}
}

func TestEngineersOrderedOnDutyFirst(t *testing.T) {
	b := New(&fakeBackend{})
	b.SetEngineers([]domain.Engineer{
		{ID: 1, FirstName: "a"},
		{ID: 2, FirstName: "b", IsWorking: true},
		{ID: 3, FirstName: "c"},
		{ID: 4, FirstName: "d", IsWorking: true},
	})
	got := b.EngineersOrdered()
	want := []int64{2, 4, 1, 3}
	for i, e := range got {
		if e.ID != want[i] {
			t.Fatalf("order at %d: got engineer %d, want %d", i, e.ID, want[i])
		}
	}
}

func TestOrdersInSlot(t *testing.T) {
	b := New(&fakeBackend{})
	eng := &domain.Engineer{ID: 9}
	at := func(hour int) *time.Time {
		tm := time.Date(2026, 3, 2, hour, 30, 0, 0, time.Local)
		return &tm
	}
	b.SetOrders([]domain.Order{
		{ErpNumber: 1, Status: status.InProccess, Engineer: eng, ScheduledAt: at(9)},
		{ErpNumber: 2, Status: status.InProccess, Engineer: eng, ScheduledAt: at(9)},
		{ErpNumber: 3, Status: status.InProccess, Engineer: eng, ScheduledAt: at(14)},
		{ErpNumber: 4, Status: status.InProccess, Engineer: &domain.Engineer{ID: 8}, ScheduledAt: at(9)},
		{ErpNumber: 5, Status: status.InProccess, Engineer: eng},
	})
	slot := b.OrdersInSlot(9, "09:00")
	if len(slot) != 2 || slot[0].ErpNumber != 1 || slot[1].ErpNumber != 2 {
		t.Fatalf("09:00 slot = %v, want orders 1 and 2 in input order", slot)
	}
	if got := b.OrdersInSlot(9, "14:00"); len(got) != 1 || got[0].ErpNumber != 3 {
		t.Fatalf("14:00 slot = %v, want order 3", got)
	}
	if got := b.OrdersInSlot(9, "08:00"); len(got) != 0 {
		t.Fatalf("08:00 slot = %v, want empty", got)
	}
}

func TestHoursCoverWorkingDay(t *testing.T) {
	if len(Hours) != 16 {
		t.Fatalf("got %d hour slots, want 16", len(Hours))
	}
	if Hours[0] != "08:00" || Hours[len(Hours)-1] != "23:00" {
		t.Fatalf("hour range %s..%s, want 08:00..23:00", Hours[0], Hours[len(Hours)-1])
	}
}

func TestAssignWithoutSelection(t *testing.T) {
	backend := &fakeBackend{}
	b := New(backend)
	b.SetOrders([]domain.Order{order(1, status.New, nil)})

	err := b.Assign(context.Background(), 1)
	if !errors.Is(err, ErrNoEngineerSelected) {
		t.Fatalf("err = %v, want ErrNoEngineerSelected", err)
	}
	if backend.assignCalls != 0 {
		t.Fatalf("backend called %d times, want 0", backend.assignCalls)
	}
	if b.ItemMessage(1) == "" {
		t.Fatal("expected an inline hint on the order")
	}
}

func TestAssignSuccessMergesAndClearsSelection(t *testing.T) {
	backend := &fakeBackend{}
	b := New(backend)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	b.Now = func() time.Time { return now }
	b.SetOrders([]domain.Order{order(1, status.New, nil), order(2, status.New, nil)})
	b.SelectEngineer(1, 5)

	if err := b.Assign(context.Background(), 1); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if backend.lastAssign != [2]int64{1, 5} {
		t.Fatalf("backend got %v, want [1 5]", backend.lastAssign)
	}
	orders := b.Orders()
	if len(orders) != 2 {
		t.Fatalf("order count changed to %d", len(orders))
	}
	if orders[0].Status != status.InProccess || orders[0].Engineer == nil || orders[0].Engineer.ID != 5 {
		t.Fatalf("order 1 not merged from response: %+v", orders[0])
	}
	if orders[1].Status != status.New {
		t.Fatalf("unrelated order touched: %+v", orders[1])
	}
	if b.SelectedEngineer(1) != 0 {
		t.Fatal("selection should be cleared after assign")
	}
	for _, o := range b.Unassigned() {
		if o.ErpNumber == 1 {
			t.Fatal("assigned order still in the unassigned pool")
		}
	}
	for _, h := range Hours {
		if len(b.OrdersInSlot(5, h)) != 0 {
			t.Fatalf("unscheduled order landed in slot %s", h)
		}
	}
	n := b.Notifier.Current(now)
	if n == nil || !n.Success {
		t.Fatalf("expected success notification, got %+v", n)
	}
}

func TestAssignFailureLeavesStateUntouched(t *testing.T) {
	backend := &fakeBackend{assignErr: errors.New("boom")}
	b := New(backend)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	b.Now = func() time.Time { return now }
	initial := []domain.Order{order(1, status.New, ts("2026-03-01T10:00:00Z")), order(2, status.Working, nil)}
	b.SetOrders(initial)
	b.SelectEngineer(1, 5)

	err := b.Assign(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if !reflect.DeepEqual(b.Orders(), initial) {
		t.Fatalf("orders changed after failed assign:\n got %+v\nwant %+v", b.Orders(), initial)
	}
	if b.SelectedEngineer(1) != 5 {
		t.Fatal("selection should survive a failed assign")
	}
	n := b.Notifier.Current(now)
	if n == nil || n.Success {
		t.Fatalf("expected failure notification, got %+v", n)
	}
	if b.ItemMessage(1) == "" {
		t.Fatal("expected an inline failure message")
	}
}

func TestAssignRejectsOverlap(t *testing.T) {
	backend := &fakeBackend{}
	b := New(backend)
	b.SetOrders([]domain.Order{order(1, status.New, nil)})
	b.SelectEngineer(1, 5)

	var nested error
	backend.onAssign = func() {
		backend.onAssign = nil
		b.SelectEngineer(1, 6)
		nested = b.Assign(context.Background(), 1)
	}
	if err := b.Assign(context.Background(), 1); err != nil {
		t.Fatalf("outer assign: %v", err)
	}
	if !errors.Is(nested, ErrBusy) {
		t.Fatalf("nested assign err = %v, want ErrBusy", nested)
	}
	if backend.assignCalls != 1 {
		t.Fatalf("backend called %d times, want 1", backend.assignCalls)
	}
}

func TestUnassignAndCancel(t *testing.T) {
	backend := &fakeBackend{}
	b := New(backend)
	engID := int64(5)
	b.SetOrders([]domain.Order{{
		ErpNumber:  1,
		Status:     status.InProccess,
		EngineerID: &engID,
		Engineer:   &domain.Engineer{ID: engID},
	}})

	if err := b.Unassign(context.Background(), 1); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if got := b.Orders()[0]; got.Status != status.New || got.Engineer != nil {
		t.Fatalf("after unassign: %+v", got)
	}

	if err := b.Cancel(context.Background(), 1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := b.Orders()[0]; got.Status != status.Canceled {
		t.Fatalf("after cancel: %+v", got)
	}
}

func TestApproveAndToggleMergeEngineer(t *testing.T) {
	backend := &fakeBackend{}
	b := New(backend)
	b.SetEngineers([]domain.Engineer{{ID: 3, FirstName: "Пётр"}})

	if err := b.Approve(context.Background(), 3); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := b.ToggleWorking(context.Background(), 3); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	got := b.EngineersOrdered()[0]
	if !got.IsApproved || !got.IsWorking {
		t.Fatalf("engineer not merged: %+v", got)
	}
}

func TestNotifierReplaceAndExpire(t *testing.T) {
	n := NewNotifier()
	t0 := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	n.Publish(true, "первое", t0)
	n.Publish(false, "второе", t0.Add(100*time.Millisecond))

	cur := n.Current(t0.Add(200 * time.Millisecond))
	if cur == nil || cur.Message != "второе" {
		t.Fatalf("expected the later notification, got %+v", cur)
	}
	if got := n.Current(t0.Add(100*time.Millisecond + DismissAfter)); got != nil {
		t.Fatalf("notification should expire after %v, got %+v", DismissAfter, got)
	}
	n.Publish(true, "третье", t0)
	n.Clear()
	if n.Current(t0) != nil {
		t.Fatal("cleared notification still visible")
	}
}
