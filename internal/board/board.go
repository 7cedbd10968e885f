// Package board is the dispatcher's view model: it owns the last-fetched
// order and engineer lists, derives the tab views, the unassigned pool and
// the hour grid from them, and runs the mutation actions against the
// backend with merge-on-success semantics.
//
// A Board is a single-owner structure: it is driven from one goroutine (the
// CLI command loop), mirroring the event-loop model of the dashboard it
// replaces. Mutations either merge the single entity the server returned or
// leave the lists exactly as they were.
package board

import (
	"context"
	"fmt"
	"time"

	"fieldline/internal/domain"
)

// Backend is the slice of the API client the board needs for its actions.
type Backend interface {
	AssignOrder(ctx context.Context, erpNumber, engineerID int64) (domain.Order, error)
	UnassignOrder(ctx context.Context, erpNumber int64) (domain.Order, error)
	CancelOrder(ctx context.Context, erpNumber int64) (domain.Order, error)
	ApproveEngineer(ctx context.Context, engineerID int64) (domain.Engineer, error)
	ToggleWorking(ctx context.Context, engineerID int64) (domain.Engineer, error)
}

// Board holds the dispatcher's working state for one day view.
type Board struct {
	backend   Backend
	orders    []domain.Order
	engineers []domain.Engineer

	pending  map[string]bool
	selected map[int64]int64 // erp number -> chosen engineer id
	itemMsgs map[int64]string

	Notifier *Notifier
	Now      func() time.Time
}

// New creates an empty board over the given backend.
func New(backend Backend) *Board {
	return &Board{
		backend:  backend,
		pending:  map[string]bool{},
		selected: map[int64]int64{},
		itemMsgs: map[int64]string{},
		Notifier: NewNotifier(),
		Now:      time.Now,
	}
}

func (b *Board) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// SetOrders replaces the whole order list with a fresh server snapshot.
func (b *Board) SetOrders(orders []domain.Order) {
	b.orders = append([]domain.Order(nil), orders...)
}

// SetEngineers replaces the whole engineer list.
func (b *Board) SetEngineers(engineers []domain.Engineer) {
	b.engineers = append([]domain.Engineer(nil), engineers...)
}

// Orders returns the current order list as last reconciled.
func (b *Board) Orders() []domain.Order { return b.orders }

// mergeOrder replaces the matching order by erp number. The whole list is
// never refetched on a mutation; the one returned entity is applied.
func (b *Board) mergeOrder(updated domain.Order) {
	for i, o := range b.orders {
		if o.ErpNumber == updated.ErpNumber {
			b.orders[i] = updated
			return
		}
	}
	b.orders = append(b.orders, updated)
}

func (b *Board) mergeEngineer(updated domain.Engineer) {
	for i, e := range b.engineers {
		if e.ID == updated.ID {
			b.engineers[i] = updated
			return
		}
	}
	b.engineers = append(b.engineers, updated)
}

func orderKey(erpNumber int64) string { return fmt.Sprintf("order/%d", erpNumber) }
func engineerKey(engineerID int64) string { return fmt.Sprintf("engineer/%d", engineerID) }

// OrderBusy reports whether a mutation on the order is in flight; the UI is
// expected to disable the triggering control while true.
func (b *Board) OrderBusy(erpNumber int64) bool { return b.pending[orderKey(erpNumber)] }

// EngineerBusy reports whether a mutation on the engineer is in flight.
func (b *Board) EngineerBusy(engineerID int64) bool { return b.pending[engineerKey(engineerID)] }

// SelectEngineer remembers the engineer picked for an order in the
// unassigned pool; Assign consumes the selection.
func (b *Board) SelectEngineer(erpNumber, engineerID int64) {
	if engineerID == 0 {
		delete(b.selected, erpNumber)
		return
	}
	b.selected[erpNumber] = engineerID
}

// SelectedEngineer returns the engineer chosen for an order, 0 if none.
func (b *Board) SelectedEngineer(erpNumber int64) int64 { return b.selected[erpNumber] }

// ItemMessage returns the inline status message for an order, if any.
func (b *Board) ItemMessage(erpNumber int64) string { return b.itemMsgs[erpNumber] }
