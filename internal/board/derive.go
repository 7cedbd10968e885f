package board

import (
	"sort"
	"time"

	"fieldline/internal/domain"
	"fieldline/internal/status"
)

// Filter returns the orders for a tab, filtered and sorted. In-progress
// tabs show the backlog oldest first, everything else newest first; orders
// without a parseable created_at sort as the epoch (treated as oldest).
func (b *Board) Filter(tab string) []domain.Order {
	var out []domain.Order
	for _, o := range b.orders {
		if status.TabMatches(tab, o.Status) {
			out = append(out, o)
		}
	}
	asc := status.TabSortsAscending(tab)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := createdAtOrEpoch(out[i]), createdAtOrEpoch(out[j])
		if asc {
			return ti.Before(tj)
		}
		return tj.Before(ti)
	})
	return out
}

func createdAtOrEpoch(o domain.Order) time.Time {
	if o.CreatedAt == nil {
		return time.Unix(0, 0).UTC()
	}
	return *o.CreatedAt
}

// Unassigned returns the pool of orders offered for initial assignment:
// no engineer and still in the initial status. Orders that come back from
// an engineer in a later status stay out of the pool on purpose.
func (b *Board) Unassigned() []domain.Order {
	var out []domain.Order
	for _, o := range b.orders {
		if !o.Assigned() && o.Status == status.New {
			out = append(out, o)
		}
	}
	return out
}

// EngineersOrdered returns the engineer rows for the grid: on-duty
// engineers first, relative order preserved within each group.
func (b *Board) EngineersOrdered() []domain.Engineer {
	out := make([]domain.Engineer, 0, len(b.engineers))
	for _, e := range b.engineers {
		if e.IsWorking {
			out = append(out, e)
		}
	}
	for _, e := range b.engineers {
		if !e.IsWorking {
			out = append(out, e)
		}
	}
	return out
}
