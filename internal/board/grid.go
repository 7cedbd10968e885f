package board

import (
	"fmt"

	"fieldline/internal/domain"
)

// Hours are the schedule grid slots, 16 one-hour buckets.
var Hours = []string{
	"08:00", "09:00", "10:00", "11:00", "12:00",
	"13:00", "14:00", "15:00", "16:00", "17:00",
	"18:00", "19:00", "20:00", "21:00", "22:00", "23:00",
}

// OrdersInSlot returns the orders stacked in one (engineer, hour) cell: the
// order's engineer matches and the local hour of scheduled_at equals the
// bucket. Orders without a scheduled time appear in no cell.
func (b *Board) OrdersInSlot(engineerID int64, hour string) []domain.Order {
	var out []domain.Order
	for _, o := range b.orders {
		if o.Engineer == nil || o.Engineer.ID != engineerID || o.ScheduledAt == nil {
			continue
		}
		if fmt.Sprintf("%02d:00", o.ScheduledAt.Local().Hour()) == hour {
			out = append(out, o)
		}
	}
	return out
}
