package board

import (
	"time"

	"github.com/appetiteclub/expedite/pkg/enums/orderstatus"
)

// BoardOrder is one order as the board renders it: the retained copy plus
// derived, per-tick values that are never persisted.
type BoardOrder struct {
	Order
	MinutesWaiting int    `json:"minutes_waiting"`
	Urgency        Tier   `json:"urgency"`
	UrgencyLabel   string `json:"urgency_label"`
	UrgencyClass   string `json:"urgency_class"`
	Overdue        bool   `json:"overdue"`
	AllReady       bool   `json:"all_items_ready"`
	NewlyArrived   bool   `json:"newly_arrived"`
	NewlyReady     bool   `json:"newly_ready"`
}

// BoardColumn is one status column in display order.
type BoardColumn struct {
	Status string       `json:"status"`
	Label  string       `json:"label"`
	Orders []BoardOrder `json:"orders"`
}

// BoardView is the reactive read model handed to the UI layer.
type BoardView struct {
	Name         string       `json:"name"`
	Columns      []BoardColumn `json:"columns"`
	TierCounts   map[Tier]int `json:"tier_counts"`
	OverdueCount int          `json:"overdue_count"`
	GeneratedAt  time.Time    `json:"generated_at"`
	Poll         PollHealth   `json:"poll"`
}

// View projects the retained snapshot into the board read model. Elapsed
// times and tiers are recomputed from wall-clock now on every call.
func (e *Engine) View() BoardView {
	e.mu.RLock()
	snap := e.retained
	arrived := e.newlyArrived
	ready := e.newlyReady
	health := e.health
	e.mu.RUnlock()

	now := e.clock()
	orders := snap.Orders()
	SortForDisplay(orders, e.cfg.Reference)
	partitions := PartitionByStatus(orders, e.cfg.Statuses)

	view := BoardView{
		Name:        e.cfg.Name,
		Columns:     make([]BoardColumn, 0, len(e.cfg.Statuses)),
		TierCounts:  make(map[Tier]int),
		GeneratedAt: now,
		Poll:        health,
	}

	for _, status := range e.cfg.Statuses {
		column := BoardColumn{Status: status, Orders: make([]BoardOrder, 0, len(partitions[status]))}
		if s := orderstatus.ByName(status); s != nil {
			column.Label = s.Label()
		}
		for _, o := range partitions[status] {
			row := e.project(o, arrived, ready, now)
			view.TierCounts[row.Urgency]++
			if row.Overdue {
				view.OverdueCount++
			}
			column.Orders = append(column.Orders, row)
		}
		view.Columns = append(view.Columns, column)
	}
	return view
}

func (e *Engine) project(o *Order, arrived, ready map[OrderID]struct{}, now time.Time) BoardOrder {
	elapsed := elapsedMinutes(e.cfg.Reference.At(o), now)
	tier := e.cfg.Thresholds.Classify(elapsed)

	_, newlyArrived := arrived[o.ID]
	_, newlyReady := ready[o.ID]

	return BoardOrder{
		Order:          *o.Clone(),
		MinutesWaiting: elapsed,
		Urgency:        tier,
		UrgencyLabel:   tier.Label(),
		UrgencyClass:   tier.Class(),
		Overdue:        e.cfg.Thresholds.IsOverdue(elapsed),
		AllReady:       o.AllItemsReady(),
		NewlyArrived:   newlyArrived,
		NewlyReady:     newlyReady,
	}
}
