// Package kitchen derives the preparation-station views. Queues are never
// cached: every read recomputes from the authoritative order set, so the
// station is always consistent with what waitstaff see.
package kitchen

import (
	"context"
	"sort"
	"time"

	"ms-pos/internal/models"
)

// OrderLister is the slice of the order store this projector needs.
type OrderLister interface {
	ListOrdersByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error)
}

// QueueEntry is an order on a station queue plus its age, the urgency cue
// shown to cooks.
type QueueEntry struct {
	Order      models.Order `json:"order"`
	AgeMinutes int          `json:"age_minutes"`
}

// Queues holds the two disjoint station views, both oldest-first.
type Queues struct {
	Pending []QueueEntry `json:"pending"`
	Cooking []QueueEntry `json:"cooking"`
}

type Projector struct {
	Orders OrderLister

	now func() time.Time
}

func NewProjector(orders OrderLister) *Projector {
	return &Projector{Orders: orders, now: time.Now}
}

// WithClock overrides the time source; tests pin it.
func (p *Projector) WithClock(now func() time.Time) *Projector {
	p.now = now
	return p
}

// Project builds the pending and cooking queues. Orders in any other status
// are excluded; within each queue orders are sorted by creation time
// ascending, oldest cooking first.
func (p *Projector) Project(ctx context.Context) (*Queues, error) {
	orders, err := p.Orders.ListOrdersByStatus(ctx, models.StatusPending, models.StatusCooking)
	if err != nil {
		return nil, err
	}

	now := p.now()
	queues := &Queues{
		Pending: []QueueEntry{},
		Cooking: []QueueEntry{},
	}
	for _, o := range orders {
		entry := QueueEntry{Order: o, AgeMinutes: ageMinutes(o.CreatedAt, now)}
		switch o.Status {
		case models.StatusPending:
			queues.Pending = append(queues.Pending, entry)
		case models.StatusCooking:
			queues.Cooking = append(queues.Cooking, entry)
		}
	}

	sortByCreatedAt(queues.Pending)
	sortByCreatedAt(queues.Cooking)
	return queues, nil
}

func sortByCreatedAt(entries []QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Order.CreatedAt.Before(entries[j].Order.CreatedAt)
	})
}

func ageMinutes(createdAt, now time.Time) int {
	age := now.Sub(createdAt)
	if age < 0 {
		return 0
	}
	return int(age / time.Minute)
}
