package kitchen_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-pos/internal/kitchen"
	"ms-pos/internal/models"
)

type stubLister struct {
	orders []models.Order
	err    error
}

func (s *stubLister) ListOrdersByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Order
	for _, o := range s.orders {
		for _, st := range statuses {
			if o.Status == st {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func makeOrder(id string, status models.OrderStatus, createdAt time.Time) models.Order {
	return models.Order{
		ID:        id,
		TableID:   "LOBBY",
		Source:    models.SourceDineIn,
		Status:    status,
		CreatedAt: createdAt,
	}
}

func TestProjectFIFOOrdering(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	lister := &stubLister{orders: []models.Order{
		makeOrder("o3", models.StatusPending, base.Add(2*time.Minute)),
		makeOrder("o1", models.StatusPending, base),
		makeOrder("o2", models.StatusPending, base.Add(time.Minute)),
	}}

	p := kitchen.NewProjector(lister).WithClock(func() time.Time { return base.Add(10 * time.Minute) })
	queues, err := p.Project(context.Background())
	require.NoError(t, err)

	require.Len(t, queues.Pending, 3)
	assert.Equal(t, "o1", queues.Pending[0].Order.ID)
	assert.Equal(t, "o2", queues.Pending[1].Order.ID)
	assert.Equal(t, "o3", queues.Pending[2].Order.ID)
}

func TestProjectSplitsAndExcludesStatuses(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	lister := &stubLister{orders: []models.Order{
		makeOrder("pending", models.StatusPending, base),
		makeOrder("cooking", models.StatusCooking, base),
		makeOrder("served", models.StatusServed, base),
		makeOrder("cancelled", models.StatusCancelled, base),
		makeOrder("completed", models.StatusCompleted, base),
	}}

	p := kitchen.NewProjector(lister).WithClock(func() time.Time { return base })
	queues, err := p.Project(context.Background())
	require.NoError(t, err)

	require.Len(t, queues.Pending, 1)
	require.Len(t, queues.Cooking, 1)
	assert.Equal(t, "pending", queues.Pending[0].Order.ID)
	assert.Equal(t, "cooking", queues.Cooking[0].Order.ID)
}

func TestProjectAgeMinutes(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	lister := &stubLister{orders: []models.Order{
		makeOrder("old", models.StatusCooking, base.Add(-25*time.Minute)),
		makeOrder("fresh", models.StatusCooking, base.Add(-30*time.Second)),
	}}

	p := kitchen.NewProjector(lister).WithClock(func() time.Time { return base })
	queues, err := p.Project(context.Background())
	require.NoError(t, err)

	require.Len(t, queues.Cooking, 2)
	assert.Equal(t, 25, queues.Cooking[0].AgeMinutes)
	assert.Equal(t, 0, queues.Cooking[1].AgeMinutes)
}

func TestProjectPropagatesStoreError(t *testing.T) {
	lister := &stubLister{err: errors.New("store down")}

	_, err := kitchen.NewProjector(lister).Project(context.Background())
	assert.Error(t, err)
}
