package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-pos/internal/models"
	"ms-pos/internal/order/db"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []any{(*models.Order)(nil), (*models.OrderItem)(nil)} {
		if err := bunDB.ResetModel(ctx, model); err != nil {
			t.Fatalf("Failed to reset model: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}
}

func sampleOrder(id string, createdAt time.Time) *models.Order {
	return &models.Order{
		ID:      id,
		TableID: "LOBBY",
		Source:  models.SourceDineIn,
		Status:  models.StatusPending,
		Items: []models.OrderItem{
			{ID: id + "-item-1", OrderID: id, Name: "Fried Rice", Price: 20, Quantity: 2, Position: 0},
			{ID: id + "-item-2", OrderID: id, Name: "Green Tea", Price: 5, Quantity: 1, Position: 1},
		},
		TotalAmount: 49.5,
		Version:     1,
		CreatedAt:   createdAt,
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	order := sampleOrder("order-1", time.Now().Round(time.Second))
	if err := store.CreateOrder(ctx, order); err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	got, err := store.GetOrderByID(ctx, "order-1")
	if err != nil {
		t.Fatalf("Failed to retrieve order: %v", err)
	}

	if got.ID != order.ID {
		t.Errorf("Expected order ID %s, got %s", order.ID, got.ID)
	}
	if got.Status != models.StatusPending {
		t.Errorf("Expected status %s, got %s", models.StatusPending, got.Status)
	}
	if got.TotalAmount != order.TotalAmount {
		t.Errorf("Expected total %f, got %f", order.TotalAmount, got.TotalAmount)
	}
	if len(got.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].Name != "Fried Rice" || got.Items[1].Name != "Green Tea" {
		t.Errorf("Items came back out of position: %+v", got.Items)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.GetOrderByID(context.Background(), "missing")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateOrderVersionGuard(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	order := sampleOrder("order-2", time.Now().Round(time.Second))
	if err := store.CreateOrder(ctx, order); err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	updated := *order
	updated.Status = models.StatusCooking
	updated.Version = 2
	if err := store.UpdateOrder(ctx, &updated, 1); err != nil {
		t.Fatalf("Expected update with matching version to succeed: %v", err)
	}

	// A second writer still holding version 1 must lose.
	stale := *order
	stale.Status = models.StatusCancelled
	stale.Version = 2
	err := store.UpdateOrder(ctx, &stale, 1)
	if !errors.Is(err, db.ErrVersionConflict) {
		t.Errorf("Expected ErrVersionConflict, got %v", err)
	}

	got, err := store.GetOrderByID(ctx, "order-2")
	if err != nil {
		t.Fatalf("Failed to retrieve order: %v", err)
	}
	if got.Status != models.StatusCooking {
		t.Errorf("Stale write leaked through: status = %s", got.Status)
	}
}

func TestListOrdersByStatus(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().Round(time.Second)
	first := sampleOrder("order-a", base.Add(-2*time.Minute))
	second := sampleOrder("order-b", base.Add(-1*time.Minute))
	second.Status = models.StatusCooking
	third := sampleOrder("order-c", base)
	third.Status = models.StatusCompleted

	for _, o := range []*models.Order{first, second, third} {
		if err := store.CreateOrder(ctx, o); err != nil {
			t.Fatalf("Failed to create order %s: %v", o.ID, err)
		}
	}

	open, err := store.ListOrdersByStatus(ctx, models.StatusPending, models.StatusCooking)
	if err != nil {
		t.Fatalf("Failed to list orders: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("Expected 2 open orders, got %d", len(open))
	}
	if open[0].ID != "order-a" || open[1].ID != "order-b" {
		t.Errorf("Expected createdAt-ascending ordering, got [%s %s]", open[0].ID, open[1].ID)
	}
}
