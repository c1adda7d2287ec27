package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"ms-pos/internal/models"
)

// Run creates the engine's tables if they do not exist. Schema is owned by
// the bun models; there is no separate migration file set.
func Run(ctx context.Context, db *bun.DB) error {
	tables := []any{
		(*models.Order)(nil),
		(*models.OrderItem)(nil),
		(*models.KTVRoom)(nil),
		(*models.KTVSession)(nil),
		(*models.SessionItem)(nil),
		(*models.HotelRoom)(nil),
		(*models.MenuItem)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

// Seed loads a minimal working set for a fresh install: a few KTV rooms,
// hotel rooms and menu items. Existing rows are left untouched.
func Seed(ctx context.Context, db *bun.DB) error {
	rooms := []models.KTVRoom{
		{ID: "VIP01", Name: "VIP Room 1", HourlyRate: 88, Status: models.RoomAvailable},
		{ID: "VIP02", Name: "VIP Room 2", HourlyRate: 128, Status: models.RoomAvailable},
		{ID: "PARTY01", Name: "Party Room 1", HourlyRate: 198, Status: models.RoomAvailable},
	}
	if _, err := db.NewInsert().Model(&rooms).Ignore().Exec(ctx); err != nil {
		return fmt.Errorf("seed ktv rooms: %w", err)
	}

	hotelRooms := []models.HotelRoom{
		{RoomNumber: "201", Floor: 2, Status: models.HotelVacant},
		{RoomNumber: "202", Floor: 2, Status: models.HotelVacant},
		{RoomNumber: "301", Floor: 3, Status: models.HotelVacant},
	}
	if _, err := db.NewInsert().Model(&hotelRooms).Ignore().Exec(ctx); err != nil {
		return fmt.Errorf("seed hotel rooms: %w", err)
	}

	menuItems := []models.MenuItem{
		{ID: "dish-rice", Name: "Fried Rice", Price: 20, Category: models.CategoryFood, Available: true},
		{ID: "dish-pork", Name: "Braised Pork", Price: 60, Category: models.CategoryFood, Available: true},
		{ID: "drink-beer", Name: "Beer Tower", Price: 50, Category: models.CategoryDrink, KTVOrderable: true, Available: true},
		{ID: "drink-tea", Name: "Green Tea", Price: 5, Category: models.CategoryDrink, KTVOrderable: true, Available: true},
		{ID: "snack-fruit", Name: "Fruit Plate", Price: 38, Category: models.CategoryFood, KTVOrderable: true, Available: true},
		{ID: "retail-water", Name: "Mineral Water", Price: 3, Category: models.CategoryRetail, Available: true},
	}
	if _, err := db.NewInsert().Model(&menuItems).Ignore().Exec(ctx); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}

	return nil
}
