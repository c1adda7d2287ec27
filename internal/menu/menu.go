// Package menu is the catalog the engine snapshots prices from. Category is
// an explicit tag and KTV eligibility a capability flag, not a string match.
package menu

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-pos/internal/models"
)

var ErrItemNotFound = errors.New("menu item not found")

type Store struct {
	Bun *bun.DB
}

func (s *Store) GetItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.Bun.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Where("available = ?", true).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.Bun.NewSelect().
		Model(&items).
		Where("available = ?", true).
		Order("category ASC", "name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListKTVItems returns the subset orderable from a KTV room.
func (s *Store) ListKTVItems(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.Bun.NewSelect().
		Model(&items).
		Where("available = ?", true).
		Where("ktv_orderable = ?", true).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}
