// Package hotel tracks guest-room occupancy. Occupancy is deliberately
// decoupled from the order engine: room service can be ordered against any
// room regardless of its status.
package hotel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-pos/internal/models"
)

var (
	ErrRoomNotFound = errors.New("hotel room not found")
	ErrAlreadySet   = errors.New("room is already in that state")
)

type Store struct {
	Bun *bun.DB
}

func (s *Store) GetRoom(ctx context.Context, roomNumber string) (*models.HotelRoom, error) {
	var room models.HotelRoom
	err := s.Bun.NewSelect().
		Model(&room).
		Where("room_number = ?", roomNumber).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]models.HotelRoom, error) {
	var rooms []models.HotelRoom
	err := s.Bun.NewSelect().
		Model(&rooms).
		Order("floor ASC", "room_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// SetStatus flips a room between vacant and occupied.
func (s *Store) SetStatus(ctx context.Context, roomNumber string, status models.HotelRoomStatus) error {
	res, err := s.Bun.NewUpdate().
		Model((*models.HotelRoom)(nil)).
		Set("status = ?", status).
		Where("room_number = ?", roomNumber).
		Where("status != ?", status).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("room %s: %w", roomNumber, ErrAlreadySet)
	}
	return nil
}
