package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-pos/internal/models"
)

var (
	ErrRoomNotFound    = errors.New("ktv room not found")
	ErrNoActiveSession = errors.New("no active session for room")
	ErrStatusConflict  = errors.New("room status changed underneath")
)

// DB persists KTV rooms and sessions. Room status changes are conditional on
// the expected current status, which is what enforces the
// Available -> InUse -> Cleaning -> Available lifecycle at the storage layer.
type DB struct {
	Bun *bun.DB
}

func (d *DB) GetRoom(ctx context.Context, id string) (*models.KTVRoom, error) {
	var room models.KTVRoom
	err := d.Bun.NewSelect().
		Model(&room).
		Where("id = ?", id).
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

func (d *DB) ListRooms(ctx context.Context) ([]models.KTVRoom, error) {
	var rooms []models.KTVRoom
	err := d.Bun.NewSelect().
		Model(&rooms).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// UpdateRoomStatus flips a room from an expected status to the next one.
// Zero rows affected means the room was not in the expected status.
func (d *DB) UpdateRoomStatus(ctx context.Context, id string, from, to models.RoomStatus) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.KTVRoom)(nil)).
		Set("status = ?", to).
		Where("id = ?", id).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("room %s: expected status %s: %w", id, from, ErrStatusConflict)
	}
	return nil
}

func (d *DB) CreateSession(ctx context.Context, session *models.KTVSession) error {
	_, err := d.Bun.NewInsert().Model(session).Exec(ctx)
	return err
}

func (d *DB) GetActiveSession(ctx context.Context, roomID string) (*models.KTVSession, error) {
	var session models.KTVSession
	err := d.Bun.NewSelect().
		Model(&session).
		Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Where("room_id = ?", roomID).
		Where("active = ?", true).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (d *DB) AddSessionItems(ctx context.Context, items []models.SessionItem) error {
	if len(items) == 0 {
		return nil
	}
	_, err := d.Bun.NewInsert().Model(&items).Exec(ctx)
	return err
}

// CloseSession deactivates a session after its bill has been recorded.
func (d *DB) CloseSession(ctx context.Context, session *models.KTVSession) error {
	res, err := d.Bun.NewUpdate().
		Model(session).
		Column("active", "closed_at").
		Where("id = ?", session.ID).
		Where("active = ?", true).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", session.ID, ErrNoActiveSession)
	}
	return nil
}
