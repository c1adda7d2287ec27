package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RoomStatus is the KTV room lifecycle. Maintenance is set out-of-band by an
// administrator and is not reachable from the open/checkout/clean flows.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomInUse       RoomStatus = "in_use"
	RoomCleaning    RoomStatus = "cleaning"
	RoomMaintenance RoomStatus = "maintenance"
)

type KTVRoom struct {
	bun.BaseModel `bun:"table:ktv_rooms"`

	ID         string     `bun:"id,pk" json:"id"`
	Name       string     `bun:"name,notnull" json:"name"`
	HourlyRate float64    `bun:"hourly_rate,notnull" json:"hourly_rate"`
	Status     RoomStatus `bun:"status,notnull" json:"status"`
}

// KTVSession is the time-bounded occupancy of a room, from open to checkout.
// A room has at most one active session. Checkout closes the session only
// after the bill has been computed and durably recorded.
type KTVSession struct {
	bun.BaseModel `bun:"table:ktv_sessions"`

	ID        string        `bun:"id,pk" json:"id"`
	RoomID    string        `bun:"room_id,notnull" json:"room_id"`
	GuestName string        `bun:"guest_name,nullzero" json:"guest_name,omitempty"`
	StartTime time.Time     `bun:"start_time,notnull" json:"start_time"`
	Items     []SessionItem `bun:"rel:has-many,join:id=session_id" json:"items"`
	Active    bool          `bun:"active,notnull" json:"active"`
	ClosedAt  time.Time     `bun:"closed_at,nullzero" json:"closed_at,omitempty"`
}

// SessionItem is a drink/food line accrued during a session, snapshotted the
// same way as OrderItem.
type SessionItem struct {
	bun.BaseModel `bun:"table:ktv_session_items"`

	ID         string  `bun:"id,pk" json:"id"`
	SessionID  string  `bun:"session_id,notnull" json:"session_id"`
	MenuItemID string  `bun:"menu_item_id,nullzero" json:"menu_item_id,omitempty"`
	Name       string  `bun:"name,notnull" json:"name"`
	Price      float64 `bun:"price,notnull" json:"price"`
	Quantity   int     `bun:"quantity,notnull" json:"quantity"`
	Position   int     `bun:"position,notnull" json:"position"`
}

type HotelRoomStatus string

const (
	HotelVacant   HotelRoomStatus = "vacant"
	HotelOccupied HotelRoomStatus = "occupied"
)

// HotelRoom occupancy is deliberately independent of order state: room
// service can be ordered against a vacant room and a guest can occupy a room
// with no open orders.
type HotelRoom struct {
	bun.BaseModel `bun:"table:hotel_rooms"`

	RoomNumber string          `bun:"room_number,pk" json:"room_number"`
	Floor      int             `bun:"floor,notnull" json:"floor"`
	Status     HotelRoomStatus `bun:"status,notnull" json:"status"`
}
