package models

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderStatus is the authoritative status enum shared by every component.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCooking   OrderStatus = "cooking"
	StatusServed    OrderStatus = "served"
	StatusPaid      OrderStatus = "paid"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderSource is the channel an order originated from. It is immutable after
// creation and determines post-payment routing: takeout completes on payment,
// everything else waits for an explicit close-out.
type OrderSource string

const (
	SourceDineIn      OrderSource = "dine_in"
	SourceRoomService OrderSource = "room_service"
	SourceKTV         OrderSource = "ktv"
	SourceTakeout     OrderSource = "takeout"
	SourceSupermarket OrderSource = "supermarket"
)

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodCard   PaymentMethod = "card"
	MethodWeChat PaymentMethod = "wechat"
	MethodAlipay PaymentMethod = "alipay"
)

// OrderItem is a line item with name and price snapshotted at add time, so
// later catalog edits never change a placed order.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID         string  `bun:"id,pk" json:"id"`
	OrderID    string  `bun:"order_id,notnull" json:"order_id"`
	MenuItemID string  `bun:"menu_item_id,nullzero" json:"menu_item_id,omitempty"`
	Name       string  `bun:"name,notnull" json:"name"`
	Price      float64 `bun:"price,notnull" json:"price"`
	Quantity   int     `bun:"quantity,notnull" json:"quantity"`
	Position   int     `bun:"position,notnull" json:"position"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID            string        `bun:"id,pk" json:"id"`
	TableID       string        `bun:"table_id,notnull" json:"table_id"`
	Source        OrderSource   `bun:"source,notnull" json:"source"`
	Status        OrderStatus   `bun:"status,notnull" json:"status"`
	Items         []OrderItem   `bun:"rel:has-many,join:id=order_id" json:"items"`
	TotalAmount   float64       `bun:"total_amount,notnull" json:"total_amount"`
	PaymentMethod PaymentMethod `bun:"payment_method,nullzero" json:"payment_method,omitempty"`
	Notes         string        `bun:"notes,nullzero" json:"notes,omitempty"`
	Version       int64         `bun:"version,notnull" json:"version"`
	CreatedAt     time.Time     `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time     `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// Paid reports whether a payment method has been recorded. For non-takeout
// sources the status stays "served" after payment, so this flag, not the
// status, is the source of truth for "money taken".
func (o *Order) Paid() bool {
	return o.PaymentMethod != ""
}

// Terminal reports whether the order reached a state that permits no further
// mutation of status, items or payment method.
func (o *Order) Terminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// CreateOrderRequest is the inbound shape for placing an order. Item prices
// are resolved from the menu catalog at creation time, never trusted from the
// client.
type CreateOrderRequest struct {
	TableID string             `json:"table_id"`
	Source  OrderSource        `json:"source"`
	Notes   string             `json:"notes,omitempty"`
	Items   []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type PayRequest struct {
	Method PaymentMethod `json:"method"`
}
