// Package ktv runs the room session lifecycle: open, accrue items, preview,
// checkout, clean. Checkout is the only destructive step in the engine, so
// the bill is computed and the order durably recorded before the session is
// cleared.
package ktv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-pos/internal/audit"
	"ms-pos/internal/billing"
	"ms-pos/internal/logger"
	"ms-pos/internal/models"
)

var (
	ErrSessionNotActive = errors.New("room has no active session")
	ErrRoomUnavailable  = errors.New("room is not available")
	ErrRoomBusy         = errors.New("room is locked by another terminal")
	ErrNotKTVOrderable  = errors.New("menu item cannot be ordered in a KTV room")
	ErrEmptyItems       = errors.New("no items given")
)

type RoomStore interface {
	GetRoom(ctx context.Context, id string) (*models.KTVRoom, error)
	ListRooms(ctx context.Context) ([]models.KTVRoom, error)
	UpdateRoomStatus(ctx context.Context, id string, from, to models.RoomStatus) error
	CreateSession(ctx context.Context, session *models.KTVSession) error
	GetActiveSession(ctx context.Context, roomID string) (*models.KTVSession, error)
	AddSessionItems(ctx context.Context, items []models.SessionItem) error
	CloseSession(ctx context.Context, session *models.KTVSession) error
}

// RoomLock serializes open/checkout per room across terminals.
type RoomLock interface {
	LockRoom(roomID, token string) (bool, error)
	UnlockRoom(roomID, token string) error
}

// OrderRecorder persists the checkout as a payable order for auditability.
type OrderRecorder interface {
	CreateOrder(ctx context.Context, order *models.Order) error
}

type Catalog interface {
	GetItem(ctx context.Context, id string) (*models.MenuItem, error)
}

type ReceiptPrinter interface {
	PrintReceipt(order *models.Order) error
}

type Publisher interface {
	Publish(topic, key string, value []byte) error
}

// CheckoutResult is what the cashier terminal shows after a confirmed
// checkout.
type CheckoutResult struct {
	Bill  billing.KTVBill `json:"bill"`
	Order *models.Order   `json:"order"`
}

type Service struct {
	DB      RoomStore
	Lock    RoomLock
	Orders  OrderRecorder
	Menu    Catalog
	Printer ReceiptPrinter
	Events  Publisher
	Audit   audit.Logger

	log   *logger.Logger
	topic string
	now   func() time.Time
}

func NewService(db RoomStore, lock RoomLock, orders OrderRecorder, menu Catalog, printer ReceiptPrinter, events Publisher, auditLog audit.Logger, log *logger.Logger, topic string) *Service {
	return &Service{
		DB:      db,
		Lock:    lock,
		Orders:  orders,
		Menu:    menu,
		Printer: printer,
		Events:  events,
		Audit:   auditLog,
		log:     log,
		topic:   topic,
		now:     time.Now,
	}
}

// WithClock overrides the time source; tests pin it.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) ListRooms(ctx context.Context) ([]models.KTVRoom, error) {
	return s.DB.ListRooms(ctx)
}

// OpenRoom claims an available room for a guest and starts the session
// clock. The conditional status update is the claim; losing it means another
// terminal opened the room first.
func (s *Service) OpenRoom(ctx context.Context, roomID, guestName string) (*models.KTVSession, error) {
	token := uuid.NewString()
	ok, err := s.Lock.LockRoom(roomID, token)
	if err != nil {
		return nil, fmt.Errorf("lock room %s: %w", roomID, err)
	}
	if !ok {
		return nil, ErrRoomBusy
	}
	defer s.unlock(roomID, token)

	room, err := s.DB.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != models.RoomAvailable {
		return nil, fmt.Errorf("room %s is %s: %w", roomID, room.Status, ErrRoomUnavailable)
	}

	if err := s.DB.UpdateRoomStatus(ctx, roomID, models.RoomAvailable, models.RoomInUse); err != nil {
		return nil, fmt.Errorf("claim room %s: %w", roomID, err)
	}

	session := &models.KTVSession{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		GuestName: guestName,
		StartTime: s.now(),
		Active:    true,
	}
	if err := s.DB.CreateSession(ctx, session); err != nil {
		// Roll the claim back so the room is not stranded in-use with no
		// session attached.
		if rbErr := s.DB.UpdateRoomStatus(ctx, roomID, models.RoomInUse, models.RoomAvailable); rbErr != nil {
			s.log.Error("KTV", fmt.Sprintf("rollback of room %s failed: %v", roomID, rbErr))
		}
		return nil, fmt.Errorf("create session for room %s: %w", roomID, err)
	}

	s.Audit.Log("info", "ktv.open", map[string]any{"room_id": roomID, "session_id": session.ID, "guest": guestName})
	s.log.LogKTV("OPEN", roomID, fmt.Sprintf("session=%s guest=%s", session.ID, guestName))
	return session, nil
}

// AddItems accrues drinks/food onto the running session at snapshot prices.
// Only items flagged as KTV-orderable are accepted.
func (s *Service) AddItems(ctx context.Context, roomID string, reqs []models.OrderItemRequest) (*models.KTVSession, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyItems
	}

	session, err := s.DB.GetActiveSession(ctx, roomID)
	if err != nil {
		return nil, ErrSessionNotActive
	}

	items := make([]models.SessionItem, 0, len(reqs))
	base := len(session.Items)
	for i, ir := range reqs {
		if ir.Quantity < 1 {
			return nil, fmt.Errorf("item %s: quantity must be at least 1", ir.MenuItemID)
		}
		menuItem, err := s.Menu.GetItem(ctx, ir.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve menu item %s: %w", ir.MenuItemID, err)
		}
		if !menuItem.KTVOrderable {
			return nil, fmt.Errorf("item %s: %w", menuItem.Name, ErrNotKTVOrderable)
		}
		items = append(items, models.SessionItem{
			ID:         uuid.NewString(),
			SessionID:  session.ID,
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   ir.Quantity,
			Position:   base + i,
		})
	}

	if err := s.DB.AddSessionItems(ctx, items); err != nil {
		return nil, fmt.Errorf("add items to session %s: %w", session.ID, err)
	}

	session.Items = append(session.Items, items...)
	s.log.LogKTV("ADD_ITEMS", roomID, fmt.Sprintf("session=%s items=%d", session.ID, len(items)))
	return session, nil
}

// PreviewBill computes what the guest owes right now without touching any
// state. Given the same clock reading, ConfirmCheckout bills the identical
// amount.
func (s *Service) PreviewBill(ctx context.Context, roomID string) (*billing.KTVBill, error) {
	room, err := s.DB.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	session, err := s.DB.GetActiveSession(ctx, roomID)
	if err != nil {
		return nil, ErrSessionNotActive
	}

	bill := billing.BillKTVSession(session, room.HourlyRate, s.now())
	return &bill, nil
}

// ConfirmCheckout bills the session and closes it. Ordering is strict:
// compute the bill, record the payable order, and only then clear the
// session and send the room to cleaning. A failure before the order is
// recorded leaves the session intact.
func (s *Service) ConfirmCheckout(ctx context.Context, roomID string, method models.PaymentMethod) (*CheckoutResult, error) {
	token := uuid.NewString()
	ok, err := s.Lock.LockRoom(roomID, token)
	if err != nil {
		return nil, fmt.Errorf("lock room %s: %w", roomID, err)
	}
	if !ok {
		return nil, ErrRoomBusy
	}
	defer s.unlock(roomID, token)

	room, err := s.DB.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	session, err := s.DB.GetActiveSession(ctx, roomID)
	if err != nil {
		return nil, ErrSessionNotActive
	}

	now := s.now()
	bill := billing.BillKTVSession(session, room.HourlyRate, now)

	order := buildCheckoutOrder(room, session, bill, method, now)
	if err := s.Orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("record checkout order for room %s: %w", roomID, err)
	}

	session.Active = false
	session.ClosedAt = now
	if err := s.DB.CloseSession(ctx, session); err != nil {
		return nil, fmt.Errorf("close session %s: %w", session.ID, err)
	}
	if err := s.DB.UpdateRoomStatus(ctx, roomID, models.RoomInUse, models.RoomCleaning); err != nil {
		return nil, fmt.Errorf("send room %s to cleaning: %w", roomID, err)
	}

	if err := s.Printer.PrintReceipt(order); err != nil {
		s.log.Warn("KTV", fmt.Sprintf("receipt print failed for room %s: %v", roomID, err))
	}

	s.publishCheckout(roomID, session.ID, order, bill)
	s.Audit.Log("info", "ktv.checkout", map[string]any{
		"room_id":    roomID,
		"session_id": session.ID,
		"order_id":   order.ID,
		"hours":      bill.ChargeableHours,
		"total":      bill.Total,
		"method":     method,
	})
	s.log.LogKTV("CHECKOUT", roomID, fmt.Sprintf("session=%s total=%.2f hours=%d", session.ID, bill.Total, bill.ChargeableHours))

	return &CheckoutResult{Bill: bill, Order: order}, nil
}

// FinishCleaning returns a cleaned room to the available pool. Cleaning never
// skips straight from in-use.
func (s *Service) FinishCleaning(ctx context.Context, roomID string) error {
	if err := s.DB.UpdateRoomStatus(ctx, roomID, models.RoomCleaning, models.RoomAvailable); err != nil {
		return fmt.Errorf("finish cleaning room %s: %w", roomID, err)
	}
	s.log.LogKTV("CLEANED", roomID, "room available")
	return nil
}

// buildCheckoutOrder turns a billed session into a payable order: the room
// time as the first line, then every accrued item at its snapshot price. The
// order lands already served and paid, awaiting close-out like any other
// non-takeout source.
func buildCheckoutOrder(room *models.KTVRoom, session *models.KTVSession, bill billing.KTVBill, method models.PaymentMethod, now time.Time) *models.Order {
	orderID := uuid.NewString()

	items := make([]models.OrderItem, 0, len(session.Items)+1)
	items = append(items, models.OrderItem{
		ID:       uuid.NewString(),
		OrderID:  orderID,
		Name:     fmt.Sprintf("Room time (%dh @ %.2f)", bill.ChargeableHours, room.HourlyRate),
		Price:    room.HourlyRate,
		Quantity: bill.ChargeableHours,
		Position: 0,
	})
	for i, it := range session.Items {
		items = append(items, models.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Price:      it.Price,
			Quantity:   it.Quantity,
			Position:   i + 1,
		})
	}

	return &models.Order{
		ID:            orderID,
		TableID:       room.ID,
		Source:        models.SourceKTV,
		Status:        models.StatusServed,
		Items:         items,
		TotalAmount:   bill.Total,
		PaymentMethod: method,
		Notes:         fmt.Sprintf("KTV session %s", session.ID),
		Version:       1,
		CreatedAt:     now,
	}
}

type checkoutEvent struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"room_id"`
	SessionID string          `json:"session_id"`
	OrderID   string          `json:"order_id"`
	Bill      billing.KTVBill `json:"bill"`
	Timestamp time.Time       `json:"timestamp"`
}

func (s *Service) publishCheckout(roomID, sessionID string, order *models.Order, bill billing.KTVBill) {
	payload, err := json.Marshal(checkoutEvent{
		Type:      "ktv_checkout",
		RoomID:    roomID,
		SessionID: sessionID,
		OrderID:   order.ID,
		Bill:      bill,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("marshal checkout event: %v", err))
		return
	}
	if err := s.Events.Publish(s.topic, roomID, payload); err != nil {
		s.log.Warn("KAFKA", fmt.Sprintf("publish checkout for room %s: %v", roomID, err))
	}
}

func (s *Service) unlock(roomID, token string) {
	if err := s.Lock.UnlockRoom(roomID, token); err != nil {
		s.log.Warn("KTV", fmt.Sprintf("unlock room %s: %v", roomID, err))
	}
}
