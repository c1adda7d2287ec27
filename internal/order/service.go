package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-pos/internal/audit"
	"ms-pos/internal/billing"
	"ms-pos/internal/logger"
	"ms-pos/internal/models"
)

// DBLayer is the collection store the engine mutates. Every write must be
// confirmed before the in-memory view is considered current; the service
// never applies a mutation locally ahead of the store.
type DBLayer interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order, expectedVersion int64) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByStatus(ctx context.Context, statuses ...models.OrderStatus) ([]models.Order, error)
}

// Catalog resolves menu items so names and prices are snapshotted at
// creation time.
type Catalog interface {
	GetItem(ctx context.Context, id string) (*models.MenuItem, error)
}

type Publisher interface {
	Publish(topic, key string, value []byte) error
}

// ReceiptPrinter is the external print effect, fired exactly once per
// successful payment.
type ReceiptPrinter interface {
	PrintReceipt(order *models.Order) error
}

// Gateway captures funds for a payment method. Cash-like methods are no-ops;
// card goes through Stripe.
type Gateway interface {
	Capture(ctx context.Context, order *models.Order, method models.PaymentMethod) error
}

// transitions maps each lifecycle event to the statuses it may fire from.
var transitions = map[string][]models.OrderStatus{
	"accept":   {models.StatusPending},
	"serve":    {models.StatusCooking},
	"cancel":   {models.StatusPending, models.StatusCooking},
	"pay":      {models.StatusServed},
	"complete": {models.StatusServed, models.StatusPaid},
}

func canFire(event string, from models.OrderStatus) bool {
	for _, s := range transitions[event] {
		if s == from {
			return true
		}
	}
	return false
}

type Service struct {
	DB      DBLayer
	Menu    Catalog
	Events  Publisher
	Printer ReceiptPrinter
	Gateway Gateway
	Audit   audit.Logger

	log               *logger.Logger
	topic             string
	serviceChargeRate float64
	now               func() time.Time
}

func NewService(db DBLayer, menu Catalog, events Publisher, printer ReceiptPrinter, gateway Gateway, auditLog audit.Logger, log *logger.Logger, topic string, serviceChargeRate float64) *Service {
	return &Service{
		DB:                db,
		Menu:              menu,
		Events:            events,
		Printer:           printer,
		Gateway:           gateway,
		Audit:             auditLog,
		log:               log,
		topic:             topic,
		serviceChargeRate: serviceChargeRate,
		now:               time.Now,
	}
}

// WithClock overrides the time source; tests pin it.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create places a new order. Prices and names come from the catalog at this
// moment and never change afterward; the service charge is frozen into the
// total here.
func (s *Service) Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	orderID := uuid.NewString()
	items := make([]models.OrderItem, 0, len(req.Items))
	for i, ir := range req.Items {
		if ir.Quantity < 1 {
			return nil, fmt.Errorf("item %s: quantity must be at least 1", ir.MenuItemID)
		}
		menuItem, err := s.Menu.GetItem(ctx, ir.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve menu item %s: %w", ir.MenuItemID, err)
		}
		items = append(items, models.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    orderID,
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   ir.Quantity,
			Position:   i,
		})
	}

	order := &models.Order{
		ID:          orderID,
		TableID:     req.TableID,
		Source:      req.Source,
		Status:      models.StatusPending,
		Items:       items,
		TotalAmount: billing.OrderTotal(billing.OrderLines(items), s.serviceChargeRate),
		Notes:       req.Notes,
		Version:     1,
		CreatedAt:   s.now(),
	}

	if err := s.DB.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publish("order_created", order)
	s.Audit.Log("info", "order.create", map[string]any{
		"order_id": order.ID,
		"source":   order.Source,
		"table":    order.TableID,
		"total":    order.TotalAmount,
	})
	s.log.LogOrder("CREATE", order.ID, fmt.Sprintf("table=%s source=%s total=%.2f", order.TableID, order.Source, order.TotalAmount))
	return order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.DB.GetOrderByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	return s.DB.ListOrders(ctx)
}

// Accept moves a pending order onto the cooking queue.
func (s *Service) Accept(ctx context.Context, id string) (*models.Order, error) {
	return s.transition(ctx, id, "accept", models.StatusCooking)
}

// Serve marks a cooked order as delivered to the table.
func (s *Service) Serve(ctx context.Context, id string) (*models.Order, error) {
	return s.transition(ctx, id, "serve", models.StatusServed)
}

// Cancel voids an order that has not been served yet. Cancelled is terminal;
// no payment may be recorded afterward.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.transition(ctx, id, "cancel", models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.Audit.Log("warn", "order.cancel", map[string]any{"order_id": order.ID})
	return order, nil
}

// Pay records the payment method against a served order and routes the next
// status by source: takeout completes immediately, every other source stays
// served until an explicit close-out. Exactly one receipt is printed per
// successful payment.
func (s *Service) Pay(ctx context.Context, id string, method models.PaymentMethod) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, err)
	}

	if order.Paid() {
		return nil, ErrAlreadyPaid
	}
	if order.Status != models.StatusServed {
		return nil, ErrNotReadyForPayment
	}

	if err := s.Gateway.Capture(ctx, order, method); err != nil {
		return nil, fmt.Errorf("capture payment for order %s: %w", id, err)
	}

	updated := *order
	updated.PaymentMethod = method
	if order.Source == models.SourceTakeout {
		updated.Status = models.StatusCompleted
	}
	updated.Version = order.Version + 1
	updated.UpdatedAt = s.now()

	if err := s.DB.UpdateOrder(ctx, &updated, order.Version); err != nil {
		return nil, fmt.Errorf("record payment for order %s: %w", id, err)
	}

	if err := s.Printer.PrintReceipt(&updated); err != nil {
		// Print is fire-and-forget; the payment already stands.
		s.log.Warn("ORDER", fmt.Sprintf("receipt print failed for %s: %v", id, err))
	}

	s.publish("order_paid", &updated)
	s.Audit.Log("info", "order.pay", map[string]any{
		"order_id": updated.ID,
		"method":   method,
		"total":    updated.TotalAmount,
		"status":   updated.Status,
	})
	s.log.LogOrder("PAY", updated.ID, fmt.Sprintf("method=%s status=%s", method, updated.Status))
	return &updated, nil
}

// Complete closes out a served-and-paid order. Takeout never reaches here;
// it completes at payment time.
func (s *Service) Complete(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, err)
	}

	if !canFire("complete", order.Status) || !order.Paid() {
		return nil, invalidTransition(order.Status, "complete")
	}

	updated := *order
	updated.Status = models.StatusCompleted
	updated.Version = order.Version + 1
	updated.UpdatedAt = s.now()

	if err := s.DB.UpdateOrder(ctx, &updated, order.Version); err != nil {
		return nil, fmt.Errorf("complete order %s: %w", id, err)
	}

	s.publish("order_completed", &updated)
	s.Audit.Log("info", "order.complete", map[string]any{"order_id": updated.ID})
	s.log.LogOrder("COMPLETE", updated.ID, "closed out")
	return &updated, nil
}

// transition validates an event against the table, persists the new status,
// and only then reports the order as changed.
func (s *Service) transition(ctx context.Context, id, event string, to models.OrderStatus) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, err)
	}

	if !canFire(event, order.Status) {
		return nil, invalidTransition(order.Status, event)
	}

	updated := *order
	updated.Status = to
	updated.Version = order.Version + 1
	updated.UpdatedAt = s.now()

	if err := s.DB.UpdateOrder(ctx, &updated, order.Version); err != nil {
		return nil, fmt.Errorf("%s order %s: %w", event, id, err)
	}

	s.publish("order_"+string(to), &updated)
	s.log.LogOrder(event, updated.ID, fmt.Sprintf("%s -> %s", order.Status, to))
	return &updated, nil
}

func (s *Service) publish(event string, order *models.Order) {
	payload, err := marshalEvent(event, order)
	if err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("marshal %s: %v", event, err))
		return
	}
	if err := s.Events.Publish(s.topic, order.ID, payload); err != nil {
		s.log.Warn("KAFKA", fmt.Sprintf("publish %s for %s: %v", event, order.ID, err))
	}
}
