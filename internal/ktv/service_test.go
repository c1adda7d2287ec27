package ktv_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-pos/internal/audit"
	"ms-pos/internal/ktv"
	"ms-pos/internal/logger"
	"ms-pos/internal/models"
)

type fakeRoomStore struct {
	rooms        map[string]*models.KTVRoom
	sessions     map[string]*models.KTVSession // keyed by session ID
	shouldFailOn string
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{
		rooms:    make(map[string]*models.KTVRoom),
		sessions: make(map[string]*models.KTVSession),
	}
}

func (f *fakeRoomStore) GetRoom(ctx context.Context, id string) (*models.KTVRoom, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, errors.New("ktv room not found")
	}
	cp := *room
	return &cp, nil
}

func (f *fakeRoomStore) ListRooms(ctx context.Context) ([]models.KTVRoom, error) {
	var out []models.KTVRoom
	for _, r := range f.rooms {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRoomStore) UpdateRoomStatus(ctx context.Context, id string, from, to models.RoomStatus) error {
	room, ok := f.rooms[id]
	if !ok {
		return errors.New("ktv room not found")
	}
	if room.Status != from {
		return fmt.Errorf("room %s is %s, expected %s", id, room.Status, from)
	}
	room.Status = to
	return nil
}

func (f *fakeRoomStore) CreateSession(ctx context.Context, session *models.KTVSession) error {
	if f.shouldFailOn == "CreateSession" {
		return errors.New("store unavailable")
	}
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeRoomStore) GetActiveSession(ctx context.Context, roomID string) (*models.KTVSession, error) {
	for _, s := range f.sessions {
		if s.RoomID == roomID && s.Active {
			cp := *s
			cp.Items = append([]models.SessionItem(nil), s.Items...)
			return &cp, nil
		}
	}
	return nil, errors.New("no active session")
}

func (f *fakeRoomStore) AddSessionItems(ctx context.Context, items []models.SessionItem) error {
	if f.shouldFailOn == "AddSessionItems" {
		return errors.New("store unavailable")
	}
	for _, it := range items {
		s, ok := f.sessions[it.SessionID]
		if !ok {
			return errors.New("session not found")
		}
		s.Items = append(s.Items, it)
	}
	return nil
}

func (f *fakeRoomStore) CloseSession(ctx context.Context, session *models.KTVSession) error {
	if f.shouldFailOn == "CloseSession" {
		return errors.New("store unavailable")
	}
	s, ok := f.sessions[session.ID]
	if !ok || !s.Active {
		return errors.New("no active session")
	}
	s.Active = false
	s.ClosedAt = session.ClosedAt
	return nil
}

type fakeLock struct {
	held map[string]string
}

func newFakeLock() *fakeLock {
	return &fakeLock{held: make(map[string]string)}
}

func (f *fakeLock) LockRoom(roomID, token string) (bool, error) {
	if _, locked := f.held[roomID]; locked {
		return false, nil
	}
	f.held[roomID] = token
	return true, nil
}

func (f *fakeLock) UnlockRoom(roomID, token string) error {
	if f.held[roomID] == token {
		delete(f.held, roomID)
	}
	return nil
}

type fakeRecorder struct {
	orders []*models.Order
	fail   bool
}

func (f *fakeRecorder) CreateOrder(ctx context.Context, order *models.Order) error {
	if f.fail {
		return errors.New("store unavailable")
	}
	f.orders = append(f.orders, order)
	return nil
}

type fakeCatalog struct {
	items map[string]models.MenuItem
}

func (f *fakeCatalog) GetItem(ctx context.Context, id string) (*models.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, errors.New("menu item not found")
	}
	return &item, nil
}

type fakePrinter struct {
	printed int
}

func (f *fakePrinter) PrintReceipt(o *models.Order) error {
	f.printed++
	return nil
}

type fakePublisher struct{}

func (fakePublisher) Publish(topic, key string, value []byte) error { return nil }

type fixture struct {
	svc      *ktv.Service
	store    *fakeRoomStore
	lock     *fakeLock
	recorder *fakeRecorder
	printer  *fakePrinter
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeRoomStore()
	store.rooms["VIP01"] = &models.KTVRoom{ID: "VIP01", Name: "VIP Room 1", HourlyRate: 88, Status: models.RoomAvailable}
	store.rooms["VIP02"] = &models.KTVRoom{ID: "VIP02", Name: "VIP Room 2", HourlyRate: 128, Status: models.RoomMaintenance}

	catalog := &fakeCatalog{items: map[string]models.MenuItem{
		"drink-beer": {ID: "drink-beer", Name: "Beer Tower", Price: 50, Category: models.CategoryDrink, KTVOrderable: true, Available: true},
		"dish-soup":  {ID: "dish-soup", Name: "Hot Soup", Price: 28, Category: models.CategoryFood, KTVOrderable: false, Available: true},
	}}

	fx := &fixture{
		store:    store,
		lock:     newFakeLock(),
		recorder: &fakeRecorder{},
		printer:  &fakePrinter{},
		clock:    time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC),
	}
	fx.svc = ktv.NewService(store, fx.lock, fx.recorder, catalog, fx.printer, fakePublisher{}, audit.Nop{}, logger.NewNopLogger(), "checkout-events").
		WithClock(func() time.Time { return fx.clock })
	return fx
}

func (fx *fixture) advance(d time.Duration) {
	fx.clock = fx.clock.Add(d)
}

func TestOpenRoomStartsSession(t *testing.T) {
	fx := newFixture(t)

	session, err := fx.svc.OpenRoom(context.Background(), "VIP01", "Mr. Chen")
	require.NoError(t, err)

	assert.Equal(t, "VIP01", session.RoomID)
	assert.Equal(t, fx.clock, session.StartTime)
	assert.True(t, session.Active)
	assert.Equal(t, models.RoomInUse, fx.store.rooms["VIP01"].Status)
	// Lock released after open.
	assert.Empty(t, fx.lock.held)
}

func TestOpenRoomRejectsUnavailable(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.OpenRoom(ctx, "VIP01", "Mr. Chen")
	require.NoError(t, err)

	_, err = fx.svc.OpenRoom(ctx, "VIP01", "Ms. Wang")
	assert.ErrorIs(t, err, ktv.ErrRoomUnavailable)

	_, err = fx.svc.OpenRoom(ctx, "VIP02", "Ms. Wang")
	assert.ErrorIs(t, err, ktv.ErrRoomUnavailable)
}

func TestOpenRoomRollsBackClaimWhenSessionCreateFails(t *testing.T) {
	fx := newFixture(t)
	fx.store.shouldFailOn = "CreateSession"

	_, err := fx.svc.OpenRoom(context.Background(), "VIP01", "Mr. Chen")
	assert.Error(t, err)
	assert.Equal(t, models.RoomAvailable, fx.store.rooms["VIP01"].Status)
}

func TestAddItemsRequiresActiveSession(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.AddItems(context.Background(), "VIP01", []models.OrderItemRequest{
		{MenuItemID: "drink-beer", Quantity: 1},
	})
	assert.ErrorIs(t, err, ktv.ErrSessionNotActive)
}

func TestAddItemsRejectsNonKTVOrderable(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.OpenRoom(ctx, "VIP01", "Mr. Chen")
	require.NoError(t, err)

	_, err = fx.svc.AddItems(ctx, "VIP01", []models.OrderItemRequest{
		{MenuItemID: "dish-soup", Quantity: 1},
	})
	assert.ErrorIs(t, err, ktv.ErrNotKTVOrderable)
}

func TestPreviewMatchesCheckoutScenario(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.OpenRoom(ctx, "VIP01", "Mr. Chen")
	require.NoError(t, err)

	_, err = fx.svc.AddItems(ctx, "VIP01", []models.OrderItemRequest{
		{MenuItemID: "drink-beer", Quantity: 2},
	})
	require.NoError(t, err)

	fx.advance(70 * time.Minute)

	preview, err := fx.svc.PreviewBill(ctx, "VIP01")
	require.NoError(t, err)
	assert.Equal(t, 2, preview.ChargeableHours)
	assert.Equal(t, 176.0, preview.RoomFee)
	assert.Equal(t, 100.0, preview.ItemsFee)
	assert.Equal(t, 276.0, preview.Total)

	result, err := fx.svc.ConfirmCheckout(ctx, "VIP01", models.MethodWeChat)
	require.NoError(t, err)
	assert.Equal(t, *preview, result.Bill)
}

func TestConfirmCheckoutRecordsOrderAndClearsSession(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	session, err := fx.svc.OpenRoom(ctx, "VIP01", "Mr. Chen")
	require.NoError(t, err)
	_, err = fx.svc.AddItems(ctx, "VIP01", []models.OrderItemRequest{
		{MenuItemID: "drink-beer", Quantity: 2},
	})
	require.NoError(t, err)

	fx.advance(70 * time.Minute)

	result, err := fx.svc.ConfirmCheckout(ctx, "VIP01", models.MethodCash)
	require.NoError(t, err)

	// Order recorded with the session's lines plus the room-time line.
	require.Len(t, fx.recorder.orders, 1)
	order := fx.recorder.orders[0]
	assert.Equal(t, models.SourceKTV, order.Source)
	assert.Equal(t, "VIP01", order.TableID)
	assert.Equal(t, models.StatusServed, order.Status)
	assert.Equal(t, models.MethodCash, order.PaymentMethod)
	assert.Equal(t, 276.0, order.TotalAmount)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 2, order.Items[0].Quantity) // room hours
	assert.Equal(t, "Beer Tower", order.Items[1].Name)

	assert.Equal(t, 276.0, result.Bill.Total)
	assert.Equal(t, 1, fx.printer.printed)

	// Session cleared, room to cleaning, never straight back to available.
	assert.False(t, fx.store.sessions[session.ID].Active)
	assert.Equal(t, models.RoomCleaning, fx.store.rooms["VIP01"].Status)

	_, err = fx.svc.PreviewBill(ctx, "VIP01")
	assert.ErrorIs(t, err, ktv.ErrSessionNotActive)
}

func TestConfirmCheckoutWithoutSession(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.ConfirmCheckout(context.Background(), "VIP01", models.MethodCash)
	assert.ErrorIs(t, err, ktv.ErrSessionNotActive)
}

func TestCheckoutBillsBeforeClearing(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	session, err := fx.svc.OpenRoom(ctx, "VIP01", "Mr. Chen")
	require.NoError(t, err)

	fx.advance(10 * time.Minute)
	fx.recorder.fail = true

	_, err = fx.svc.ConfirmCheckout(ctx, "VIP01", models.MethodCash)
	assert.Error(t, err)

	// Recording failed, so nothing was destroyed: the session survives and
	// the room is still in use.
	assert.True(t, fx.store.sessions[session.ID].Active)
	assert.Equal(t, models.RoomInUse, fx.store.rooms["VIP01"].Status)
	assert.Equal(t, 0, fx.printer.printed)
}

func TestCheckoutBlockedWhileRoomLocked(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.OpenRoom(ctx, "VIP01", "Mr. Chen")
	require.NoError(t, err)

	fx.lock.held["VIP01"] = "other-terminal"
	_, err = fx.svc.ConfirmCheckout(ctx, "VIP01", models.MethodCash)
	assert.ErrorIs(t, err, ktv.ErrRoomBusy)
}

func TestCleaningLifecycle(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.OpenRoom(ctx, "VIP01", "Mr. Chen")
	require.NoError(t, err)
	fx.advance(30 * time.Minute)
	_, err = fx.svc.ConfirmCheckout(ctx, "VIP01", models.MethodCash)
	require.NoError(t, err)

	require.NoError(t, fx.svc.FinishCleaning(ctx, "VIP01"))
	assert.Equal(t, models.RoomAvailable, fx.store.rooms["VIP01"].Status)

	// Cleaning a room that is not in cleaning fails.
	assert.Error(t, fx.svc.FinishCleaning(ctx, "VIP01"))
}

func TestMinimumOneHourBilling(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.OpenRoom(ctx, "VIP01", "Mr. Chen")
	require.NoError(t, err)

	fx.advance(10 * time.Minute)
	result, err := fx.svc.ConfirmCheckout(ctx, "VIP01", models.MethodCash)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Bill.ChargeableHours)
	assert.Equal(t, 88.0, result.Bill.Total)
}
