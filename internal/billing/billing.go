// Package billing holds the two billing modes as pure functions, so a
// preview shown to staff is bit-identical to the amount charged at checkout
// given the same clock reading.
package billing

import (
	"math"
	"time"

	"ms-pos/internal/models"
)

// DefaultServiceChargeRate applies when no rate is configured.
const DefaultServiceChargeRate = 0.10

// Line is the minimal shape both OrderItem and SessionItem reduce to.
type Line struct {
	Name     string
	Price    float64
	Quantity int
}

// KTVBill is the breakdown of a session checkout.
type KTVBill struct {
	ChargeableHours int     `json:"chargeable_hours"`
	RoomFee         float64 `json:"room_fee"`
	ItemsFee        float64 `json:"items_fee"`
	Total           float64 `json:"total"`
}

// Subtotal sums price x quantity over the lines.
func Subtotal(lines []Line) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.Price * float64(l.Quantity)
	}
	return sum
}

// OrderTotal applies the store-wide service charge to a flat order subtotal.
// The result is frozen into Order.TotalAmount at creation time.
func OrderTotal(lines []Line, serviceChargeRate float64) float64 {
	return Round2(Subtotal(lines) * (1 + serviceChargeRate))
}

// ChargeableHours converts elapsed session time into billing units: round up
// to whole hours with a one-hour minimum. An exact hour boundary does not
// round up (120 minutes bills 2 hours).
func ChargeableHours(start, now time.Time) int {
	elapsed := now.Sub(start)
	if elapsed <= time.Hour {
		return 1
	}
	return int(math.Ceil(elapsed.Hours()))
}

// BillKTVSession computes the payable amount for a running session.
// Room time is billed in chargeable hours at the room's rate; drinks and food
// are billed at snapshot prices. No service charge applies to KTV sessions.
func BillKTVSession(session *models.KTVSession, hourlyRate float64, now time.Time) KTVBill {
	hours := ChargeableHours(session.StartTime, now)
	roomFee := Round2(float64(hours) * hourlyRate)
	itemsFee := Round2(Subtotal(SessionLines(session.Items)))
	return KTVBill{
		ChargeableHours: hours,
		RoomFee:         roomFee,
		ItemsFee:        itemsFee,
		Total:           Round2(roomFee + itemsFee),
	}
}

// OrderLines adapts order items for the calculators.
func OrderLines(items []models.OrderItem) []Line {
	lines := make([]Line, len(items))
	for i, it := range items {
		lines[i] = Line{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
	}
	return lines
}

// SessionLines adapts session items for the calculators.
func SessionLines(items []models.SessionItem) []Line {
	lines := make([]Line, len(items))
	for i, it := range items {
		lines[i] = Line{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
	}
	return lines
}

// Round2 rounds to cents. All stored amounts go through this.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
