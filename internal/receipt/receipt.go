// Package receipt formats payable orders for printing. Delivery to actual
// printer hardware is the caller's concern; this package produces the text
// body and a QR code encoding the receipt reference.
package receipt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"ms-pos/internal/models"
	"ms-pos/internal/utils"
)

type Line struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

type Receipt struct {
	Number   string               `json:"number"`
	OrderID  string               `json:"order_id"`
	TableID  string               `json:"table_id"`
	Source   models.OrderSource   `json:"source"`
	Lines    []Line               `json:"lines"`
	Total    float64              `json:"total"`
	Method   models.PaymentMethod `json:"method"`
	IssuedAt time.Time            `json:"issued_at"`
	Store    string               `json:"store"`
}

// Build snapshots an order into a printable receipt.
func Build(order *models.Order, storeName string, issuedAt time.Time) Receipt {
	lines := make([]Line, len(order.Items))
	for i, it := range order.Items {
		lines[i] = Line{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			Total:    it.Price * float64(it.Quantity),
		}
	}
	return Receipt{
		Number:   utils.GenerateReceiptNumber(),
		OrderID:  order.ID,
		TableID:  order.TableID,
		Source:   order.Source,
		Lines:    lines,
		Total:    order.TotalAmount,
		Method:   order.PaymentMethod,
		IssuedAt: issuedAt,
		Store:    storeName,
	}
}

func (r Receipt) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Store)
	fmt.Fprintf(&b, "Receipt %s\n", r.Number)
	fmt.Fprintf(&b, "Table %s  (%s)\n", r.TableID, r.Source)
	fmt.Fprintf(&b, "%s\n", r.IssuedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(strings.Repeat("-", 32) + "\n")
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "%-18s x%-3d %8.2f\n", l.Name, l.Quantity, l.Total)
	}
	b.WriteString(strings.Repeat("-", 32) + "\n")
	fmt.Fprintf(&b, "TOTAL %26.2f\n", r.Total)
	fmt.Fprintf(&b, "Paid by %s\n", r.Method)
	return b.String()
}

// QR encodes the receipt reference as a PNG so a finance clerk can pull the
// full record later.
func (r Receipt) QR() ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"number":   r.Number,
		"order_id": r.OrderID,
		"total":    r.Total,
	})
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(payload), qrcode.Medium, 256)
}
