package receipt

import (
	"fmt"
	"io"
	"time"

	"ms-pos/internal/logger"
	"ms-pos/internal/models"
)

// Printer implements the print-receipt effect the payment reconciler fires
// exactly once per successful pay. Output goes to an io.Writer; swapping in
// a real printer driver is wiring, not engine logic.
type Printer struct {
	storeName string
	out       io.Writer
	log       *logger.Logger
	now       func() time.Time
}

func NewPrinter(storeName string, out io.Writer, log *logger.Logger) *Printer {
	return &Printer{
		storeName: storeName,
		out:       out,
		log:       log,
		now:       time.Now,
	}
}

func (p *Printer) PrintReceipt(order *models.Order) error {
	rec := Build(order, p.storeName, p.now())

	if _, err := io.WriteString(p.out, rec.Text()); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}

	if qr, err := rec.QR(); err != nil {
		p.log.Warn("RECEIPT", fmt.Sprintf("QR generation failed for %s: %v", rec.Number, err))
	} else {
		p.log.Debug("RECEIPT", fmt.Sprintf("QR generated for %s (%d bytes)", rec.Number, len(qr)))
	}

	p.log.Info("RECEIPT", fmt.Sprintf("Printed receipt %s for order %s", rec.Number, order.ID))
	return nil
}
