// Package finance re-derives revenue views from the order set on every
// read. Nothing here caches; the report is always consistent with the
// authoritative collection.
package finance

import (
	"context"
	"time"

	"ms-pos/internal/billing"
	"ms-pos/internal/models"
)

type OrderLister interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// DailyReport aggregates revenue for one calendar day. Only orders with a
// recorded payment count; cancelled and unpaid orders never appear.
type DailyReport struct {
	Date         string                           `json:"date"`
	OrderCount   int                              `json:"order_count"`
	TotalRevenue float64                          `json:"total_revenue"`
	BySource     map[models.OrderSource]float64   `json:"by_source"`
	ByMethod     map[models.PaymentMethod]float64 `json:"by_method"`
}

type Service struct {
	Orders OrderLister
}

func NewService(orders OrderLister) *Service {
	return &Service{Orders: orders}
}

func (s *Service) Daily(ctx context.Context, day time.Time) (*DailyReport, error) {
	orders, err := s.Orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	report := BuildDailyReport(orders, day)
	return &report, nil
}

// BuildDailyReport is the pure aggregation over a given order set.
func BuildDailyReport(orders []models.Order, day time.Time) DailyReport {
	report := DailyReport{
		Date:     day.Format("2006-01-02"),
		BySource: make(map[models.OrderSource]float64),
		ByMethod: make(map[models.PaymentMethod]float64),
	}

	y, m, d := day.Date()
	for _, o := range orders {
		if !o.Paid() {
			continue
		}
		oy, om, od := o.CreatedAt.Date()
		if oy != y || om != m || od != d {
			continue
		}
		report.OrderCount++
		report.TotalRevenue = billing.Round2(report.TotalRevenue + o.TotalAmount)
		report.BySource[o.Source] = billing.Round2(report.BySource[o.Source] + o.TotalAmount)
		report.ByMethod[o.PaymentMethod] = billing.Round2(report.ByMethod[o.PaymentMethod] + o.TotalAmount)
	}
	return report
}
