package finance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-pos/internal/finance"
	"ms-pos/internal/models"
)

func paidOrder(id string, source models.OrderSource, method models.PaymentMethod, total float64, createdAt time.Time) models.Order {
	return models.Order{
		ID:            id,
		Source:        source,
		Status:        models.StatusCompleted,
		TotalAmount:   total,
		PaymentMethod: method,
		CreatedAt:     createdAt,
	}
}

func TestBuildDailyReport(t *testing.T) {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	orders := []models.Order{
		paidOrder("o1", models.SourceDineIn, models.MethodCash, 110, day.Add(12*time.Hour)),
		paidOrder("o2", models.SourceKTV, models.MethodWeChat, 276, day.Add(22*time.Hour)),
		paidOrder("o3", models.SourceTakeout, models.MethodCash, 70, day.Add(18*time.Hour)),
		// Wrong day.
		paidOrder("o4", models.SourceDineIn, models.MethodCash, 500, day.AddDate(0, 0, 1)),
		// Unpaid and cancelled orders never count.
		{ID: "o5", Source: models.SourceDineIn, Status: models.StatusServed, TotalAmount: 90, CreatedAt: day.Add(13 * time.Hour)},
		{ID: "o6", Source: models.SourceDineIn, Status: models.StatusCancelled, TotalAmount: 40, CreatedAt: day.Add(14 * time.Hour)},
	}

	report := finance.BuildDailyReport(orders, day)

	assert.Equal(t, "2025-03-01", report.Date)
	assert.Equal(t, 3, report.OrderCount)
	assert.Equal(t, 456.0, report.TotalRevenue)
	assert.Equal(t, 110.0, report.BySource[models.SourceDineIn])
	assert.Equal(t, 276.0, report.BySource[models.SourceKTV])
	assert.Equal(t, 70.0, report.BySource[models.SourceTakeout])
	assert.Equal(t, 180.0, report.ByMethod[models.MethodCash])
	assert.Equal(t, 276.0, report.ByMethod[models.MethodWeChat])
}

func TestBuildDailyReportEmpty(t *testing.T) {
	report := finance.BuildDailyReport(nil, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, 0, report.OrderCount)
	assert.Equal(t, 0.0, report.TotalRevenue)
	assert.Empty(t, report.BySource)
}
