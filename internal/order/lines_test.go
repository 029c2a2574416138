package order_test

import (
	"testing"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/order"

	"github.com/stretchr/testify/assert"
)

var burger = models.Food{
	ID:          "food1",
	Name:        "Burger",
	Description: "House burger",
	Price:       9.75,
	Available:   true,
}

func TestNewLineSnapshotsCatalogEntry(t *testing.T) {
	line, err := order.NewLine("order1", burger, models.AddLineCommand{FoodID: "food1", Quantity: 2}, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, "order1", line.OrderID)
	assert.Equal(t, "food1", line.FoodID)
	assert.Equal(t, 9.75, line.Price)
	assert.Equal(t, "House burger", line.Description)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, models.LinePending, line.Status)
	assert.NotEmpty(t, line.ID)
}

func TestDuplicateAddsNeverMerge(t *testing.T) {
	cmd := models.AddLineCommand{FoodID: "food1", Quantity: 1}

	first, err := order.NewLine("order1", burger, cmd, time.Now())
	assert.NoError(t, err)
	second, err := order.NewLine("order1", burger, cmd, time.Now())
	assert.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.FoodID, second.FoodID)
}

func TestNewLineRejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -1, -100} {
		_, err := order.NewLine("order1", burger, models.AddLineCommand{FoodID: "food1", Quantity: qty}, time.Now())
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	}
}

func TestNewLinePriceOverride(t *testing.T) {
	override := 5.00
	line, err := order.NewLine("order1", burger, models.AddLineCommand{FoodID: "food1", Quantity: 1, PriceOverride: &override}, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 5.00, line.Price)

	negative := -1.0
	_, err = order.NewLine("order1", burger, models.AddLineCommand{FoodID: "food1", Quantity: 1, PriceOverride: &negative}, time.Now())
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestCancelLineIsIdempotent(t *testing.T) {
	line, err := order.NewLine("order1", burger, models.AddLineCommand{FoodID: "food1", Quantity: 1}, time.Now())
	assert.NoError(t, err)

	cancelled, changed := order.CancelLine(line, time.Now())
	assert.True(t, changed)
	assert.Equal(t, models.LineCancelled, cancelled.Status)

	again, changed := order.CancelLine(cancelled, time.Now())
	assert.False(t, changed)
	assert.Equal(t, models.LineCancelled, again.Status)
}

func TestRecomputeTotalSkipsCancelledLines(t *testing.T) {
	lines := []models.OrderLine{
		{Price: 9.75, Quantity: 5, Status: models.LinePending},    // 48.75
		{Price: 6.50, Quantity: 3, Status: models.LinePending},    // 19.50
		{Price: 15.75, Quantity: 3, Status: models.LinePending},   // 47.25
		{Price: 99.99, Quantity: 2, Status: models.LineCancelled}, // excluded
	}
	assert.InDelta(t, 115.50, order.RecomputeTotal(lines), 1e-9)

	lines[2].Status = models.LineCancelled
	assert.InDelta(t, 68.25, order.RecomputeTotal(lines), 1e-9)

	lines[0].Status = models.LineCancelled
	lines[1].Quantity = 1
	assert.InDelta(t, 6.50, order.RecomputeTotal(lines), 1e-9)
}

func TestRecomputeTotalEmpty(t *testing.T) {
	assert.Equal(t, 0.0, order.RecomputeTotal(nil))
	assert.Equal(t, 0.0, order.RecomputeTotal([]models.OrderLine{
		{Price: 4.0, Quantity: 2, Status: models.LineCancelled},
	}))
}
