package order

import (
	"fmt"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"

	"github.com/google/uuid"
)

// NewLine builds a fresh line for an add-to-order call. Every call produces a
// new row: two adds of the same food never merge into one line. Price and
// description are snapshots of the catalog entry at call time unless an
// explicit override is supplied.
func NewLine(orderID string, food models.Food, cmd models.AddLineCommand, now time.Time) (models.OrderLine, error) {
	if cmd.Quantity <= 0 {
		return models.OrderLine{}, apperr.InvalidArgument(fmt.Sprintf("quantity must be a positive integer, got %d", cmd.Quantity))
	}

	price := food.Price
	if cmd.PriceOverride != nil {
		if *cmd.PriceOverride < 0 {
			return models.OrderLine{}, apperr.InvalidArgument("price override must not be negative")
		}
		price = *cmd.PriceOverride
	}

	return models.OrderLine{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		FoodID:      food.ID,
		Description: food.Description,
		Price:       price,
		Quantity:    cmd.Quantity,
		Status:      models.LinePending,
		CreatedAt:   now.UTC(),
	}, nil
}

// CancelLine moves a line to CANCELLED. Re-cancelling is a no-op, not an
// error; the second return reports whether anything changed.
func CancelLine(line models.OrderLine, now time.Time) (models.OrderLine, bool) {
	if line.Status == models.LineCancelled {
		return line, false
	}
	line.Status = models.LineCancelled
	line.UpdatedAt = now.UTC()
	return line, true
}

// RecomputeTotal derives sum_price from the current lines: Σ price × quantity
// over everything not cancelled. This is the sole writer of the field; no
// other code path sets it.
func RecomputeTotal(lines []models.OrderLine) float64 {
	var sum float64
	for _, l := range lines {
		if l.Status == models.LineCancelled {
			continue
		}
		sum += l.Price * float64(l.Quantity)
	}
	return sum
}
