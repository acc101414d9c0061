package services

import (
	"strings"

	"dropship-hub/models"

	"github.com/shopspring/decimal"
)

// Cart quantity actions
const (
	ActionIncrement = "increment"
	ActionDecrement = "decrement"
)

// NextCartQuantity applies action to current, or sets quantity when action is empty.
// The result stays within [1, stock].
func NextCartQuantity(current, stock int, action string, quantity int) (int, error) {
	var next int
	switch action {
	case ActionIncrement:
		next = current + 1
	case ActionDecrement:
		next = current - 1
	case "":
		next = quantity
	default:
		return 0, Invalid("Unknown cart action: " + action)
	}
	if next < 1 {
		return 0, Invalid("Quantity cannot be less than 1")
	}
	if next > stock {
		return 0, ErrInsufficientStock
	}
	return next, nil
}

// ValidateCartAdd checks a new cart line against the product's stock
func ValidateCartAdd(quantity, stock int) error {
	if quantity < 1 {
		return Invalid("Quantity must be at least 1")
	}
	if quantity > stock {
		return ErrInsufficientStock
	}
	return nil
}

// CartTotal sums price × quantity over the items
func CartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// DeliveryCharge is 60 inside Dhaka and 100 elsewhere
func DeliveryCharge(district string) decimal.Decimal {
	if isDhaka(district) {
		return decimal.NewFromInt(60)
	}
	return decimal.NewFromInt(100)
}

func isDhaka(district string) bool {
	return strings.EqualFold(strings.TrimSpace(district), "Dhaka")
}
