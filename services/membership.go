package services

import (
	"time"

	"dropship-hub/models"
)

// CanSeePrices reports whether user may see product prices. Anonymous callers pass nil.
func CanSeePrices(user *models.User) bool {
	return user != nil && (user.IsMember || user.IsAdmin)
}

// HidePrices zeroes every price field of the product for non-members
func HidePrices(p models.Product) models.Product {
	sizes := make([]models.SizeVariant, len(p.Sizes))
	for i, s := range p.Sizes {
		sizes[i] = models.SizeVariant{Size: s.Size, Stock: s.Stock}
	}
	p.Sizes = sizes
	return p
}

// PriceView returns the products as the given user may see them
func PriceView(user *models.User, products []models.Product) []models.Product {
	if CanSeePrices(user) {
		return products
	}
	out := make([]models.Product, len(products))
	for i, p := range products {
		out[i] = HidePrices(p)
	}
	return out
}

// ExtendSubscription adds days to the later of now and the current end date
func ExtendSubscription(current *models.Subscription, plan string, days int, now time.Time) models.Subscription {
	start := now
	if current != nil && current.ValidUntil.After(now) {
		start = current.ValidUntil
	}
	return models.Subscription{Plan: plan, ValidUntil: start.AddDate(0, 0, days)}
}

// WithDerivedProfit fills profit as price minus buy price on every size
func WithDerivedProfit(sizes []models.SizeVariant) []models.SizeVariant {
	out := make([]models.SizeVariant, len(sizes))
	for i, s := range sizes {
		s.Profit = s.Price - s.BuyPrice
		out[i] = s
	}
	return out
}
