package services

import (
	"context"
	"errors"
	"fmt"

	"dropship-hub/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CheckoutRepository is the storage checkout needs
type CheckoutRepository interface {
	GetCartItemsByEmail(ctx context.Context, email string) ([]models.CartItem, error)
	GetProductByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, size string, qty int) (bool, error)
	IncrementStock(ctx context.Context, id primitive.ObjectID, size string, qty int) error
	CreateOrder(ctx context.Context, order models.Order) (models.Order, error)
	ClearCart(ctx context.Context, email string, ids []primitive.ObjectID) error
}

// CheckoutRequest turns (part of) a cart into an order.
// An empty CartItemIDs means the whole cart.
type CheckoutRequest struct {
	Email        string
	CartItemIDs  []primitive.ObjectID
	SellingPrice float64
	Payment      models.Payment
	Delivery     models.Delivery
}

type CheckoutService struct {
	repo CheckoutRepository
	log  *zap.Logger
}

func NewCheckoutService(repo CheckoutRepository, log *zap.Logger) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{repo: repo, log: log}
}

type reservation struct {
	productID primitive.ObjectID
	size      string
	qty       int
}

// Checkout re-checks stock, reserves it, records the order and clears the
// purchased cart lines. Reserved stock is returned if any later step fails.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (models.Order, error) {
	if req.SellingPrice < 0 {
		return models.Order{}, Invalid("Selling price cannot be negative")
	}

	cart, err := s.repo.GetCartItemsByEmail(ctx, req.Email)
	if err != nil {
		return models.Order{}, fmt.Errorf("load cart: %w", err)
	}
	items := selectCartItems(cart, req.CartItemIDs)
	if len(items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	lines := make([]models.OrderItem, 0, len(items))
	subtotal := decimal.Zero
	for _, it := range items {
		product, err := s.repo.GetProductByID(ctx, it.ProductID)
		if err != nil {
			return models.Order{}, Invalid(fmt.Sprintf("%s is no longer available", it.Name))
		}
		variant, ok := product.Variant(it.Size)
		if !ok {
			return models.Order{}, Invalid(fmt.Sprintf("Size %s of %s is no longer available", it.Size, it.Name))
		}
		if it.Quantity < 1 {
			return models.Order{}, Invalid("Quantity must be at least 1")
		}
		if it.Quantity > variant.Stock {
			return models.Order{}, NewDomainError(CodeInsufficientStock,
				fmt.Sprintf("Only %d left of %s (%s)", variant.Stock, product.Name, variant.Size))
		}
		lineTotal := decimal.NewFromFloat(variant.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Size:      variant.Size,
			Color:     it.Color,
			Price:     variant.Price,
			Quantity:  it.Quantity,
			Subtotal:  lineTotal.InexactFloat64(),
		})
	}

	reserved := make([]reservation, 0, len(lines))
	for _, l := range lines {
		ok, err := s.repo.DecrementStock(ctx, l.ProductID, l.Size, l.Quantity)
		if err == nil && !ok {
			err = NewDomainError(CodeInsufficientStock, fmt.Sprintf("%s (%s) just sold out", l.Name, l.Size))
		}
		if err != nil {
			s.release(ctx, reserved)
			var de *DomainError
			if errors.As(err, &de) {
				return models.Order{}, de
			}
			return models.Order{}, fmt.Errorf("reserve stock: %w", err)
		}
		reserved = append(reserved, reservation{productID: l.ProductID, size: l.Size, qty: l.Quantity})
	}

	charge := DeliveryCharge(req.Delivery.District)
	order, err := s.repo.CreateOrder(ctx, models.Order{
		Email:          req.Email,
		Items:          lines,
		Subtotal:       subtotal.InexactFloat64(),
		DeliveryCharge: charge.InexactFloat64(),
		Total:          subtotal.Add(charge).InexactFloat64(),
		SellingPrice:   req.SellingPrice,
		Status:         "Pending",
		Payment:        req.Payment,
		Delivery:       req.Delivery,
	})
	if err != nil {
		s.release(ctx, reserved)
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}

	ids := make([]primitive.ObjectID, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if err := s.repo.ClearCart(ctx, req.Email, ids); err != nil {
		s.log.Warn("Order placed but cart not cleared",
			zap.String("order_id", order.ID.Hex()), zap.String("email", req.Email), zap.Error(err))
	}

	s.log.Info("Order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("email", req.Email),
		zap.Float64("total", order.Total),
	)
	return order, nil
}

func (s *CheckoutService) release(ctx context.Context, reserved []reservation) {
	ctx = context.WithoutCancel(ctx)
	for _, r := range reserved {
		if err := s.repo.IncrementStock(ctx, r.productID, r.size, r.qty); err != nil {
			s.log.Error("Failed to release reserved stock",
				zap.String("product_id", r.productID.Hex()), zap.String("size", r.size), zap.Int("qty", r.qty), zap.Error(err))
		}
	}
}

func selectCartItems(cart []models.CartItem, ids []primitive.ObjectID) []models.CartItem {
	if len(ids) == 0 {
		return cart
	}
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.CartItem
	for _, it := range cart {
		if want[it.ID] {
			out = append(out, it)
		}
	}
	return out
}
