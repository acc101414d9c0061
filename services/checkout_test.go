package services

import (
	"context"
	"testing"

	"dropship-hub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newCheckoutFixture() (*CheckoutService, *fakeCheckoutRepo, primitive.ObjectID, primitive.ObjectID) {
	shirt := primitive.NewObjectID()
	mug := primitive.NewObjectID()
	repo := &fakeCheckoutRepo{
		products: map[primitive.ObjectID]*models.Product{
			shirt: {ID: shirt, Name: "Shirt", Sizes: []models.SizeVariant{{Size: "M", Price: 450, Stock: 5}, {Size: "L", Price: 500, Stock: 1}}},
			mug:   {ID: mug, Name: "Mug", Sizes: []models.SizeVariant{{Size: "", Price: 200, Stock: 10}}},
		},
		cart: []models.CartItem{
			{ID: primitive.NewObjectID(), Email: "a@x.com", ProductID: shirt, Name: "Shirt", Size: "M", Price: 400, Quantity: 2},
			{ID: primitive.NewObjectID(), Email: "a@x.com", ProductID: mug, Name: "Mug", Quantity: 3},
		},
	}
	return NewCheckoutService(repo, nil), repo, shirt, mug
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("places order at current prices", func(t *testing.T) {
		svc, repo, shirt, mug := newCheckoutFixture()

		order, err := svc.Checkout(ctx, CheckoutRequest{
			Email:        "a@x.com",
			SellingPrice: 2000,
			Payment:      models.Payment{Method: "bKash", Number: "01712345678", TransactionID: "TX1"},
			Delivery:     models.Delivery{Name: "Rahim", District: "dhaka"},
		})
		require.NoError(t, err)

		assert.Equal(t, "Pending", order.Status)
		require.Len(t, order.Items, 2)
		assert.Equal(t, 450.0, order.Items[0].Price)
		assert.Equal(t, 900.0, order.Items[0].Subtotal)
		assert.Equal(t, 1500.0, order.Subtotal)
		assert.Equal(t, 60.0, order.DeliveryCharge)
		assert.Equal(t, 1560.0, order.Total)
		assert.Equal(t, 2000.0, order.SellingPrice)

		assert.Equal(t, 3, repo.products[shirt].Sizes[0].Stock)
		assert.Equal(t, 7, repo.products[mug].Sizes[0].Stock)
		assert.Len(t, repo.cleared, 2)
	})

	t.Run("outside Dhaka pays more delivery", func(t *testing.T) {
		svc, _, _, _ := newCheckoutFixture()

		order, err := svc.Checkout(ctx, CheckoutRequest{Email: "a@x.com", Delivery: models.Delivery{District: "Sylhet"}})
		require.NoError(t, err)
		assert.Equal(t, 100.0, order.DeliveryCharge)
	})

	t.Run("only selected lines", func(t *testing.T) {
		svc, repo, _, mug := newCheckoutFixture()
		mugLine := repo.cart[1].ID

		order, err := svc.Checkout(ctx, CheckoutRequest{Email: "a@x.com", CartItemIDs: []primitive.ObjectID{mugLine}})
		require.NoError(t, err)
		require.Len(t, order.Items, 1)
		assert.Equal(t, mug, order.Items[0].ProductID)
		assert.Equal(t, []primitive.ObjectID{mugLine}, repo.cleared)
	})

	t.Run("empty cart", func(t *testing.T) {
		svc, _, _, _ := newCheckoutFixture()

		_, err := svc.Checkout(ctx, CheckoutRequest{Email: "nobody@x.com"})
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("stock re-checked against product", func(t *testing.T) {
		svc, repo, _, _ := newCheckoutFixture()
		repo.cart[0].Size = "L"

		_, err := svc.Checkout(ctx, CheckoutRequest{Email: "a@x.com"})
		assert.Equal(t, CodeInsufficientStock, CodeOf(err))
		assert.Empty(t, repo.orders)
	})

	t.Run("failed reservation rolls back earlier ones", func(t *testing.T) {
		svc, repo, shirt, mug := newCheckoutFixture()
		repo.decrementOK = func(id primitive.ObjectID) bool { return id != mug }

		_, err := svc.Checkout(ctx, CheckoutRequest{Email: "a@x.com"})
		assert.Equal(t, CodeInsufficientStock, CodeOf(err))
		assert.Equal(t, 5, repo.products[shirt].Sizes[0].Stock)
		assert.Empty(t, repo.cleared)
	})

	t.Run("failed insert rolls back stock", func(t *testing.T) {
		svc, repo, shirt, mug := newCheckoutFixture()
		repo.failOrder = true

		_, err := svc.Checkout(ctx, CheckoutRequest{Email: "a@x.com"})
		require.Error(t, err)
		assert.Equal(t, 5, repo.products[shirt].Sizes[0].Stock)
		assert.Equal(t, 10, repo.products[mug].Sizes[0].Stock)
		assert.Empty(t, repo.cleared)
	})

	t.Run("removed product", func(t *testing.T) {
		svc, repo, shirt, _ := newCheckoutFixture()
		delete(repo.products, shirt)

		_, err := svc.Checkout(ctx, CheckoutRequest{Email: "a@x.com"})
		assert.Equal(t, CodeInvalidInput, CodeOf(err))
	})

	t.Run("negative selling price", func(t *testing.T) {
		svc, _, _, _ := newCheckoutFixture()

		_, err := svc.Checkout(ctx, CheckoutRequest{Email: "a@x.com", SellingPrice: -1})
		assert.Equal(t, CodeInvalidInput, CodeOf(err))
	})
}
