package controllers

import (
	"errors"
	"net/http"

	"dropship-hub/models"
	"dropship-hub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func GetCart(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := models.GetCartItemsByEmail(ctx, callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cart":  items,
		"total": services.CartTotal(items).InexactFloat64(),
	})
}

// AddToCart adds a product line, merging with an existing line of the same size and color
func AddToCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Size      string `json:"size"`
		Color     string `json:"color"`
		Quantity  int    `json:"quantity"`
	}
	if !bindJSON(c, &input) {
		return
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		badRequest(c, "Invalid productId")
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := models.GetProductByID(ctx, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	variant, ok := product.Variant(input.Size)
	if !ok {
		badRequest(c, "Unknown size: "+input.Size)
		return
	}
	if err := services.ValidateCartAdd(input.Quantity, variant.Stock); err != nil {
		respondError(c, err)
		return
	}

	email := callerEmail(c)
	existing, err := models.FindCartLine(ctx, email, productID, variant.Size, input.Color)
	switch {
	case err == nil:
		next, err := services.NextCartQuantity(existing.Quantity, variant.Stock, "", existing.Quantity+input.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := models.SetCartQuantity(ctx, existing.ID, next, variant.Stock); err != nil {
			respondError(c, err)
			return
		}
		existing.Quantity, existing.Stock = next, variant.Stock
		c.JSON(http.StatusOK, existing)
	case errors.Is(err, mongo.ErrNoDocuments):
		item, err := models.AddCartItem(ctx, models.CartItem{
			Email:     email,
			ProductID: productID,
			Name:      product.Name,
			Thumbnail: product.Thumbnail,
			Size:      variant.Size,
			Color:     input.Color,
			Price:     variant.Price,
			Quantity:  input.Quantity,
			Stock:     variant.Stock,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	default:
		respondError(c, err)
	}
}

// UpdateCartItem takes {"action":"increment"|"decrement"} or {"quantity":n}
func UpdateCartItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Action   string `json:"action" binding:"omitempty,oneof=increment decrement"`
		Quantity int    `json:"quantity"`
	}
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item, err := models.GetCartItem(ctx, id, callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	next, err := services.NextCartQuantity(item.Quantity, item.Stock, input.Action, input.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := models.SetCartQuantity(ctx, id, next, item.Stock); err != nil {
		respondError(c, err)
		return
	}
	item.Quantity = next
	c.JSON(http.StatusOK, item)
}

func RemoveFromCart(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := models.RemoveCartItem(ctx, id, callerEmail(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from cart"})
}
