package controllers

import (
	"net/http"

	"dropship-hub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func GetWishlist(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	items, err := models.GetWishlist(ctx, callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func AddToWishlist(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		badRequest(c, "Invalid productId")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := models.GetProductByID(ctx, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	var price float64
	if v, ok := product.Variant(""); ok {
		price = v.Price
	}

	item, err := models.AddWishlistItem(ctx, models.WishlistItem{
		Email:     callerEmail(c),
		ProductID: productID,
		Name:      product.Name,
		Thumbnail: product.Thumbnail,
		Price:     price,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func RemoveFromWishlist(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := models.RemoveWishlistItem(ctx, id, callerEmail(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
}
