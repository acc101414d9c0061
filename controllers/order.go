package controllers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"dropship-hub/invoice"
	"dropship-hub/models"
	"dropship-hub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type paymentInput struct {
	Method        string `json:"method" binding:"required"`
	Number        string `json:"number" binding:"required,bdphone"`
	TransactionID string `json:"transactionId" binding:"required"`
}

func (p paymentInput) model() models.Payment {
	return models.Payment{Method: p.Method, Number: p.Number, TransactionID: strings.TrimSpace(p.TransactionID)}
}

type deliveryInput struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required,bdphone"`
	Address  string `json:"address" binding:"required"`
	District string `json:"district" binding:"required"`
	Note     string `json:"note"`
}

func (d deliveryInput) model() models.Delivery {
	return models.Delivery{Name: d.Name, Phone: d.Phone, Address: d.Address, District: d.District, Note: d.Note}
}

// CreateOrder checks out the caller's cart, or the listed cart lines
func CreateOrder(c *gin.Context) {
	var input struct {
		CartItemIDs  []string      `json:"cartItemIds"`
		SellingPrice float64       `json:"amar_bikri_mullo" binding:"gte=0"`
		Payment      paymentInput  `json:"payment" binding:"required"`
		Delivery     deliveryInput `json:"delivery" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	ids := make([]primitive.ObjectID, 0, len(input.CartItemIDs))
	for _, raw := range input.CartItemIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			badRequest(c, "Invalid cart item id: "+raw)
			return
		}
		ids = append(ids, id)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := deps.Checkout.Checkout(ctx, services.CheckoutRequest{
		Email:        callerEmail(c),
		CartItemIDs:  ids,
		SellingPrice: input.SellingPrice,
		Payment:      input.Payment.model(),
		Delivery:     input.Delivery.model(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrders returns the caller's orders; admins see all, filtered by ?email= and ?status=
func GetOrders(c *gin.Context) {
	admin, err := isAdmin(c)
	if err != nil {
		respondError(c, err)
		return
	}

	filter := bson.M{"email": callerEmail(c)}
	if admin {
		filter = bson.M{}
		if email := c.Query("email"); email != "" {
			filter["email"] = strings.ToLower(email)
		}
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(services.NormalizeOrderStatus(status)) + "$", Options: "i"}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := models.FindOrders(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// loadOwnOrder loads the order and checks the caller owns it or is an admin
func loadOwnOrder(c *gin.Context) (models.Order, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return models.Order{}, false
	}
	admin, err := isAdmin(c)
	if err != nil {
		respondError(c, err)
		return models.Order{}, false
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := models.GetOrderByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return models.Order{}, false
	}
	if !admin && order.Email != callerEmail(c) {
		respondError(c, services.ErrNotFound)
		return models.Order{}, false
	}
	return order, true
}

func GetOrderByID(c *gin.Context) {
	if order, ok := loadOwnOrder(c); ok {
		c.JSON(http.StatusOK, order)
	}
}

func GetOrderInvoice(c *gin.Context) {
	order, ok := loadOwnOrder(c)
	if !ok {
		return
	}

	shopName, trackURL := "Dropship Hub", ""
	if deps.Config != nil {
		shopName = deps.Config.App.Name
		trackURL = strings.TrimRight(deps.Config.App.BaseURL, "/") + "/orders/" + order.ID.Hex()
	}
	pdf, err := invoice.OrderPDF(order, shopName, trackURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", order.ID.Hex()))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// UpdateOrder lets admins set the status and correct delivery details
func UpdateOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status       *string        `json:"status"`
		SellingPrice *float64       `json:"amar_bikri_mullo" binding:"omitempty,gte=0"`
		Delivery     *deliveryInput `json:"delivery"`
	}
	if !bindJSON(c, &input) {
		return
	}

	set := bson.M{}
	if input.Status != nil {
		status := services.NormalizeOrderStatus(*input.Status)
		if status == "" {
			badRequest(c, "status cannot be empty")
			return
		}
		set["status"] = status
	}
	if input.SellingPrice != nil {
		set["amar_bikri_mullo"] = *input.SellingPrice
	}
	if input.Delivery != nil {
		set["delivery"] = input.Delivery.model()
	}
	if len(set) == 0 {
		badRequest(c, "Nothing to update")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := models.UpdateOrder(ctx, id, set)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
