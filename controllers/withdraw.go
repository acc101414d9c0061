package controllers

import (
	"net/http"
	"strings"

	"dropship-hub/models"
	"dropship-hub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

func GetWithdraws(c *gin.Context) {
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
		filter["status"] = status
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	ws, err := models.FindWithdraws(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func GetWithdrawBalance(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	balance, err := deps.Withdraws.Balance(ctx, callerEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// RequestWithdraw records a withdrawal. A repeated Idempotency-Key returns the first result.
func RequestWithdraw(c *gin.Context) {
	var input struct {
		Amount        float64 `json:"amount" binding:"required,gt=0"`
		Source        string  `json:"source"`
		PaymentMethod string  `json:"paymentMethod" binding:"required"`
		PaymentNumber string  `json:"paymentNumber" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	w, replayed, err := deps.Withdraws.Request(ctx, services.WithdrawRequest{
		Email:          callerEmail(c),
		Amount:         input.Amount,
		Source:         input.Source,
		PaymentMethod:  input.PaymentMethod,
		PaymentNumber:  strings.TrimSpace(input.PaymentNumber),
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	c.JSON(status, w)
}

// DecideWithdraw approves (and pays out) or rejects a pending withdrawal
func DecideWithdraw(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status string `json:"status" binding:"required,oneof=Approved Rejected"`
	}
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	w, err := deps.Withdraws.Decide(ctx, id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
