package controllers

import (
	"net/http"
	"strings"
	"time"

	"dropship-hub/database"
	"dropship-hub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// ownFilter scopes a listing to the caller unless they are an admin
func ownFilter(c *gin.Context) (bson.M, bool) {
	admin, err := isAdmin(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if admin {
		filter := bson.M{}
		if email := c.Query("email"); email != "" {
			filter["email"] = strings.ToLower(email)
		}
		return filter, true
	}
	return bson.M{"email": callerEmail(c)}, true
}

func listRecords[T models.Record](collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := ownFilter(c)
		if !ok {
			return
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		out, err := models.FindRecords[T](ctx, collection, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func setRecordStatus[T models.Record](collection, allowed string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var input struct {
			Status string `json:"status" binding:"required"`
		}
		if !bindJSON(c, &input) {
			return
		}
		if !containsWord(allowed, input.Status) {
			badRequest(c, "status must be one of: "+strings.ReplaceAll(allowed, " ", ", "))
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		out, err := models.SetRecordStatus[T](ctx, collection, id, input.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func containsWord(list, word string) bool {
	for _, w := range strings.Fields(list) {
		if w == word {
			return true
		}
	}
	return false
}

var (
	GetGifts          = listRecords[models.Gift](db.Gifts)
	UpdateGiftStatus  = setRecordStatus[models.Gift](db.Gifts, "Pending Sent")
	GetClassRequests  = listRecords[models.ClassRequest](db.ClassRequests)
	UpdateClassStatus = setRecordStatus[models.ClassRequest](db.ClassRequests, "Pending Scheduled Done")
)

// CreateGift lets a user claim a gift; admins may create one for any email
func CreateGift(c *gin.Context) {
	var input struct {
		Email       string `json:"email" binding:"omitempty,email"`
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Image       string `json:"image"`
	}
	if !bindJSON(c, &input) {
		return
	}

	email := callerEmail(c)
	if input.Email != "" && !strings.EqualFold(input.Email, email) {
		admin, err := isAdmin(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if !admin {
			forbidden(c)
			return
		}
		email = strings.ToLower(input.Email)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	gift := models.Gift{
		Email:       email,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Image:       input.Image,
		Status:      "Pending",
		CreatedAt:   time.Now(),
	}
	id, err := models.InsertRecord(ctx, db.Gifts, gift)
	if err != nil {
		respondError(c, err)
		return
	}
	gift.ID = id
	c.JSON(http.StatusCreated, gift)
}

func CreateClassRequest(c *gin.Context) {
	var input struct {
		Name    string `json:"name" binding:"required"`
		Phone   string `json:"phone" binding:"required,bdphone"`
		Topic   string `json:"topic" binding:"required"`
		Message string `json:"message"`
	}
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	req := models.ClassRequest{
		Email:     callerEmail(c),
		Name:      strings.TrimSpace(input.Name),
		Phone:     input.Phone,
		Topic:     input.Topic,
		Message:   input.Message,
		Status:    "Pending",
		CreatedAt: time.Now(),
	}
	id, err := models.InsertRecord(ctx, db.ClassRequests, req)
	if err != nil {
		respondError(c, err)
		return
	}
	req.ID = id
	c.JSON(http.StatusCreated, req)
}
