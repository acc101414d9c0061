package controllers

import (
	"errors"
	"net/http"

	"dropship-hub/database"
	"dropship-hub/logger"
	"dropship-hub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func statusForCode(code string) int {
	switch code {
	case services.CodeNotFound:
		return http.StatusNotFound
	case services.CodeInvalidInput, services.CodeBelowMinimum:
		return http.StatusBadRequest
	case services.CodeUnauthorized:
		return http.StatusUnauthorized
	case services.CodeForbidden:
		return http.StatusForbidden
	case services.CodeConflict, services.CodeInsufficientStock:
		return http.StatusConflict
	case services.CodeInsufficientBalance:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error", "code"}. Unknown errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	var de *services.DomainError
	switch {
	case errors.As(err, &de):
		c.JSON(statusForCode(de.Code), gin.H{"error": de.Message, "code": de.Code})
	case errors.Is(err, mongo.ErrNoDocuments):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found", "code": services.CodeNotFound})
	case db.IsDuplicateKey(err):
		c.JSON(http.StatusConflict, gin.H{"error": "Already exists", "code": services.CodeConflict})
	default:
		logger.FromGin(c).Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": services.CodeInvalidInput})
}

// bindJSON binds the body and answers 400 with the first validation failure
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, validationMessage(err))
		return false
	}
	return true
}

func paramID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

func forbidden(c *gin.Context) {
	respondError(c, services.ErrForbidden)
}
