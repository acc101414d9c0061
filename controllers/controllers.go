package controllers

import (
	"context"
	"errors"
	"time"

	"dropship-hub/cache"
	"dropship-hub/config"
	middlewares "dropship-hub/middleware"
	"dropship-hub/models"
	"dropship-hub/services"
	"dropship-hub/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

const requestTimeout = 5 * time.Second

// Deps are the collaborators the handlers share
type Deps struct {
	Config    *config.Config
	Images    storage.ImageStore
	Content   cache.ContentCache
	Withdraws *services.WithdrawService
	Checkout  *services.CheckoutService
	Packages  *services.PackageService
}

var (
	deps       Deps
	lookupUser middlewares.UserLookup = models.GetUserByEmail
)

// Init wires the handler dependencies. Call once before serving.
func Init(d Deps) {
	deps = d
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// currentUser returns the stored user behind the token, or nil for anonymous
// callers and signed-in callers that have not registered yet
func currentUser(c *gin.Context) (*models.User, error) {
	if v, ok := c.Get(middlewares.ContextUser); ok {
		if u, ok := v.(models.User); ok {
			return &u, nil
		}
	}
	email := c.GetString(middlewares.ContextEmail)
	if email == "" {
		return nil, nil
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := lookupUser(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Set(middlewares.ContextUser, u)
	return &u, nil
}

func isAdmin(c *gin.Context) (bool, error) {
	u, err := currentUser(c)
	if err != nil {
		return false, err
	}
	return u != nil && u.IsAdmin, nil
}

func callerEmail(c *gin.Context) string {
	return c.GetString(middlewares.ContextEmail)
}
