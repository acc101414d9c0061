package controllers

import (
	"net/http"

	"dropship-hub/database"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	if db.Client != nil {
		ctx, cancel := requestContext(c)
		defer cancel()
		if err := db.Client.Ping(ctx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "mongo": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
