package controllers

import (
	"errors"
	"net/http"
	"strings"

	"dropship-hub/logger"
	"dropship-hub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const contentCachePrefix = "content:"

// GetSiteContent serves one content kind, from the cache when possible.
// A kind never written returns empty fields.
func GetSiteContent(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		key := contentCachePrefix + kind
		if deps.Content != nil {
			if cached, ok, err := deps.Content.Get(ctx, key); err == nil && ok {
				c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
				return
			} else if err != nil {
				logger.FromGin(c).Warn("Content cache read failed", zap.String("key", key), zap.Error(err))
			}
		}

		sc, err := models.GetSiteContent(ctx, kind)
		if errors.Is(err, mongo.ErrNoDocuments) {
			sc = models.SiteContent{Kind: kind, Fields: map[string]string{}}
		} else if err != nil {
			respondError(c, err)
			return
		}

		if deps.Content != nil {
			if err := deps.Content.Set(ctx, key, sc); err != nil {
				logger.FromGin(c).Warn("Content cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		c.JSON(http.StatusOK, sc)
	}
}

func putSiteContent(c *gin.Context, kind string, fields map[string]string) {
	ctx, cancel := requestContext(c)
	defer cancel()

	sc, err := models.PutSiteContent(ctx, kind, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	if deps.Content != nil {
		if err := deps.Content.DeleteByPrefix(ctx, contentCachePrefix); err != nil {
			logger.FromGin(c).Warn("Content cache invalidation failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, sc)
}

func SetTelegramGroup(c *gin.Context) {
	var input struct {
		Link string `json:"link" binding:"required,url"`
	}
	if !bindJSON(c, &input) {
		return
	}
	putSiteContent(c, models.ContentTelegramGroup, map[string]string{"link": input.Link})
}

func SetContactInfo(c *gin.Context) {
	var input struct {
		Phone    string `json:"phone" binding:"required,bdphone"`
		Email    string `json:"email" binding:"omitempty,email"`
		Address  string `json:"address"`
		Facebook string `json:"facebook" binding:"omitempty,url"`
		WhatsApp string `json:"whatsapp"`
	}
	if !bindJSON(c, &input) {
		return
	}
	putSiteContent(c, models.ContentContactInfo, map[string]string{
		"phone":    input.Phone,
		"email":    input.Email,
		"address":  input.Address,
		"facebook": input.Facebook,
		"whatsapp": input.WhatsApp,
	})
}

// SetWebsiteLogo takes a multipart "logo" file, or JSON {"image": url}
func SetWebsiteLogo(c *gin.Context) {
	var image string
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("logo")
		if err != nil {
			badRequest(c, "logo file is required")
			return
		}
		ctx, cancel := requestContext(c)
		defer cancel()
		image, err = uploadImage(ctx, fh, "site")
		if err != nil {
			respondError(c, err)
			return
		}
	} else {
		var input struct {
			Image string `json:"image" binding:"required,url"`
		}
		if !bindJSON(c, &input) {
			return
		}
		image = input.Image
	}
	putSiteContent(c, models.ContentWebsiteLogo, map[string]string{"image": image})
}
