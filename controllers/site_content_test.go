package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"dropship-hub/cache"
	"dropship-hub/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSiteContentServesCache(t *testing.T) {
	content := cache.NewMemoryContentCache(time.Minute)
	require.NoError(t, content.Set(context.Background(), "content:"+models.ContentTelegramGroup, models.SiteContent{
		Kind:   models.ContentTelegramGroup,
		Fields: map[string]string{"link": "https://t.me/dropship"},
	}))
	Init(Deps{Content: content})

	r := gin.New()
	r.GET("/telegram_group", GetSiteContent(models.ContentTelegramGroup))

	w := doJSON(r, http.MethodGet, "/telegram_group", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://t.me/dropship")
}

func TestSiteContentValidation(t *testing.T) {
	Init(Deps{})
	r := gin.New()
	r.POST("/telegram_group", SetTelegramGroup)
	r.POST("/contact-info", SetContactInfo)
	r.POST("/website-logo", SetWebsiteLogo)

	tests := []struct {
		name    string
		path    string
		body    map[string]string
		message string
	}{
		{"telegram link must be a url", "/telegram_group", map[string]string{"link": "not a link"}, "Link must be a valid URL"},
		{"contact phone must be a mobile number", "/contact-info", map[string]string{"phone": "12345"}, "Phone must be a valid mobile number"},
		{"contact email must be valid", "/contact-info", map[string]string{"phone": "01812345678", "email": "nope"}, "Email must be a valid email"},
		{"logo needs an image", "/website-logo", map[string]string{}, "Image is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, tt.path, tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, decodeBody(t, w)["error"])
		})
	}
}
