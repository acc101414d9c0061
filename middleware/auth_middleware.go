package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"dropship-hub/config"
	"dropship-hub/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/mongo"
)

// Context keys set by the auth middlewares
const (
	ContextEmail = "email"
	ContextName  = "name"
	ContextUser  = "user"
)

var errMissingToken = errors.New("token required")

const lookupTimeout = 5 * time.Second

// UserLookup loads the stored user for a verified email
type UserLookup func(ctx context.Context, email string) (models.User, error)

// tokenFromRequest prefers the Authorization header and falls back to the token cookie
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

func parseToken(raw string, cfg config.AuthConfig) (jwt.MapClaims, error) {
	if raw == "" {
		return nil, errMissingToken
	}
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenMalformed
	}
	if cfg.Issuer != "" && !claims.VerifyIssuer(cfg.Issuer, true) {
		return nil, jwt.ErrTokenInvalidIssuer
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) bool {
	email, _ := claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	c.Set(ContextEmail, email)
	if name, ok := claims["name"].(string); ok {
		c.Set(ContextName, name)
	}
	return true
}

// AuthMiddleware requires a valid identity provider token carrying an email claim
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(tokenFromRequest(c), cfg)
		if errors.Is(err, errMissingToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token required", "code": "UNAUTHORIZED"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "code": "UNAUTHORIZED"})
			return
		}
		if !setIdentity(c, claims) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Email missing in token", "code": "UNAUTHORIZED"})
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the identity when a valid token is present and never rejects the request
func OptionalAuth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := parseToken(tokenFromRequest(c), cfg); err == nil {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware. It loads the user and rejects non-admins.
func AdminMiddleware(lookup UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(ContextEmail)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token required", "code": "UNAUTHORIZED"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
		defer cancel()

		user, err := lookup(ctx, email)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if err != nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required", "code": "FORBIDDEN"})
			return
		}
		c.Set(ContextUser, user)
		c.Next()
	}
}
