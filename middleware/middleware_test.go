package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dropship-hub/config"
	"dropship-hub/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

var testAuth = config.AuthConfig{JWTSecret: "test-secret", Issuer: "https://id.example"}

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"email": "Buyer@X.com",
		"name":  "Buyer",
		"iss":   "https://id.example",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString(ContextEmail)})
	})
	r.GET("/", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(testAuth))

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		status int
		body   string
	}{
		{
			name:   "bearer header",
			setup:  func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(), "test-secret")) },
			status: http.StatusOK,
			body:   `{"email":"buyer@x.com"}`,
		},
		{
			name: "cookie",
			setup: func(req *http.Request) {
				req.AddCookie(&http.Cookie{Name: "token", Value: signToken(t, validClaims(), "test-secret")})
			},
			status: http.StatusOK,
			body:   `{"email":"buyer@x.com"}`,
		},
		{
			name:   "missing token",
			setup:  func(*http.Request) {},
			status: http.StatusUnauthorized,
			body:   `{"error":"Token required","code":"UNAUTHORIZED"}`,
		},
		{
			name:   "wrong secret",
			setup:  func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(), "other")) },
			status: http.StatusUnauthorized,
			body:   `{"error":"Invalid token","code":"UNAUTHORIZED"}`,
		},
		{
			name: "expired",
			setup: func(req *http.Request) {
				claims := validClaims()
				claims["exp"] = time.Now().Add(-time.Minute).Unix()
				req.Header.Set("Authorization", "Bearer "+signToken(t, claims, "test-secret"))
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "wrong issuer",
			setup: func(req *http.Request) {
				claims := validClaims()
				claims["iss"] = "https://evil.example"
				req.Header.Set("Authorization", "Bearer "+signToken(t, claims, "test-secret"))
			},
			status: http.StatusUnauthorized,
		},
		{
			name: "no email claim",
			setup: func(req *http.Request) {
				claims := validClaims()
				delete(claims, "email")
				req.Header.Set("Authorization", "Bearer "+signToken(t, claims, "test-secret"))
			},
			status: http.StatusUnauthorized,
			body:   `{"error":"Email missing in token","code":"UNAUTHORIZED"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := newRouter(OptionalAuth(testAuth))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":""}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims(), "test-secret"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"email":"buyer@x.com"}`, w.Body.String())
}

func TestAdminMiddleware(t *testing.T) {
	lookup := func(ctx context.Context, email string) (models.User, error) {
		switch email {
		case "admin@x.com":
			return models.User{Email: email, IsAdmin: true}, nil
		case "buyer@x.com":
			return models.User{Email: email}, nil
		case "down@x.com":
			return models.User{}, errors.New("server selection timeout")
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Error("lookup must run with a deadline")
		}
		return models.User{}, mongo.ErrNoDocuments
	}
	r := newRouter(AuthMiddleware(testAuth), AdminMiddleware(lookup))

	serve := func(email string) int {
		claims := validClaims()
		claims["email"] = email
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, claims, "test-secret"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, serve("admin@x.com"))
	assert.Equal(t, http.StatusForbidden, serve("buyer@x.com"))
	assert.Equal(t, http.StatusForbidden, serve("ghost@x.com"))
	assert.Equal(t, http.StatusInternalServerError, serve("down@x.com"), "a database outage is not a permission problem")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := gin.New()
	r.POST("/", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusCreated) })

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code, "other IPs have their own bucket")
}
