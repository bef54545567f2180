package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-secret"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(exp time.Time) Claims {
	return Claims{
		Email:     "a@example.com",
		FullName:  "Nguyễn Văn A",
		Position:  "Auditor",
		SessionID: "sid-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", Auth(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"email":      GetIdentity(c).Email,
			"session_id": GetSessionID(c),
		})
	})
	return r
}

func TestAuth(t *testing.T) {
	router := newAuthRouter()
	valid := signToken(t, testSecret, validClaims(time.Now().Add(time.Hour)))

	noSession := validClaims(time.Now().Add(time.Hour))
	noSession.SessionID = ""

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "bearer token", header: "Bearer " + valid, want: http.StatusOK},
		{name: "query token", query: "?token=" + valid, want: http.StatusOK},
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, validClaims(time.Now().Add(-time.Minute))), want: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", validClaims(time.Now().Add(time.Hour))), want: http.StatusUnauthorized},
		{name: "no session id", header: "Bearer " + signToken(t, testSecret, noSession), want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"email":"a@example.com","session_id":"sid-1"}`, w.Body.String())
			}
		})
	}
}

func TestAuthExpiredMessage(t *testing.T) {
	router := newAuthRouter()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(time.Now().Add(-time.Hour))))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token has expired")
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("wildcard", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS([]string{"*"}))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "http://anywhere.test")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allow list", func(t *testing.T) {
		r := gin.New()
		r.Use(CORS([]string{"http://app.test"}))
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "http://app.test")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "http://evil.test")
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
