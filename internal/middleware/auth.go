package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/auditnote/auditnote-api/internal/models"
)

// Context keys set by Auth
const (
	ctxIdentity  = "identity"
	ctxSessionID = "sessionID"
	ctxClaims    = "claims"
)

var (
	errMissingToken  = errors.New("Authorization header is required")
	errHeaderFormat  = errors.New("Invalid authorization header format")
	errTokenExpired  = errors.New("token has expired")
	errInvalidToken  = errors.New("invalid token")
	errInvalidClaims = errors.New("invalid token claims")
)

// Claims represents the JWT claims structure
type Claims struct {
	Email     string `json:"email"`
	FullName  string `json:"fullname"`
	Position  string `json:"position"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Identity returns the auditor identity carried by the token
func (c *Claims) Identity() models.Identity {
	return models.Identity{Email: c.Email, FullName: c.FullName, Position: c.Position}
}

// Auth validates the session token and exposes the auditor identity and
// audit session id to downstream handlers
func Auth(jwtSecret string) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	key := func(*jwt.Token) (interface{}, error) { return []byte(jwtSecret), nil }

	return func(c *gin.Context) {
		raw, err := bearerToken(c)
		if err == nil {
			var claims *Claims
			if claims, err = parseClaims(parser, raw, key); err == nil {
				c.Set(ctxIdentity, claims.Identity())
				c.Set(ctxSessionID, claims.SessionID)
				c.Set(ctxClaims, claims)
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	}
}

// bearerToken reads the Authorization header. Report download links carry
// the token as ?token= instead.
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", errHeaderFormat
	}
	return token, nil
}

func parseClaims(parser *jwt.Parser, raw string, key jwt.Keyfunc) (*Claims, error) {
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(raw, claims, key); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenExpired
		}
		return nil, errInvalidToken
	}
	if claims.SessionID == "" || claims.Email == "" {
		return nil, errInvalidClaims
	}
	return claims, nil
}

// GetIdentity extracts the logged-in auditor from the Gin context
func GetIdentity(c *gin.Context) models.Identity {
	v, exists := c.Get(ctxIdentity)
	if !exists {
		return models.Identity{}
	}
	return v.(models.Identity)
}

// GetSessionID extracts the audit session id from the Gin context
func GetSessionID(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}
