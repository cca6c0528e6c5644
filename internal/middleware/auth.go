package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/forkful/backend/internal/logging"
	"github.com/pageza/forkful/backend/internal/types"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// UserChecker is implemented by validators that can confirm a token's user
// still exists. Tokens of deleted accounts are then rejected.
type UserChecker interface {
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireAuth rejects requests without a valid access token
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}

		claims, status, msg := authenticate(c, validator, authHeader)
		if claims == nil {
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		setUser(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is sent but lets anonymous
// requests through. A bad token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		claims, status, msg := authenticate(c, validator, authHeader)
		if claims == nil {
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		setUser(c, claims)
		c.Next()
	}
}

// AnonymousReads lets safe methods through with OptionalAuth and requires a
// token for everything else
func AnonymousReads(validator TokenValidator) gin.HandlerFunc {
	required := RequireAuth(validator)
	optional := OptionalAuth(validator)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			optional(c)
		default:
			required(c)
		}
	}
}

func authenticate(c *gin.Context, validator TokenValidator, header string) (*types.TokenClaims, int, string) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, http.StatusUnauthorized, "Invalid authorization header format"
	}

	claims, err := validator.ValidateToken(parts[1])
	if err != nil || claims.TokenType != types.AccessToken {
		return nil, http.StatusUnauthorized, "Given token not valid for any token type"
	}

	if checker, ok := validator.(UserChecker); ok {
		exists, err := checker.UserExists(c.Request.Context(), claims.UserID)
		if err != nil {
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to check token user")
			return nil, http.StatusInternalServerError, "Internal Server Error"
		}
		if !exists {
			return nil, http.StatusUnauthorized, "User not found"
		}
	}
	return claims, 0, ""
}

func setUser(c *gin.Context, claims *types.TokenClaims) {
	c.Set(userIDKey, claims.UserID)
	c.Set(usernameKey, claims.Username)
}

// UserID returns the authenticated user's id
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// Viewer returns the authenticated user's id, or nil for anonymous requests
func Viewer(c *gin.Context) *uuid.UUID {
	if id, ok := UserID(c); ok {
		return &id
	}
	return nil
}
