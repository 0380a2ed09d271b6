package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Context keys set by the auth middlewares.
const (
	ContextKeyUserID          = "user_id"
	ContextKeyUserRole        = "role"
	ContextKeyIsAuthenticated = "is_authenticated"
)

// AuthMiddleware rejects requests without a valid access token and puts
// user_id and role into the gin context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := VerifyToken(parts[1], jwtSecret)
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		userIDStr, ok := claims["user_id"].(string)
		if !ok {
			c.JSON(401, gin.H{"error": "invalid user ID in token"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid UUID format"})
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyIsAuthenticated, true)
		if role, ok := claims["role"].(string); ok {
			c.Set(ContextKeyUserRole, role)
		}

		c.Next()
	}
}

// OptionalAuthMiddleware allows both authenticated and anonymous users.
// A missing or invalid token continues as anonymous without error; a valid
// token sets user_id for downstream middleware (cart resolution).
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			setAnonymous(c)
			c.Next()
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			setAnonymous(c)
			c.Next()
			return
		}

		claims, err := VerifyToken(headerParts[1], jwtSecret)
		if err != nil {
			setAnonymous(c)
			c.Next()
			return
		}

		userIDStr, ok := claims["user_id"].(string)
		if !ok || userIDStr == "" {
			setAnonymous(c)
			c.Next()
			return
		}

		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			setAnonymous(c)
			c.Next()
			return
		}

		c.Set(ContextKeyIsAuthenticated, true)
		c.Set(ContextKeyUserID, userID)
		if role, ok := claims["role"].(string); ok {
			c.Set(ContextKeyUserRole, role)
		}

		c.Next()
	}
}

func setAnonymous(c *gin.Context) {
	c.Set(ContextKeyIsAuthenticated, false)
	c.Set(ContextKeyUserID, nil)
}

// GetAuthenticatedUserID returns (userID, true) if the request carries a
// valid session, (nil, false) otherwise.
func GetAuthenticatedUserID(c *gin.Context) (*uuid.UUID, bool) {
	isAuth, exists := c.Get(ContextKeyIsAuthenticated)
	if !exists || !isAuth.(bool) {
		return nil, false
	}

	userID, exists := c.Get(ContextKeyUserID)
	if !exists || userID == nil {
		return nil, false
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return nil, false
	}

	return &uid, true
}

// MustUserID returns the authenticated user id; only valid behind AuthMiddleware.
func MustUserID(c *gin.Context) uuid.UUID {
	uid, _ := c.Get(ContextKeyUserID)
	return uid.(uuid.UUID)
}

func VerifyToken(tokenString string, secret string) (jwt.MapClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		jwt.MapClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
	)

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	return claims, nil
}
