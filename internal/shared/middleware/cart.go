package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartServiceInterface is the minimal cart surface the middleware needs.
// Kept here to avoid a dependency cycle with the cart domain.
type CartServiceInterface interface {
	GetUserCartID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	GetOrCreateCartBySession(ctx context.Context, sessionID string) (uuid.UUID, error)
}

const (
	SessionCookieName = "session_id"
	SessionMaxAge     = 60 * 60 * 24 * 30 // 30 days

	ContextKeyCartID          = "cart_id"
	ContextKeyIsAnonymousCart = "is_anonymous_cart"
	ContextKeySessionID       = "session_id"
)

// CartMiddlewareConfig holds cookie settings for the guest cart.
type CartMiddlewareConfig struct {
	CartService    CartServiceInterface
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieSameSite http.SameSite
}

// DefaultCartMiddlewareConfig returns secure defaults; set CookieSecure=false
// for local development.
func DefaultCartMiddlewareConfig(cartService CartServiceInterface) CartMiddlewareConfig {
	return CartMiddlewareConfig{
		CartService:    cartService,
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteLaxMode,
	}
}

// CartMiddleware resolves the request's cart. Runs after OptionalAuthMiddleware:
// authenticated requests resolve the user's cart; anonymous requests resolve a
// session-cookie cart, minting the cookie when absent.
func CartMiddleware(config CartMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, isAuth := GetAuthenticatedUserID(c)

		if isAuth && userID != nil {
			userCartID, err := config.CartService.GetUserCartID(c.Request.Context(), *userID)
			if err == nil && userCartID != uuid.Nil {
				c.Set(ContextKeyCartID, userCartID)
				c.Set(ContextKeyIsAnonymousCart, false)
				c.Next()
				return
			}
		}

		sessionID := getSessionID(c)
		if sessionID == "" {
			sessionID = uuid.New().String()
			setSessionCookie(c, sessionID, config)
		}

		anonCartID, err := config.CartService.GetOrCreateCartBySession(c.Request.Context(), sessionID)
		if err != nil {
			c.Set("cart_error", err.Error())
		} else {
			c.Set(ContextKeyCartID, anonCartID)
		}

		c.Set(ContextKeyIsAnonymousCart, true)
		c.Set(ContextKeySessionID, sessionID)

		c.Next()
	}
}

func getSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || sessionID == "" {
		return ""
	}

	// Reject non-UUID cookie values
	if _, err := uuid.Parse(sessionID); err != nil {
		return ""
	}

	return sessionID
}

func setSessionCookie(c *gin.Context, sessionID string, config CartMiddlewareConfig) {
	c.SetCookie(
		SessionCookieName,
		sessionID,
		SessionMaxAge,
		config.CookiePath,
		config.CookieDomain,
		config.CookieSecure,
		true, // httpOnly
	)
}

// GetCartID retrieves the resolved cart id from the context.
func GetCartID(c *gin.Context) (uuid.UUID, error) {
	cartIDValue, exists := c.Get(ContextKeyCartID)
	if !exists {
		return uuid.Nil, ErrCartIDNotFound
	}

	cartID, ok := cartIDValue.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrInvalidCartID
	}

	return cartID, nil
}

// IsAnonymousCart reports whether the resolved cart belongs to a guest session.
func IsAnonymousCart(c *gin.Context) bool {
	isAnon, exists := c.Get(ContextKeyIsAnonymousCart)
	if !exists {
		return true
	}

	anonymous, ok := isAnon.(bool)
	if !ok {
		return true
	}

	return anonymous
}

// GetSessionID retrieves the guest session id from the context.
func GetSessionID(c *gin.Context) string {
	sessionID, exists := c.Get(ContextKeySessionID)
	if !exists {
		return ""
	}

	sid, ok := sessionID.(string)
	if !ok {
		return ""
	}

	return sid
}

var (
	ErrCartIDNotFound = fmt.Errorf("cart_id not found in context")
	ErrInvalidCartID  = fmt.Errorf("invalid cart_id type in context")
)
