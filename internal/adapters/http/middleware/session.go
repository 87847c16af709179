package middleware

import (
	"creditoya-web/internal/pkg/response"
	"creditoya-web/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	localToken  = "sessionToken"
	localClaims = "sessionClaims"
)

// Session validates the session cookie of an /api request and stores the
// raw token and its claims in locals. Invalid sessions get a 401 carrying
// the validator's message.
func Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(token.CookieName)

		res := token.ValidateNow(raw)
		if !res.IsValid {
			return response.Unauthorized(c, res.Error)
		}

		c.Locals(localToken, raw)
		c.Locals(localClaims, res.Claims)

		return c.Next()
	}
}

// SessionToken returns the token stored by Session
func SessionToken(c *fiber.Ctx) string {
	raw, _ := c.Locals(localToken).(string)
	return raw
}

// SessionClaims returns the claims stored by Session, nil outside it
func SessionClaims(c *fiber.Ctx) *token.Claims {
	claims, _ := c.Locals(localClaims).(*token.Claims)
	return claims
}

// UserID returns explicit when set, otherwise the session subject
func UserID(c *fiber.Ctx, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if claims := SessionClaims(c); claims != nil {
		return claims.Subject
	}
	return ""
}

// OwnsUser reports whether userID may be acted on by the session. A token
// without a subject leaves the decision to the gateway.
func OwnsUser(c *fiber.Ctx, userID string) bool {
	claims := SessionClaims(c)
	if claims == nil || claims.Subject == "" {
		return true
	}
	return claims.Subject == userID
}
