package middleware

import (
	"strings"

	"creditoya-web/internal/pkg/logger"
	"creditoya-web/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Page locations the guard redirects between
const (
	PanelPath = "/panel"
	AuthPath  = "/auth"
)

// Decide returns where a page request for path should be redirected,
// or "" to let it through.
func Decide(path string, session token.Result) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}

	switch {
	case path == "/":
		if session.IsValid {
			return PanelPath
		}
	case strings.HasPrefix(path, AuthPath+"/"):
		return ""
	case path == AuthPath:
		if session.IsValid {
			return PanelPath
		}
	case path == PanelPath || strings.HasPrefix(path, PanelPath+"/"):
		if !session.IsValid || !session.Claims.IsClient() {
			return AuthPath
		}
	}
	return ""
}

// NavigationGuard redirects page requests based on the session cookie
func NavigationGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := token.ValidateNow(c.Cookies(token.CookieName))
		target := Decide(c.Path(), session)

		entry := logger.Log.WithFields(logrus.Fields{
			"path":  c.Path(),
			"valid": session.IsValid,
		})
		if session.Claims != nil {
			entry = entry.WithField("type", session.Claims.Type)
		}

		if target == "" {
			entry.Debug("navigation allowed")
			return c.Next()
		}

		entry.WithField("redirect", target).Debug("navigation redirected")
		return c.Redirect(target, fiber.StatusFound)
	}
}
