package server

import (
	"log/slog"
	"net/url"
	"strings"

	"scaffold/internal/middleware"
	"scaffold/internal/models"
	"scaffold/internal/policy"

	"github.com/gofiber/fiber/v2"
)

const (
	sessionCookie = "session"
	identityLocal = "identity"
)

// ResolveIdentity attaches the acting identity to every request. A missing
// or invalid session yields the anonymous identity, never an error.
func (s *Server) ResolveIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := s.authService.Resolve(c.UserContext(), sessionToken(c))
		if err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "Failed to resolve session", slog.String("error", err.Error()))
			identity = models.Anonymous
		}

		c.Locals(identityLocal, identity)
		if identity.Authenticated() {
			c.SetUserContext(middleware.WithUserID(c.UserContext(), identity.UserID))
		}
		return c.Next()
	}
}

// RequireLogin redirects anonymous requests to the login page.
func (s *Server) RequireLogin() fiber.Handler {
	return s.guard(policy.RequireLogin)
}

// RequireAdmin redirects anonymous requests to login and rejects
// authenticated non-admins with 403.
func (s *Server) RequireAdmin() fiber.Handler {
	return s.guard(policy.RequireAdmin)
}

func (s *Server) guard(check func(models.Identity) policy.Decision) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch d := check(identityOf(c)); d.Reason {
		case policy.ReasonOK:
			return c.Next()
		case policy.ReasonLoginRequired:
			return c.Redirect(loginRedirect(c), fiber.StatusFound)
		default:
			return models.RespondWithError(c, fiber.StatusForbidden, d.Err("", nil))
		}
	}
}

// identityOf returns the identity set by ResolveIdentity.
func identityOf(c *fiber.Ctx) models.Identity {
	if identity, ok := c.Locals(identityLocal).(models.Identity); ok {
		return identity
	}
	return models.Anonymous
}

// sessionToken reads the bearer token, falling back to the session cookie.
func sessionToken(c *fiber.Ctx) string {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Cookies(sessionCookie)
}

func loginRedirect(c *fiber.Ctx) string {
	return "/login?next=" + url.QueryEscape(c.OriginalURL())
}

// safeNext returns next if it is a local path, otherwise "".
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}
