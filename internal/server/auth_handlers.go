package server

import (
	"time"

	"scaffold/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the login form.
type LoginRequest struct {
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	Recaptcha string `json:"g-recaptcha-response" form:"g-recaptcha-response"`
	Next      string `json:"next" form:"next"`
}

// Login checks credentials and starts a session.
// POST /login
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if !s.parseBody(c, &req) {
		return nil
	}

	if !s.captcha.Verify(c.UserContext(), req.Recaptcha, c.IP()) {
		return s.respondError(c, models.NewValidationError("CAPTCHA verification failed"))
	}

	res, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	next := req.Next
	if next == "" {
		next = c.Query("next")
	}
	redirect := safeNext(next)
	if redirect == "" {
		redirect = "/welcome"
	}

	return c.JSON(fiber.Map{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       res.User,
		"redirect":   redirect,
	})
}

// Logout revokes the current session.
// POST /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), sessionToken(c)); err != nil {
		return s.respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out", "redirect": "/"})
}

// Welcome greets the logged-in user.
// GET /welcome
func (s *Server) Welcome(c *fiber.Ctx) error {
	identity := identityOf(c)
	return c.JSON(fiber.Map{
		"username": identity.Username,
		"admin":    identity.Admin,
	})
}
