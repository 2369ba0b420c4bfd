package server

import (
	"scaffold/internal/models"
	"scaffold/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ContactRequest is the contact form.
type ContactRequest struct {
	Email     string `json:"email" form:"email"`
	Name      string `json:"name" form:"name"`
	Message   string `json:"message" form:"message"`
	Recaptcha string `json:"g-recaptcha-response" form:"g-recaptcha-response"`
}

// Contact forwards a message to the operator.
// POST /contact
func (s *Server) Contact(c *fiber.Ctx) error {
	var req ContactRequest
	if !s.parseBody(c, &req) {
		return nil
	}

	if !s.captcha.Verify(c.UserContext(), req.Recaptcha, c.IP()) {
		return s.respondError(c, models.NewValidationError("CAPTCHA verification failed"))
	}

	result, err := s.contactService.Submit(c.UserContext(), service.ContactInput{
		Email:   req.Email,
		Name:    req.Name,
		Message: req.Message,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	if result == service.ContactEmailProblem {
		return c.JSON(fiber.Map{
			"status":  result,
			"message": "There was a problem sending your message. Please try again later.",
		})
	}
	return c.JSON(fiber.Map{
		"status":  result,
		"message": "Thanks for your message. We'll get back to you soon!",
	})
}
