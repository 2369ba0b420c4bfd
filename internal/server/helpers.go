package server

import (
	"log/slog"

	"scaffold/internal/middleware"
	"scaffold/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID reads a post id route parameter. A value that cannot name a post
// is answered like any absent post: 404. On failure the response is already
// written and ok is false.
func (s *Server) parseID(c *fiber.Ctx, param string) (id uint, ok bool) {
	n, err := c.ParamsInt(param)
	if err != nil || n <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Post", c.Params(param)))
		return 0, false
	}
	return uint(n), true
}

// parseBody decodes a JSON or form body into out. On failure it has already
// written a 400 response and ok is false.
func (s *Server) parseBody(c *fiber.Ctx, out any) (ok bool) {
	if err := c.BodyParser(out); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
		return false
	}
	return true
}

// respondError writes err with the status its code maps to.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Request failed", slog.String("error", err.Error()))
	}
	return models.RespondWithError(c, status, err)
}
