package server

import (
	"net/url"

	"scaffold/internal/models"

	"github.com/gofiber/fiber/v2"
)

// uploadFail answers in the rich-text editor's upload error format.
func uploadFail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"uploaded": 0,
		"error":    fiber.Map{"message": message},
	})
}

// Upload stores an editor image from the "upload" form field.
// POST /upload
func (s *Server) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("upload")
	if err != nil {
		return uploadFail(c, fiber.StatusBadRequest, "No file uploaded.")
	}

	f, err := fh.Open()
	if err != nil {
		return uploadFail(c, fiber.StatusBadRequest, "Could not read upload.")
	}
	defer f.Close()

	name, err := s.uploadService.Upload(c.UserContext(), identityOf(c), fh.Filename, f)
	if err != nil {
		var message string
		switch models.ErrorCode(err) {
		case models.CodeValidation:
			message = err.Error()
		case models.CodeInternal:
			message = "Upload failed."
		default:
			return s.respondError(c, err)
		}
		return uploadFail(c, models.StatusFor(err), message)
	}

	return c.JSON(fiber.Map{
		"uploaded": 1,
		"fileName": name,
		"url":      "/files/" + url.PathEscape(name),
	})
}

// ServeFile serves a previously uploaded asset.
// GET /files/:filename
func (s *Server) ServeFile(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("filename"))
	if err != nil {
		return s.respondError(c, models.NewNotFoundError("File", c.Params("filename")))
	}
	path, err := s.uploadService.Locate(name)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.SendFile(path)
}
