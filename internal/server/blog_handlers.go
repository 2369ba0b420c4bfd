package server

import (
	"scaffold/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PostRequest is the create/update post form.
type PostRequest struct {
	Title   string `json:"title" form:"title"`
	Content string `json:"content" form:"content"`
}

func (r PostRequest) input() service.PostInput {
	return service.PostInput{Title: r.Title, Content: r.Content}
}

// ListPublishedPosts lists live posts, newest first.
// GET /blog
func (s *Server) ListPublishedPosts(c *fiber.Ctx) error {
	posts, err := s.blogService.ListPublished(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// ListAllPosts lists drafts and live posts for admins.
// GET /blog/admin
func (s *Server) ListAllPosts(c *fiber.Ctx) error {
	posts, err := s.blogService.ListAll(c.UserContext(), identityOf(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// ViewPost returns a post visible to the caller.
// GET /:id
func (s *Server) ViewPost(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	post, err := s.blogService.View(c.UserContext(), identityOf(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost stores a new draft.
// POST /create
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req PostRequest
	if !s.parseBody(c, &req) {
		return nil
	}
	post, err := s.blogService.Create(c.UserContext(), identityOf(c), req.input())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost replaces a post's title and content.
// POST /:id/update
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	var req PostRequest
	if !s.parseBody(c, &req) {
		return nil
	}
	post, err := s.blogService.Update(c.UserContext(), identityOf(c), id, req.input())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost removes a post.
// POST /:id/delete
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	if err := s.blogService.Delete(c.UserContext(), identityOf(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted", "redirect": "/blog/admin"})
}

// TogglePublish flips a post between draft and live.
// POST /:id/publish
func (s *Server) TogglePublish(c *fiber.Ctx) error {
	id, ok := s.parseID(c, "id")
	if !ok {
		return nil
	}
	post, err := s.blogService.TogglePublish(c.UserContext(), identityOf(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}
