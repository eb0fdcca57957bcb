package server

import (
	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Post string `json:"post" form:"post"`
}

// CreatePost publishes a post from the home form and redirects back to the
// home feed so a reload does not resubmit it.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := s.postService.CreatePost(ctx, requesterID(c), req.Post); err != nil {
		return respondError(c, err)
	}
	return redirect(c, "/index", "Your post is now live!", categorySuccess)
}
