package server

import (
	"errors"
	"fmt"

	"microblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Follow makes the requester follow :username.
func (s *Server) Follow(c *fiber.Ctx) error {
	username := c.Params("username")

	ctx, cancel := requestContext(c)
	defer cancel()

	target, err := s.followService.Follow(ctx, requesterID(c), username)
	if err != nil {
		return followRedirect(c, username, err)
	}
	return redirect(c, userPath(target.Username), fmt.Sprintf("You are following %s!", target.Username), categorySuccess)
}

// Unfollow makes the requester stop following :username.
func (s *Server) Unfollow(c *fiber.Ctx) error {
	username := c.Params("username")

	ctx, cancel := requestContext(c)
	defer cancel()

	target, err := s.followService.Unfollow(ctx, requesterID(c), username)
	if err != nil {
		return followRedirect(c, username, err)
	}
	return redirect(c, userPath(target.Username), fmt.Sprintf("You are not following %s.", target.Username), categoryWarning)
}

// followRedirect turns the expected follow failures into redirects with a
// warning; anything else is a plain error response.
func followRedirect(c *fiber.Ctx, username string, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeTargetNotFound:
			return redirect(c, "/index", appErr.Message, categoryWarning)
		case models.CodeSelfFollowRejected:
			return redirect(c, userPath(username), appErr.Message, categoryWarning)
		}
	}
	return respondError(c, err)
}
