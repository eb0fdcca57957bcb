package server

import (
	"net/url"

	"microblog/internal/feed"
	"microblog/internal/models"
	"microblog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// profileResponse is a user profile with one page of their posts.
type profileResponse struct {
	User        *models.User `json:"user"`
	IsFollowing bool         `json:"is_following"`
	Page        *feed.Page   `json:"page"`
}

// UserProfile shows username's profile and posts.
func (s *Server) UserProfile(c *fiber.Ctx) error {
	username := c.Params("username")

	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := s.profileService.Profile(ctx, requesterID(c), username)
	if err != nil {
		return respondError(c, err)
	}

	page, err := s.feeds.Assemble(ctx, feed.Request{
		Kind:        feed.KindUser,
		RequesterID: requesterID(c),
		Username:    view.User.Username,
		Page:        parsePage(c),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(profileResponse{User: view.User, IsFollowing: view.IsFollowing, Page: page})
}

// EditProfileForm returns the requester's current profile values.
func (s *Server) EditProfileForm(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	form, err := s.profileService.EditForm(ctx, requesterID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(form)
}

// EditProfile applies a profile edit and redirects to the updated profile.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	var form service.ProfileForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := s.profileService.ApplyEdit(ctx, requesterID(c), form)
	if err != nil {
		return respondError(c, err)
	}
	return redirect(c, userPath(user.Username), "Your changes have been saved.", categorySuccess)
}

func userPath(username string) string {
	return "/user/" + url.PathEscape(username)
}
