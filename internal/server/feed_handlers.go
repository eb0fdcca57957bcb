package server

import (
	"errors"

	"microblog/internal/feed"

	"github.com/gofiber/fiber/v2"
)

// Home serves the requester's followed feed (own posts included).
func (s *Server) Home(c *fiber.Ctx) error {
	return s.serveFeed(c, feed.Request{Kind: feed.KindHome})
}

// Explore serves every post, newest first.
func (s *Server) Explore(c *fiber.Ctx) error {
	return s.serveFeed(c, feed.Request{Kind: feed.KindExplore})
}

// Search serves posts matching q. An empty q redirects to the explore feed.
func (s *Server) Search(c *fiber.Ctx) error {
	return s.serveFeed(c, feed.Request{Kind: feed.KindSearch, Query: c.Query("q")})
}

func (s *Server) serveFeed(c *fiber.Ctx, req feed.Request) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	req.RequesterID = requesterID(c)
	req.Page = parsePage(c)

	page, err := s.feeds.Assemble(ctx, req)
	if errors.Is(err, feed.ErrSearchRedirect) {
		return redirect(c, "/explore", "Enter something to search for.", categoryWarning)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}
