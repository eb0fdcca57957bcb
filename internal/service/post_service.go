// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"microblog/internal/cache"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/search"
)

type PostService struct {
	postRepo repository.PostRepository
	index    search.Index
}

func NewPostService(postRepo repository.PostRepository, index search.Index) *PostService {
	return &PostService{postRepo: postRepo, index: index}
}

// CreatePost validates and stores a post, then updates the search index and
// retires cached explore pages. Those follow-ups are best effort; the stored
// post is authoritative.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, body string) (*models.Post, error) {
	body = strings.TrimSpace(body)
	switch n := utf8.RuneCountInString(body); {
	case n == 0:
		return nil, models.NewFieldError("post", "This field is required.")
	case n > models.MaxPostLength:
		return nil, models.NewFieldError("post", "Field must be between 1 and 140 characters long.")
	}

	post := &models.Post{Body: body, UserID: authorID}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.index != nil {
		if err := s.index.Add(ctx, post.ID, post.Body); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to index post",
				slog.Uint64("post_id", uint64(post.ID)),
				slog.String("index", s.index.Name()),
				slog.String("error", err.Error()),
			)
		}
	}
	if err := cache.BumpExploreVersion(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to bump explore cache version", slog.String("error", err.Error()))
	}

	return post, nil
}
