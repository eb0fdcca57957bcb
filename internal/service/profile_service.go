package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"microblog/internal/cache"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/repository"
)

const (
	maxUsernameLen = 64
	maxNameLen     = 64
	maxAboutMeLen  = 140
)

// ProfileForm is the editable part of a profile.
type ProfileForm struct {
	Username  string `json:"username" form:"username"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
	AboutMe   string `json:"about_me" form:"about_me"`
}

// ProfileView is a user as seen by the requester.
type ProfileView struct {
	User        *models.User `json:"user"`
	IsFollowing bool         `json:"is_following"`
}

type ProfileService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewProfileService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo, followRepo: followRepo}
}

// EditForm returns the requester's current profile values.
func (s *ProfileService) EditForm(ctx context.Context, requesterID uint) (*ProfileForm, error) {
	user, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return &ProfileForm{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		AboutMe:   user.AboutMe,
	}, nil
}

// ApplyEdit validates form and writes it. Field problems come back as one
// VALIDATION_ERROR listing every offending field; a username held by someone
// else is DUPLICATE_USERNAME.
func (s *ProfileService) ApplyEdit(ctx context.Context, requesterID uint, form ProfileForm) (*models.User, error) {
	form.Username = strings.TrimSpace(form.Username)
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)

	if err := validateProfile(form); err != nil {
		return nil, err
	}

	current, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if form.Username != current.Username {
		taken, err := s.userRepo.UsernameTaken(ctx, form.Username, requesterID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewDuplicateUsernameError()
		}
	}

	user, err := s.userRepo.UpdateProfile(ctx, requesterID, repository.ProfileFields{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		AboutMe:   form.AboutMe,
	})
	if err != nil {
		return nil, err
	}

	// Cached explore pages embed author names.
	if err := cache.BumpExploreVersion(ctx); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to bump explore cache version", slog.String("error", err.Error()))
	}
	return user, nil
}

// notPathSafe reports runes that cannot survive a round trip through a
// single /user/:username path segment.
func notPathSafe(r rune) bool {
	return r == '/' || unicode.IsControl(r)
}

func validateProfile(form ProfileForm) error {
	var verr *models.AppError
	fail := func(field, msg string) {
		if verr == nil {
			verr = models.NewValidationError("Please correct the highlighted fields.")
		}
		verr.WithField(field, msg)
	}

	switch n := utf8.RuneCountInString(form.Username); {
	case n == 0:
		fail("username", "This field is required.")
	case n > maxUsernameLen:
		fail("username", "Username must be at most 64 characters long.")
	case strings.ContainsFunc(form.Username, notPathSafe):
		fail("username", "Username cannot contain '/' or control characters.")
	}
	for field, v := range map[string]string{"first_name": form.FirstName, "last_name": form.LastName} {
		switch n := utf8.RuneCountInString(v); {
		case n == 0:
			fail(field, "This field is required.")
		case n > maxNameLen:
			fail(field, "Field must be at most 64 characters long.")
		}
	}
	if utf8.RuneCountInString(form.AboutMe) > maxAboutMeLen {
		fail("about_me", "Field cannot be longer than 140 characters.")
	}

	if verr != nil {
		return verr
	}
	return nil
}

// Profile loads username with follower counts and whether requesterID follows them.
func (s *ProfileService) Profile(ctx context.Context, requesterID uint, username string) (*ProfileView, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	followers, following, err := s.followRepo.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.FollowersCount = followers
	user.FollowingCount = following

	view := &ProfileView{User: user}
	if requesterID != user.ID {
		view.IsFollowing, err = s.followRepo.IsFollowing(ctx, requesterID, user.ID)
		if err != nil {
			return nil, err
		}
	}
	return view, nil
}
