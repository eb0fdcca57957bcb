package repository

import (
	"context"
	"errors"
	"time"

	"microblog/internal/cache"
	"microblog/internal/models"
	"microblog/internal/observability"

	"gorm.io/gorm"
)

// ProfileFields are the user-editable profile columns, written together.
type ProfileFields struct {
	Username  string
	FirstName string
	LastName  string
	AboutMe   string
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id uint, fields ProfileFields) (*models.User, error)
	TouchLastSeen(ctx context.Context, id uint, at time.Time) error
}

type userRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db, log: observability.NewRepoLogger("users")}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			return notFoundOr(err, models.NewNotFoundError("User", id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername resolves an exact username. Unknown names yield a NOT_FOUND AppError.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFoundOr(err, models.NewNotFoundError("User", username))
	}
	return &user, nil
}

func (r *userRepository) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return usernameTaken(r.db.WithContext(ctx), username, exceptID)
}

func usernameTaken(db *gorm.DB, username string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateUsernameError()
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, "user_id", user.ID)
	return nil
}

// UpdateProfile writes all four profile fields in one transaction. Uniqueness is
// re-checked inside the transaction; the unique index is the final arbiter.
func (r *userRepository) UpdateProfile(ctx context.Context, id uint, fields ProfileFields) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return notFoundOr(err, models.NewNotFoundError("User", id))
		}

		if fields.Username != user.Username {
			taken, err := usernameTaken(tx, fields.Username, id)
			if err != nil {
				return err
			}
			if taken {
				return models.NewDuplicateUsernameError()
			}
		}

		err := tx.Model(&user).Updates(map[string]interface{}{
			"username":   fields.Username,
			"first_name": fields.FirstName,
			"last_name":  fields.LastName,
			"about_me":   fields.AboutMe,
		}).Error
		if err != nil {
			if isUniqueConstraintError(err) {
				return models.NewDuplicateUsernameError()
			}
			return models.NewInternalError(err)
		}
		user.Username = fields.Username
		user.FirstName = fields.FirstName
		user.LastName = fields.LastName
		user.AboutMe = fields.AboutMe
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
		if models.HasCode(err, models.CodeInternal) {
			r.log.LogError(ctx, err, "update_profile")
		}
		return nil, err
	}

	cache.InvalidateUser(ctx, id)
	r.log.LogUpdate(ctx, "user_id", id)
	return &user, nil
}

// TouchLastSeen sets last_seen with a single UPDATE and leaves updated_at alone.
// A user that no longer exists is reported as NotFound.
func (r *userRepository) TouchLastSeen(ctx context.Context, id uint, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_seen", at)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}
