package repository

import (
	"context"
	"strings"

	"microblog/internal/models"
	"microblog/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations. Listing
// methods return one window of posts in feed order plus the total row count of
// the unwindowed selection.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByIDs(ctx context.Context, ids []uint) ([]models.Post, error)
	ListFollowed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Post, int64, error)
	MatchTerms(ctx context.Context, terms []string, limit, offset int) ([]uint, int64, error)
	ForEachBatch(ctx context.Context, size int, fn func([]models.Post) error) error
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, "post_id", post.ID, "user_id", post.UserID)
	return nil
}

// GetByIDs loads posts with their authors and returns them in the order of ids.
// Ids with no matching row are skipped.
func (r *postRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}

	var rows []models.Post
	if err := r.db.WithContext(ctx).Preload("Author").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	byID := make(map[uint]models.Post, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	posts := make([]models.Post, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// ListFollowed returns the home feed selection: posts by userID or by anyone userID follows.
func (r *postRepository) ListFollowed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, int64, error) {
	return r.window(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id = ? OR posts.user_id IN (?)", userID,
			r.db.Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID))
	}, limit, offset)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, int64, error) {
	return r.window(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.user_id = ?", authorID)
	}, limit, offset)
}

func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Post, int64, error) {
	return r.window(ctx, func(db *gorm.DB) *gorm.DB { return db }, limit, offset)
}

// MatchTerms returns ids of posts whose body contains every term (case-insensitive),
// newest first, plus the number of matches.
func (r *postRepository) MatchTerms(ctx context.Context, terms []string, limit, offset int) ([]uint, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		for _, term := range terms {
			db = db.Where(`LOWER(posts.body) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(term))+"%")
		}
		return db
	}

	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&models.Post{})).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	ids := []uint{}
	err := scope(r.db.WithContext(ctx).Model(&models.Post{})).
		Order(feedOrder).
		Limit(limit).
		Offset(offset).
		Pluck("posts.id", &ids).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return ids, total, nil
}

// ForEachBatch walks every post in id order, size rows at a time.
func (r *postRepository) ForEachBatch(ctx context.Context, size int, fn func([]models.Post) error) error {
	var batch []models.Post
	res := r.db.WithContext(ctx).Order("id").FindInBatches(&batch, size, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	return nil
}

// window counts the scoped selection and loads one page of it in feed order.
func (r *postRepository) window(ctx context.Context, scope func(*gorm.DB) *gorm.DB, limit, offset int) ([]models.Post, int64, error) {
	var total int64
	if err := scope(r.db.WithContext(ctx).Model(&models.Post{})).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	posts := []models.Post{}
	err := scope(r.db.WithContext(ctx)).
		Preload("Author").
		Order(feedOrder).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
