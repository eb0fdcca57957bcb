// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"microblog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB. A zero
// opts.RandSeed picks a time-based seed.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}
}

// BuildUser constructs an unsaved user. n keeps usernames unique within a run.
func (f *Factory) BuildUser(n int) *models.User {
	username := clip(strings.ToLower(f.faker.Username()), 56) + fmt.Sprintf("%d", n)
	email := strings.ToLower(username) + "@example.com"
	return &models.User{
		Username:  username,
		Email:     &email,
		FirstName: clip(f.faker.FirstName(), 64),
		LastName:  clip(f.faker.LastName(), 64),
		AboutMe:   clip(f.faker.HackerPhrase(), models.MaxPostLength),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(n int, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(n)
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs an unsaved post by author stamped at.
func (f *Factory) BuildPost(author *models.User, at time.Time) *models.Post {
	var body string
	if f.faker.Bool() {
		body = f.faker.HackerPhrase()
	} else {
		body = f.faker.Sentence(f.faker.Number(3, 18))
	}
	return &models.Post{
		Body:      clip(body, models.MaxPostLength),
		UserID:    author.ID,
		Timestamp: at.UTC(),
	}
}

// CreatePostsBatch persists posts in one insert, in slice order, so ids
// follow the order of the slice.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateFollow persists follower -> followed, ignoring an existing edge.
func (f *Factory) CreateFollow(follower, followed *models.User) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}).Error
}

// clip truncates s to at most n characters without splitting a rune.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
