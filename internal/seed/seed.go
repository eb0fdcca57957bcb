package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"time"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/search"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumPosts       int
	FollowsPerUser int
	MaxDays        int
	ShouldClean    bool
	DryRun         bool
	RandSeed       int64
}

// Result summarises one seeding run.
type Result struct {
	Users   []*models.User
	Posts   int
	Follows int
	Indexed int
}

// Seeder populates the database and, optionally, the search index.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
	index   search.Index
	rng     *rand.Rand
}

// NewSeeder returns a Seeder. index may be nil to skip indexing.
func NewSeeder(db *gorm.DB, index search.Index, opts Options) *Seeder {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	f := NewFactory(db, opts)
	return &Seeder{
		db:      db,
		opts:    opts,
		factory: f,
		index:   index,
		//nolint:gosec // Weak random number generator is fine for seeding
		rng: rand.New(rand.NewSource(f.faker.Int64())),
	}
}

// Run seeds users, posts and follow edges.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	log.Printf("🌱 Seeding %d users, %d posts, %d follows per user...", s.opts.NumUsers, s.opts.NumPosts, s.opts.FollowsPerUser)

	if s.opts.ShouldClean && !s.opts.DryRun {
		if err := s.ClearAll(); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
		if s.index != nil {
			if err := search.Clear(ctx, s.index); err != nil {
				return nil, fmt.Errorf("failed to clear search index: %w", err)
			}
		}
	}

	res := &Result{}
	for i := 0; i < s.opts.NumUsers; i++ {
		u, err := s.factory.CreateUser(i)
		if err != nil {
			return nil, fmt.Errorf("failed to create user %d: %w", i, err)
		}
		res.Users = append(res.Users, u)
	}
	log.Printf("✓ %d users created", len(res.Users))
	if len(res.Users) == 0 {
		return res, nil
	}

	posts := s.buildPosts(res.Users)
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	res.Posts = len(posts)
	log.Printf("✓ %d posts created", res.Posts)

	follows, err := s.seedFollows(res.Users)
	if err != nil {
		return nil, fmt.Errorf("failed to create follows: %w", err)
	}
	res.Follows = follows
	log.Printf("✓ %d follow edges created", res.Follows)

	if s.index != nil && !s.opts.DryRun {
		for _, p := range posts {
			if err := s.index.Add(ctx, p.ID, p.Body); err != nil {
				return nil, fmt.Errorf("failed to index post %d: %w", p.ID, err)
			}
			res.Indexed++
		}
		log.Printf("✓ %d posts indexed (%s)", res.Indexed, s.index.Name())
	}

	log.Println("🎉 Database seeding completed successfully!")
	return res, nil
}

// buildPosts spreads posts over the last MaxDays and sorts them oldest first.
// Inserting in that order keeps ids ascending with time, which the search
// index relies on for its newest-first ranking.
func (s *Seeder) buildPosts(users []*models.User) []*models.Post {
	now := time.Now().UTC()
	window := time.Duration(s.opts.MaxDays) * 24 * time.Hour

	posts := make([]*models.Post, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[s.rng.Intn(len(users))]
		at := now.Add(-time.Duration(s.rng.Int63n(int64(window))))
		posts = append(posts, s.factory.BuildPost(author, at))
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.Before(posts[j].Timestamp)
	})
	return posts
}

// seedFollows gives every user up to FollowsPerUser distinct followees, never
// themselves.
func (s *Seeder) seedFollows(users []*models.User) (int, error) {
	per := min(s.opts.FollowsPerUser, len(users)-1)

	created := 0
	for _, follower := range users {
		picked := 0
		for _, idx := range s.rng.Perm(len(users)) {
			if picked >= per {
				break
			}
			followed := users[idx]
			if followed.ID == follower.ID {
				continue
			}
			if err := s.factory.CreateFollow(follower, followed); err != nil {
				return created, err
			}
			picked++
			created++
		}
	}
	return created, nil
}

// ClearAll removes every follow, post and user.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Follow{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Reindex rebuilds the search index from the posts table.
func Reindex(ctx context.Context, db *gorm.DB, index search.Index) (int, error) {
	return search.Reindex(ctx, index, repository.NewPostRepository(db))
}
