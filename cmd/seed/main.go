// Command main runs the database seeder for the microblog.
package main

import (
	"context"
	"log"
	"time"

	"microblog/internal/bootstrap"
	"microblog/internal/config"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/seed"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

func main() {
	numUsers := flag.IntP("users", "u", 50, "Number of users to create")
	numPosts := flag.IntP("posts", "p", 500, "Number of posts to create")
	follows := flag.Int("follows", 10, "Follow edges created per user")
	maxDays := flag.Int("max-days", 30, "Spread post timestamps over this many past days")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	reindexOnly := flag.Bool("reindex", false, "Only rebuild the search index from stored posts")
	tokenFor := flag.String("token-for", "", "Print a bearer token for this username after seeding")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the printed token")
	revoke := flag.String("revoke", "", "Revoke this bearer token and exit")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	ctx := context.Background()

	if *revoke != "" {
		jti, err := middleware.RevokeToken(ctx, rt.Redis, cfg.JWTSecret, *revoke)
		if err != nil {
			log.Fatalf("❌ Revoke failed: %v", err)
		}
		log.Printf("🚫 Revoked token %s", jti)
		return
	}

	if *reindexOnly {
		n, err := seed.Reindex(ctx, rt.DB, rt.Index)
		if err != nil {
			log.Fatalf("❌ Reindex failed: %v", err)
		}
		log.Printf("✨ Reindexed %d posts into the %s index.", n, rt.Index.Name())
		return
	}

	log.Printf("Target: %d users, %d posts, %d follows/user, clean=%v\n", *numUsers, *numPosts, *follows, *shouldClean)

	res, err := seed.NewSeeder(rt.DB, rt.Index, seed.Options{
		NumUsers:       *numUsers,
		NumPosts:       *numPosts,
		FollowsPerUser: *follows,
		MaxDays:        *maxDays,
		ShouldClean:    *shouldClean,
		DryRun:         *dryRun,
		RandSeed:       *randSeed,
	}).Run(ctx)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	username := *tokenFor
	if username == "" && len(res.Users) > 0 {
		username = res.Users[0].Username
	}
	if username != "" && !*dryRun {
		var user models.User
		if err := rt.DB.Where("username = ?", username).First(&user).Error; err != nil {
			log.Fatalf("❌ Unknown user %q: %v", username, err)
		}
		token, err := middleware.IssueToken(cfg.JWTSecret, user.ID, *tokenTTL)
		if err != nil {
			log.Fatalf("❌ Token issue failed: %v", err)
		}
		log.Printf("🔑 Bearer token for %s: %s", user.Username, token)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
}
