package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix      = "user:%d"
	ExplorePagePrefix  = "feed:explore:v%d:p%d:n%d"
	ExploreVersionKey  = "feed:explore:version"
	SearchTermPrefix   = "search:term:"
	SearchScratchSpace = "search:tmp:"
)

const (
	UserTTL        = 5 * time.Minute
	ExplorePageTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// ExplorePageKey is the cache key for one explore page under a given version.
func ExplorePageKey(version int64, page, perPage int) string {
	return fmt.Sprintf(ExplorePagePrefix, version, page, perPage)
}

// ExploreVersion returns the current explore feed version, 0 when unset or
// when Redis is unavailable.
func ExploreVersion(ctx context.Context) (int64, error) {
	if client == nil {
		return 0, nil
	}
	v, err := client.Get(ctx, ExploreVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// BumpExploreVersion orphans every cached explore page; they expire on their own.
func BumpExploreVersion(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Incr(ctx, ExploreVersionKey).Err()
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// keyFamily is the first key segment, used as a low-cardinality metric label.
func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
