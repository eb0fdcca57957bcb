package search

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"microblog/internal/cache"
	"microblog/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	docKeyPrefix = "search:doc:"
	scratchTTL   = 30 * time.Second
)

// RedisIndex is an inverted index: one sorted set per term whose members are
// post ids scored by id, so higher scores are newer posts.
type RedisIndex struct {
	rdb *redis.Client
}

// NewRedisIndex returns an index stored in rdb.
func NewRedisIndex(rdb *redis.Client) *RedisIndex {
	return &RedisIndex{rdb: rdb}
}

func (*RedisIndex) Name() string { return "redis" }

func termKey(term string) string { return cache.SearchTermPrefix + term }

func docKey(id uint) string { return docKeyPrefix + strconv.FormatUint(uint64(id), 10) }

func (x *RedisIndex) Add(ctx context.Context, id uint, body string) (err error) {
	ctx, span := observability.TraceRedisOperation(ctx, "search.add")
	defer func() { observability.EndSpan(span, err) }()

	if err := x.Remove(ctx, id); err != nil {
		return err
	}

	terms := Tokenize(body)
	if len(terms) == 0 {
		return nil
	}

	member := strconv.FormatUint(uint64(id), 10)
	_, err = x.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, term := range terms {
			pipe.ZAdd(ctx, termKey(term), redis.Z{Score: float64(id), Member: member})
		}
		args := make([]interface{}, len(terms))
		for i, t := range terms {
			args[i] = t
		}
		pipe.SAdd(ctx, docKey(id), args...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("index post %d: %w", id, err)
	}
	return nil
}

func (x *RedisIndex) Remove(ctx context.Context, id uint) error {
	terms, err := x.rdb.SMembers(ctx, docKey(id)).Result()
	if err != nil {
		return fmt.Errorf("load terms for post %d: %w", id, err)
	}
	if len(terms) == 0 {
		return nil
	}

	member := strconv.FormatUint(uint64(id), 10)
	_, err = x.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, term := range terms {
			pipe.ZRem(ctx, termKey(term), member)
		}
		pipe.Del(ctx, docKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("unindex post %d: %w", id, err)
	}
	return nil
}

func (x *RedisIndex) Query(ctx context.Context, text string, page, perPage int) (ids []uint, total int64, err error) {
	ctx, span := observability.TraceRedisOperation(ctx, "search.query")
	defer func() {
		observability.EndSpan(span, err)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		observability.SearchQueries.WithLabelValues(x.Name(), outcome).Inc()
	}()

	terms := Tokenize(text)
	if len(terms) == 0 {
		return []uint{}, 0, nil
	}

	key := termKey(terms[0])
	if len(terms) > 1 {
		keys := make([]string, len(terms))
		for i, t := range terms {
			keys[i] = termKey(t)
		}
		key = cache.SearchScratchSpace + uuid.NewString()
		defer x.rdb.Del(context.WithoutCancel(ctx), key)

		if err := x.rdb.ZInterStore(ctx, key, &redis.ZStore{Keys: keys, Aggregate: "MAX"}).Err(); err != nil {
			return nil, 0, fmt.Errorf("intersect terms: %w", err)
		}
		x.rdb.Expire(ctx, key, scratchTTL)
	}

	total, err = x.rdb.ZCard(ctx, key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("count matches: %w", err)
	}

	start := int64(offsetFor(page, perPage))
	if total == 0 || start >= total {
		return []uint{}, total, nil
	}

	members, err := x.rdb.ZRevRange(ctx, key, start, start+int64(perPage)-1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("read matches: %w", err)
	}

	ids = make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, total, nil
}

// Reset deletes every search key.
func (x *RedisIndex) Reset(ctx context.Context) error {
	for _, pattern := range []string{cache.SearchTermPrefix + "*", docKeyPrefix + "*"} {
		iter := x.rdb.Scan(ctx, 0, pattern, 500).Iterator()
		for iter.Next(ctx) {
			if err := x.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}
