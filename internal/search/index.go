// Package search maintains the post text index used by the search feed.
package search

import (
	"context"
	"strings"
	"unicode"

	"microblog/internal/models"
)

// Index is a text index over post bodies.
type Index interface {
	// Add indexes body under post id. Re-adding an id replaces its terms.
	Add(ctx context.Context, id uint, body string) error
	Remove(ctx context.Context, id uint) error
	// Query returns the ids matching every term of text for a 1-based page,
	// newest first, and the total number of matches.
	Query(ctx context.Context, text string, page, perPage int) ([]uint, int64, error)
	Name() string
}

// Tokenize splits text into lowercase letter/digit terms, deduplicated and in
// order of first appearance.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

// PostSource streams every stored post.
type PostSource interface {
	ForEachBatch(ctx context.Context, size int, fn func([]models.Post) error) error
}

type resetter interface {
	Reset(ctx context.Context) error
}

// Clear drops every entry from idx. Indexes that read the posts table
// directly hold nothing of their own and are left alone.
func Clear(ctx context.Context, idx Index) error {
	if r, ok := idx.(resetter); ok {
		return r.Reset(ctx)
	}
	return nil
}

// Reindex rebuilds idx from src and returns the number of posts indexed.
func Reindex(ctx context.Context, idx Index, src PostSource) (int, error) {
	if err := Clear(ctx, idx); err != nil {
		return 0, err
	}

	n := 0
	err := src.ForEachBatch(ctx, 500, func(posts []models.Post) error {
		for _, p := range posts {
			if err := idx.Add(ctx, p.ID, p.Body); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

func offsetFor(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
