package search

import (
	"context"

	"microblog/internal/observability"
)

// TermMatcher finds posts containing every term.
type TermMatcher interface {
	MatchTerms(ctx context.Context, terms []string, limit, offset int) ([]uint, int64, error)
}

// DBIndex answers queries straight from the posts table. It needs no upkeep,
// so Add and Remove are no-ops.
type DBIndex struct {
	posts TermMatcher
}

// NewDBIndex returns an index backed by posts.
func NewDBIndex(posts TermMatcher) *DBIndex {
	return &DBIndex{posts: posts}
}

func (*DBIndex) Name() string { return "db" }

func (*DBIndex) Add(context.Context, uint, string) error { return nil }

func (*DBIndex) Remove(context.Context, uint) error { return nil }

func (x *DBIndex) Query(ctx context.Context, text string, page, perPage int) ([]uint, int64, error) {
	terms := Tokenize(text)
	if len(terms) == 0 {
		return []uint{}, 0, nil
	}

	ids, total, err := x.posts.MatchTerms(ctx, terms, perPage, offsetFor(page, perPage))
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.SearchQueries.WithLabelValues(x.Name(), outcome).Inc()
	return ids, total, err
}
