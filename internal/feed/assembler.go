package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"microblog/internal/cache"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/observability"
	"microblog/internal/search"

	"go.opentelemetry.io/otel/attribute"
)

// Kind selects the post source of a feed.
type Kind string

const (
	KindHome    Kind = "home"
	KindUser    Kind = "user"
	KindExplore Kind = "explore"
	KindSearch  Kind = "search"
)

// ErrSearchRedirect is returned for a search with no query text; callers
// send the client to the explore feed instead.
var ErrSearchRedirect = errors.New("feed: empty search query")

// Request describes one feed page. Username is used by KindUser and Query by
// KindSearch.
type Request struct {
	Kind        Kind
	RequesterID uint
	Username    string
	Query       string
	Page        int
}

// UserLookup resolves usernames.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// PostLister reads windows of posts in feed order.
type PostLister interface {
	ListFollowed(ctx context.Context, userID uint, limit, offset int) ([]models.Post, int64, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]models.Post, int64, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Post, error)
}

// Assembler builds feed pages from the post store and the search index.
type Assembler struct {
	users   UserLookup
	posts   PostLister
	index   search.Index
	perPage int
}

// NewAssembler returns an Assembler serving perPage posts per page.
func NewAssembler(users UserLookup, posts PostLister, index search.Index, perPage int) *Assembler {
	return &Assembler{users: users, posts: posts, index: index, perPage: perPage}
}

// PerPage is the configured page size.
func (a *Assembler) PerPage() int { return a.perPage }

// Assemble returns the requested page. It fails with a NOT_FOUND AppError for
// an unknown username, a VALIDATION_ERROR for a bad page number, and
// ErrSearchRedirect for an empty search.
func (a *Assembler) Assemble(ctx context.Context, req Request) (page *Page, err error) {
	ctx, span := observability.StartSpan(ctx, "feed.Assemble",
		attribute.String("feed.kind", string(req.Kind)),
		attribute.Int("feed.page", req.Page),
	)
	defer func() {
		if errors.Is(err, ErrSearchRedirect) {
			observability.EndSpan(span, nil)
			return
		}
		observability.EndSpan(span, err)
		if err == nil {
			observability.FeedPagesServed.WithLabelValues(string(req.Kind)).Inc()
		}
	}()

	if err := ValidatePage(req.Page); err != nil {
		return nil, err
	}
	limit, offset := Window(req.Page, a.perPage)

	switch req.Kind {
	case KindHome:
		items, total, err := a.posts.ListFollowed(ctx, req.RequesterID, limit, offset)
		if err != nil {
			return nil, err
		}
		return Paginate(items, total, req.Page, a.perPage, pageLink("/index", nil)), nil

	case KindUser:
		user, err := a.users.GetByUsername(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		items, total, err := a.posts.ListByAuthor(ctx, user.ID, limit, offset)
		if err != nil {
			return nil, err
		}
		return Paginate(items, total, req.Page, a.perPage, pageLink("/user/"+url.PathEscape(user.Username), nil)), nil

	case KindExplore:
		return a.explore(ctx, req.Page, limit, offset)

	case KindSearch:
		text := strings.TrimSpace(req.Query)
		if text == "" {
			return nil, ErrSearchRedirect
		}
		ids, total, err := a.index.Query(ctx, text, req.Page, a.perPage)
		if err != nil {
			return nil, models.NewInternalError(fmt.Errorf("search %s: %w", a.index.Name(), err))
		}
		items, err := a.posts.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		return Paginate(items, total, req.Page, a.perPage, pageLink("/search", url.Values{"q": {text}})), nil

	default:
		return nil, models.NewValidationError(fmt.Sprintf("unknown feed kind %q", req.Kind))
	}
}

// explore serves the all-posts feed through the versioned page cache.
func (a *Assembler) explore(ctx context.Context, page, limit, offset int) (*Page, error) {
	fetch := func(dest *Page) error {
		items, total, err := a.posts.ListAll(ctx, limit, offset)
		if err != nil {
			return err
		}
		*dest = *Paginate(items, total, page, a.perPage, pageLink("/explore", nil))
		return nil
	}

	var p Page
	version, err := cache.ExploreVersion(ctx)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "explore cache unavailable", slog.String("error", err.Error()))
		if err := fetch(&p); err != nil {
			return nil, err
		}
		return &p, nil
	}

	if err := cache.Aside(ctx, cache.ExplorePageKey(version, page, a.perPage), &p, cache.ExplorePageTTL, func() error {
		return fetch(&p)
	}); err != nil {
		return nil, err
	}
	return &p, nil
}

// pageLink renders path?page=N, carrying extra query parameters.
func pageLink(path string, extra url.Values) func(int) string {
	return func(n int) string {
		q := url.Values{}
		for k, v := range extra {
			q[k] = v
		}
		q.Set("page", fmt.Sprint(n))
		return path + "?" + q.Encode()
	}
}
