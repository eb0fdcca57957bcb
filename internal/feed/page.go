// Package feed assembles paginated post feeds: home, user, explore and search.
package feed

import (
	"fmt"

	"microblog/internal/models"
)

// MaxPage bounds page numbers so window offsets cannot overflow.
const MaxPage = 1_000_000

// Page is one window of a feed plus navigation. NextPage/PrevPage and their
// URLs are present only when the matching Has flag is true.
type Page struct {
	Items    []models.Post `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PerPage  int           `json:"per_page"`
	HasNext  bool          `json:"has_next"`
	HasPrev  bool          `json:"has_prev"`
	NextPage *int          `json:"next_page,omitempty"`
	PrevPage *int          `json:"prev_page,omitempty"`
	NextURL  *string       `json:"next_url,omitempty"`
	PrevURL  *string       `json:"prev_url,omitempty"`
}

// ValidatePage rejects page numbers outside [1, MaxPage].
func ValidatePage(page int) error {
	if page < 1 {
		return models.NewFieldError("page", "page must be 1 or greater")
	}
	if page > MaxPage {
		return models.NewFieldError("page", fmt.Sprintf("page must be at most %d", MaxPage))
	}
	return nil
}

// Window returns the LIMIT/OFFSET pair covering [(page-1)*perPage, page*perPage).
func Window(page, perPage int) (limit, offset int) {
	return perPage, (page - 1) * perPage
}

// Paginate builds the page for items already cut to the window of page.
// link, when non-nil, renders the URL for a page number.
func Paginate(items []models.Post, total int64, page, perPage int, link func(int) string) *Page {
	if items == nil {
		items = []models.Post{}
	}
	p := &Page{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		HasNext: int64(page)*int64(perPage) < total,
		HasPrev: page > 1,
	}

	if p.HasNext {
		next := page + 1
		p.NextPage = &next
		if link != nil {
			u := link(next)
			p.NextURL = &u
		}
	}
	if p.HasPrev {
		prev := page - 1
		p.PrevPage = &prev
		if link != nil {
			u := link(prev)
			p.PrevURL = &u
		}
	}
	return p
}
