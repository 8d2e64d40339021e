// Package pagination turns page/limit query parameters into offsets and
// wraps result pages for the response envelope.
package pagination

import (
	"github.com/gin-gonic/gin"

	"stayhub/pkg/response"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type query struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Params is a clamped page request.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse reads page and limit from the query string. Malformed values fall back to the defaults.
func Parse(c *gin.Context) Params {
	var q query
	if err := c.ShouldBindQuery(&q); err != nil {
		return New(0, 0)
	}
	return New(q.Page, q.Limit)
}

func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Wrap builds the paged payload for items out of total rows.
func (p Params) Wrap(items interface{}, total int64) response.Paged {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return response.Paged{Items: items, Total: total, Page: p.Page, Limit: p.Limit, Pages: pages}
}
