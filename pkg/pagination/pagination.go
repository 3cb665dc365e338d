// Package pagination bounds the page/limit window of list endpoints.
package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a clamped page window. Offset is always (Page-1)*Limit.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// New clamps page and limit. Non-positive values fall back to the defaults.
func New(page, limit int) Params {
	page = max(page, DefaultPage)
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Parse reads ?page= and ?limit=. Malformed values read as unset.
func Parse(c *gin.Context) Params {
	return New(queryInt(c, "page"), queryInt(c, "limit"))
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return n
}

// Scope restricts a query to the window, for use with db.Scopes.
func (p Params) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset).Limit(p.Limit)
}

// Pages is the number of pages total rows span at this limit.
func (p Params) Pages(total int64) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
