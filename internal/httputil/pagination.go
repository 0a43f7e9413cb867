package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultPageLimit is the page size of listings without a limit parameter.
	DefaultPageLimit = 50
	// MaxPageLimit bounds the limit parameter of cluster and content listings.
	MaxPageLimit = 100
)

// Page is an offset window over a cluster or content listing.
type Page struct {
	Offset int
	Limit  int
}

// ParsePage reads the offset and limit query parameters of a listing.
func ParsePage(c *gin.Context) (Page, error) {
	page := Page{Limit: DefaultPageLimit}

	if raw, ok := c.GetQuery("offset"); ok {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return Page{}, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
		}
		page.Offset = offset
	}

	if raw, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxPageLimit {
			return Page{}, fmt.Errorf("invalid limit parameter: must be between 1 and %d", MaxPageLimit)
		}
		page.Limit = limit
	}

	return page, nil
}
