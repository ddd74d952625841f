package httputil

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MaxPageSize is the largest page size a listing accepts.
const MaxPageSize = 100

// ParsePage parses the optional 1-based page and pageSize query parameters. Absent
// parameters yield zero, which callers treat as "first page" and "everything".
func ParsePage(c *gin.Context, pageParam, pageSizeParam string) (page, pageSize int, err error) {
	if raw, ok := c.GetQuery(pageParam); ok {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, fmt.Errorf("invalid %s parameter: must be a positive integer", pageParam)
		}
	}

	if raw, ok := c.GetQuery(pageSizeParam); ok {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 || pageSize > MaxPageSize {
			return 0, 0, fmt.Errorf("invalid %s parameter: must be between 1 and %d", pageSizeParam, MaxPageSize)
		}
	}

	return page, pageSize, nil
}
