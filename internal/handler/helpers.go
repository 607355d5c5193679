package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// parseInt64Param reads a positive int64 path parameter.
func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// parseOptionalTime parses an RFC3339 timestamp pointer. A nil input
// returns (nil, true); a present but malformed value fails.
func parseOptionalTime(raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}
