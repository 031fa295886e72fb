package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit = 10
	MaxLimit     = 200
)

// PaginationParams is cursor pagination over a (timestamp, id) pair, used
// by the sensor log listing. The id component keeps rows that share a
// timestamp from being skipped across page boundaries.
type PaginationParams struct {
	Limit    int
	Before   *time.Time
	BeforeID *uint
}

type CursorResponse struct {
	Data       interface{} `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

func ParsePagination(c *gin.Context) PaginationParams {
	p := PaginationParams{Limit: DefaultLimit}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			p.Limit = l
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	// Cursor format: "<RFC3339Nano>|<id>"; a bare timestamp still parses.
	if beforeStr := c.Query("before"); beforeStr != "" {
		tsPart, idPart, _ := strings.Cut(beforeStr, "|")
		if t, err := time.Parse(time.RFC3339Nano, tsPart); err == nil {
			p.Before = &t
			if idPart != "" {
				if id, err := strconv.ParseUint(idPart, 10, 64); err == nil {
					beforeID := uint(id)
					p.BeforeID = &beforeID
				}
			}
		}
	}

	return p
}
