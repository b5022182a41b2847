package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents offset-based pagination parameters, used by the
// message history endpoint.
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

func GetPaginationParams(c echo.Context) PaginationParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("limit"))

	if page <= 0 {
		page = 1
	}

	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize

	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   offset,
	}
}

// CursorParams represents cursor-based pagination parameters, used by the
// notification list endpoint. The cursor is the last-seen notification id.
type CursorParams struct {
	CursorID   string
	Limit      int
	UnreadOnly bool
}

func GetCursorParams(c echo.Context) CursorParams {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unreadOnly"))

	return CursorParams{
		CursorID:   c.QueryParam("cursorId"),
		Limit:      limit,
		UnreadOnly: unreadOnly,
	}
}
