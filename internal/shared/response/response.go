package response

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type PaginationMeta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
}

func NewPaginationMeta(total int64, page, limit int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		// Logika pembulatan ke atas: (total + limit - 1) / limit
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return PaginationMeta{
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   limit,
	}
}

// ParsePagination reads page and page_size from the query string, clamping
// both to sane bounds.
func ParsePagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(DefaultPageSize)))
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

type ApiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  any             `json:"data,omitempty"`
	Meta  *PaginationMeta `json:"meta,omitempty"`
	Error *ErrorBody      `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Success(c *gin.Context, status int, data any, meta *PaginationMeta) {
	c.JSON(status, ApiEnvelope{
		Ok:   true,
		Data: data,
		Meta: meta,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details any) {
	c.JSON(status, ApiEnvelope{
		Ok: false,
		Error: &ErrorBody{
			Code:    errorCode,
			Message: message,
			Details: details,
		},
	})
}

// Abort writes an error envelope and stops the middleware chain.
func Abort(c *gin.Context, status int, errorCode string, message string) {
	Error(c, status, errorCode, message, nil)
	c.Abort()
}
