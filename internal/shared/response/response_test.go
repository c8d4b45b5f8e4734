package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leaveflow/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	meta := response.NewPaginationMeta(21, 2, 10)

	assert.Equal(t, int64(21), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 0, response.NewPaginationMeta(5, 1, 0).TotalPages)
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, response.DefaultPageSize},
		{"?page=3&page_size=25", 3, 25},
		{"?page=-1&page_size=0", 1, response.DefaultPageSize},
		{"?page=x&page_size=1000", 1, response.MaxPageSize},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/leaves"+tc.query, nil)

		page, size := response.ParsePagination(c)

		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.pageSize, size, tc.query)
	}
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	response.Abort(c, http.StatusForbidden, "FORBIDDEN", "nope")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)

	var body response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Ok)
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
}
