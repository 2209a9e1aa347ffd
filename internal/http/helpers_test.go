package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		value  string
		wantID uint
		wantOK bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"99999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: tt.value}}

			id, ok := parseIDParam(c, "id")
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 25},
		{"page=3&limit=10", 3, 10},
		{"page=0&limit=0", 1, 25},
		{"page=-2&limit=500", 1, 25},
		{"page=x&limit=y", 1, 25},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			page, limit := parsePagination(c, 25, 100)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := newPaginatedResponse([]int{1, 2}, 5, 2, 2)
	assert.Equal(t, 2, resp.Offset)
	assert.Equal(t, 3, resp.TotalPages)
	assert.True(t, resp.HasMore)

	resp = newPaginatedResponse([]int{}, 0, 1, 25)
	assert.Equal(t, 1, resp.TotalPages)
	assert.False(t, resp.HasMore)
}
