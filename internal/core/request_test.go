// AngelaMos | 2026
// request_test.go

package core

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageFromQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  PageParams
	}{
		{"defaults", "", PageParams{Page: 1, PageSize: 20}},
		{"explicit", "?page=3&page_size=5", PageParams{Page: 3, PageSize: 5}},
		{"clamped", "?page=0&page_size=500", PageParams{Page: 1, PageSize: 100}},
		{"garbage", "?page=x&page_size=-4", PageParams{Page: 1, PageSize: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/items"+tt.query, nil)
			assert.Equal(t, tt.want, PageFromQuery(r))
		})
	}
}

func TestPageBounds(t *testing.T) {
	p := PageParams{Page: 2, PageSize: 10}

	start, end := p.Bounds(25)
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)

	start, end = p.Bounds(15)
	assert.Equal(t, 10, start)
	assert.Equal(t, 15, end)

	start, end = p.Bounds(3)
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)
}
