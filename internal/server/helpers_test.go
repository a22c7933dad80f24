package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param string
		want  string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"listingOwnerId", "listing owner ID"},
		{"slug", "slug"},
	}

	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.want, humanizeParam(tt.param))
		})
	}
}

func TestPaginate(t *testing.T) {
	app := fiber.New()
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name string
		page Pagination
		want []int
	}{
		{name: "First Page", page: Pagination{Limit: 2}, want: []int{1, 2}},
		{name: "Middle", page: Pagination{Limit: 2, Offset: 2}, want: []int{3, 4}},
		{name: "Short Tail", page: Pagination{Limit: 2, Offset: 4}, want: []int{5}},
		{name: "Past End", page: Pagination{Limit: 2, Offset: 10}, want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := app.AcquireCtx(&fasthttp.RequestCtx{})
			defer app.ReleaseCtx(c)

			assert.Equal(t, tt.want, paginate(c, items, tt.page))
			assert.Equal(t, "5", string(c.Response().Header.Peek("X-Total-Count")))
		})
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()

	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Limit: 20}},
		{"limit=5&offset=10", Pagination{Limit: 5, Offset: 10}},
		{"limit=500", Pagination{Limit: maxPaginationLimit}},
		{"limit=-1&offset=-3", Pagination{Limit: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rc := &fasthttp.RequestCtx{}
			rc.Request.SetRequestURI("/items?" + tt.query)
			c := app.AcquireCtx(rc)
			defer app.ReleaseCtx(c)

			assert.Equal(t, tt.want, parsePagination(c, 20))
		})
	}
}
