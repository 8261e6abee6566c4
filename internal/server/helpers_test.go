package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"postId", "post ID"},
		{"tradeRequestId", "trade request ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		p := parsePagination(c)
		return c.JSON(fiber.Map{"page": p.Page, "limit": p.Limit})
	})

	tests := []struct {
		name  string
		query string
		page  int
		limit int
	}{
		{"defaults", "", 1, 10},
		{"explicit", "?page=3&limit=25", 3, 25},
		{"garbage falls back", "?page=abc&limit=xyz", 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var body map[string]int
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.page, body["page"])
			assert.Equal(t, tt.limit, body["limit"])
		})
	}
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"valid", "/items/42", http.StatusOK},
		{"zero", "/items/0", http.StatusBadRequest},
		{"negative", "/items/-3", http.StatusBadRequest},
		{"not a number", "/items/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == http.StatusBadRequest {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "Invalid ID", body["message"])
			}
		})
	}
}
