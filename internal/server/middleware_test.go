package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiddlewareApp(t *testing.T, method string) *fiber.App {
	t.Helper()
	srv := &Server{
		config: &config.Config{
			AllowedOrigins: "http://localhost:5173",
		},
	}

	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Add(method, "/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func exhaustLimiter(t *testing.T, app *fiber.App, method string) {
	t.Helper()
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(method, "/limited", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}
}

func TestSetupMiddleware_RateLimitedResponseIncludesCORSHeaders(t *testing.T) {
	app := newMiddlewareApp(t, http.MethodGet)
	exhaustLimiter(t, app, http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Too many requests, please try again later.", body["message"])
	assert.Len(t, body, 1)
}

func TestSetupMiddleware_PreflightBypassesLimiter(t *testing.T) {
	app := newMiddlewareApp(t, http.MethodPatch)
	exhaustLimiter(t, app, http.MethodPatch)

	limitedReq := httptest.NewRequest(http.MethodPatch, "/limited", nil)
	limitedReq.Header.Set("Origin", "http://localhost:5173")
	limitedResp, err := app.Test(limitedReq, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, limitedResp.StatusCode)
	_ = limitedResp.Body.Close()

	preflightReq := httptest.NewRequest(http.MethodOptions, "/limited", nil)
	preflightReq.Header.Set("Origin", "http://localhost:5173")
	preflightReq.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	preflightReq.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	preflightResp, err := app.Test(preflightReq, -1)
	require.NoError(t, err)
	defer func() { _ = preflightResp.Body.Close() }()

	assert.Equal(t, fiber.StatusNoContent, preflightResp.StatusCode)
	assert.Equal(t, "http://localhost:5173", preflightResp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, preflightResp.Header.Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestSetupMiddleware_SecurityAndTraceHeaders(t *testing.T) {
	app := newMiddlewareApp(t, http.MethodGet)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "cross-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}
