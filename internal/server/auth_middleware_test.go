package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func whoAmI(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"userID":   c.Locals("userID"),
		"wsTicket": c.Locals("wsTicket"),
	})
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestServer_AuthRequired(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := newAuthTestServer(new(MockUserRepository), rdb)

	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), whoAmI)

	valid, _, err := s.tokens.Issue(123, "trader")
	require.NoError(t, err)

	now := time.Now()
	foreign := func(iss, aud string, exp time.Time) string {
		return signToken(t, jwt.MapClaims{
			"sub": "123",
			"iss": iss,
			"aud": aud,
			"exp": exp.Unix(),
			"jti": "foreign-jti",
		})
	}

	tests := []struct {
		name           string
		authHeader     string
		query          string
		expectedStatus int
	}{
		{"Valid Token", "Bearer " + valid, "", http.StatusOK},
		{"Token In Query Is Ignored", "", "?token=" + valid, http.StatusUnauthorized},
		{"Expired Token", "Bearer " + foreign("ecomtrade-api", "ecomtrade-client", now.Add(-time.Hour)), "", http.StatusUnauthorized},
		{"Invalid Issuer", "Bearer " + foreign("wrong-issuer", "ecomtrade-client", now.Add(time.Hour)), "", http.StatusUnauthorized},
		{"Invalid Audience", "Bearer " + foreign("ecomtrade-api", "wrong-audience", now.Add(time.Hour)), "", http.StatusUnauthorized},
		{"Missing Header", "", "", http.StatusUnauthorized},
		{"Malformed Bearer Format", "Token " + valid, "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == http.StatusOK {
				var body map[string]interface{}
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, float64(123), body["userID"])
			}
		})
	}
}

func TestServer_AuthRequired_RevokedToken(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := newAuthTestServer(new(MockUserRepository), rdb)

	app := fiber.New()
	app.Post("/logout", s.AuthRequired(), s.Logout)
	app.Get("/protected", s.AuthRequired(), whoAmI)

	token, jti, err := s.tokens.Issue(42, "trader")
	require.NoError(t, err)

	call := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/protected"))
	assert.Equal(t, http.StatusOK, call(http.MethodPost, "/logout"))

	ttl := rdb.TTL(context.Background(), cache.BlacklistKey(jti)).Val()
	assert.Greater(t, ttl, 6*24*time.Hour)

	assert.Equal(t, http.StatusUnauthorized, call(http.MethodGet, "/protected"))
}

func TestServer_AuthRequired_RedisDownStillAuthenticates(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := newAuthTestServer(new(MockUserRepository), rdb)
	mr.SetError("READONLY unavailable")

	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), whoAmI)

	token, _, err := s.tokens.Issue(8, "trader")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired_WSTicket(t *testing.T) {
	_, rdb := newTestRedis(t)
	s := newAuthTestServer(new(MockUserRepository), rdb)
	ctx := context.Background()

	app := fiber.New()
	app.Get(wsStreamPath, s.AuthRequired(), whoAmI)
	app.Get("/api/other", s.AuthRequired(), whoAmI)

	setTicket := func(ticket string, userID uint) {
		require.NoError(t, rdb.Set(ctx, cache.WSTicketKey(ticket),
			strconv.FormatUint(uint64(userID), 10), time.Minute).Err())
	}

	t.Run("ticket is single use", func(t *testing.T) {
		setTicket("ticket-1", 123)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, wsStreamPath+"?ticket=ticket-1", nil))
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(123), body["userID"])
		assert.Equal(t, "ticket-1", body["wsTicket"])

		exists, err := rdb.Exists(ctx, cache.WSTicketKey("ticket-1")).Result()
		require.NoError(t, err)
		assert.Zero(t, exists)

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, wsStreamPath+"?ticket=ticket-1", nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("stream rejects bearer tokens", func(t *testing.T) {
		token, _, err := s.tokens.Issue(123, "trader")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, wsStreamPath, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bad ticket falls back to bearer off the stream", func(t *testing.T) {
		token, _, err := s.tokens.Issue(55, "trader")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/other?ticket=missing", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestIssueWSTicket(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := newAuthTestServer(new(MockUserRepository), rdb)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(77))
		return c.Next()
	})
	app.Post("/ticket", s.IssueWSTicket)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/ticket", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expiresIn"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Ticket)
	assert.Equal(t, 60, body.ExpiresIn)

	stored, err := mr.Get(cache.WSTicketKey(body.Ticket))
	require.NoError(t, err)
	assert.Equal(t, "77", stored)
	assert.Equal(t, cache.WSTicketTTL, mr.TTL(cache.WSTicketKey(body.Ticket)))
}

func TestIssueWSTicket_NoRedis(t *testing.T) {
	s := newAuthTestServer(new(MockUserRepository), nil)
	app := fiber.New()
	app.Post("/ticket", s.IssueWSTicket)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/ticket", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
