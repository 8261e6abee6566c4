// Package middleware provides HTTP middleware shared by the API server:
// logging, request context, token verification, rate limiting, metrics and tracing.
package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenIssuer is the iss claim of every access token.
	TokenIssuer = "ecomtrade-api"
	// TokenAudience is the aud claim of every access token.
	TokenAudience = "ecomtrade-client"
	// TokenTTL is how long an access token stays valid.
	TokenTTL = 7 * 24 * time.Hour
)

var (
	ErrMissingToken = errors.New("authorization header required")
	ErrMalformed    = errors.New("invalid authorization header format")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims are the validated contents of an access token.
type Claims struct {
	UserID    uint
	Username  string
	JTI       string
	ExpiresAt time.Time
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager returns a TokenManager for the given signing secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for the user and returns it with its jti.
func (m *TokenManager) Issue(userID uint, username string) (string, string, error) {
	now := m.now()
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      TokenIssuer,
		"aud":      TokenAudience,
		"exp":      now.Add(TokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      jti,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti, nil
}

// Verify parses tokenString and checks signature, issuer, audience and subject.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return nil, ErrInvalidToken
	}

	out := &Claims{UserID: uint(id)}
	out.Username, _ = claims["username"].(string)
	out.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMalformed
	}
	return strings.TrimSpace(parts[1]), nil
}
