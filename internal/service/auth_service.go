package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/cache"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/middleware"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/repository"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "Invalid credentials"

// AuthService handles signup, login and token revocation.
type AuthService struct {
	users    repository.UserRepository
	tokens   *middleware.TokenManager
	rdb      *redis.Client
	hashCost int
	now      func() time.Time
}

// NewAuthService returns a new AuthService. rdb may be nil, in which case
// logout cannot revoke tokens before they expire.
func NewAuthService(users repository.UserRepository, tokens *middleware.TokenManager, rdb *redis.Client) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		rdb:      rdb,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is a signed access token and the user it was issued to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewAlreadyExistsError("User already exists")
	}
	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewAlreadyExistsError("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{Username: username, Email: email, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Login verifies the password for email. Unknown emails and wrong passwords
// yield the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}
	return s.issue(user)
}

// Logout revokes the token identified by claims until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *middleware.Claims) error {
	if s.rdb == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, cache.BlacklistKey(claims.JTI), "1", ttl).Err(); err != nil {
		return models.NewInternalError(fmt.Errorf("revoke token: %w", err))
	}
	return nil
}

// IsRevoked reports whether jti was logged out.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil || jti == "" {
		return false, nil
	}
	err := s.rdb.Get(ctx, cache.BlacklistKey(jti)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}

// Me returns the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, _, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
