package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"tasktracker/internal/auth"
	"tasktracker/internal/cache"
	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

var (
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = apperrors.Unauthorized("Invalid credentials, user does not exist")
	// ErrUnknownSubject is returned when a valid token names a user that does not exist.
	ErrUnknownSubject = apperrors.Unauthorized("Token subject does not match any user")
)

// AuthService handles registration, login and bearer token authentication.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*model.User, error)
	Login(ctx context.Context, username, password string) (accessToken string, err error)
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	cache      *cache.Client
	log        *zap.Logger
}

// NewAuthService creates a new authentication service. cache may be nil.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, cache *cache.Client, log *zap.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		cache:      cache,
		log:        log,
	}
}

// UserCachePrefix prefixes every cached username lookup.
const UserCachePrefix = "user:username:"

func (s *authService) cacheKey(username string) string {
	return UserCachePrefix + username
}

// FlushUserCache drops every cached username lookup. It must run whenever
// the users table is dropped: ids restart at 1 and a stale entry would
// resolve a token to another user.
func FlushUserCache(ctx context.Context, c *cache.Client) (int, error) {
	n, err := c.DeletePrefix(ctx, UserCachePrefix)
	if err != nil {
		return n, fmt.Errorf("flush user cache: %w", err)
	}
	return n, nil
}

// Register creates a new user with a bcrypt password hash.
func (s *authService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"username", username},
		{"email", email},
		{"password", password},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.Validation("Missing field(s): " + strings.Join(missing, ", "))
	}

	if err := s.ensureAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race against a concurrent registration
			return nil, apperrors.Conflict("Username or email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *authService) ensureAvailable(ctx context.Context, username, email string) error {
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return apperrors.Conflict(fmt.Sprintf("Username %s exists", username))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check username: %w", err)
	}

	_, err = s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return apperrors.Conflict(fmt.Sprintf("Email %s exists", email))
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

// Login verifies the credentials and returns a signed access token whose
// subject is the username.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("login for unknown user", zap.String("username", username))
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("login with bad password", zap.Uint("user_id", user.ID))
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAccessToken(user.Username)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	s.log.Info("login success", zap.Uint("user_id", user.ID))
	return token, nil
}

// Authenticate verifies token and resolves its subject to a user.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	v := s.jwtService.Verify(token)
	if v.Status != auth.StatusValid {
		s.log.Warn("rejected bearer token", zap.Stringer("status", v.Status), zap.Error(v.Err))
		return nil, apperrors.Unauthorized(tokenMessage(v.Status))
	}

	user, err := s.userByUsername(ctx, v.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("token for unknown subject", zap.String("username", v.Subject), zap.String("jti", v.TokenID))
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("resolve token subject: %w", err)
	}
	return user, nil
}

// userByUsername reads through the cache. Users are immutable, so an entry
// only goes stale when the tables are reset, which flushes the cache. The
// password hash is never part of the payload.
func (s *authService) userByUsername(ctx context.Context, username string) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(username), &cached) && cached.ID != 0 {
		return &cached, nil
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, s.cacheKey(username), user, userCacheTTL)
	return user, nil
}

func tokenMessage(status auth.Status) string {
	switch status {
	case auth.StatusExpired:
		return "Token has expired"
	case auth.StatusMalformed:
		return "Malformed token"
	default:
		return "Signature verification failed"
	}
}
