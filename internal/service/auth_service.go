package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/libris-api/internal/dto"
	"github.com/noah-isme/libris-api/internal/models"
	"github.com/noah-isme/libris-api/internal/repository"
)

// AuthService issues signed tokens for valid credentials.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) Result
}

type authService struct {
	users    repository.UserRepository
	recorder ActivityRecorder
	secret   []byte
	tokenTTL time.Duration
	logger   zerolog.Logger
}

// NewAuthService constructs the login service.
func NewAuthService(users repository.UserRepository, recorder ActivityRecorder, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		users:    users,
		recorder: recorder,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) Result {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return BadRequestResult("username and password are required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return unauthorizedLogin()
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch user for login")
		return InternalResult("")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Warn().Str("username", username).Msg("login rejected, bad credentials")
		return unauthorizedLogin()
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to sign token")
		return InternalResult("")
	}

	s.auditLogin(ctx, user)

	return OKResult("login successful", dto.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
	})
}

func (s *authService) issueToken(user models.User) (string, error) {
	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      fmt.Sprintf("%d", user.ID),
		"username": user.Username,
		"role":     role,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) auditLogin(ctx context.Context, user models.User) {
	if s.recorder == nil {
		return
	}
	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	entry := ActivityEntry{
		Actor:       Actor{ID: user.ID, Username: user.Username, Role: role, Authenticated: true},
		Action:      models.ActionLogin,
		EntityType:  "user",
		Description: fmt.Sprintf("user %s logged in", user.Username),
		AffectedIDs: []uint{user.ID},
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record login")
	}
}

func unauthorizedLogin() Result {
	return Result{Success: false, Status: 401, Message: "invalid credentials"}
}
