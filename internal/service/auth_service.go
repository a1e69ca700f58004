package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tradegoal/internal/apperr"
	"tradegoal/internal/models"
	"tradegoal/internal/repository"
)

type AuthService struct {
	Repo      repository.Repository
	Plans     *PlanService
	Logger    *zap.Logger
	JWTSecret string
	TokenTTL  time.Duration
}

type AuthResult struct {
	Token string
	User  *models.User
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid email")
	}
	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	existing, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	// Every new user starts on FREE; upgrades go through /plans/subscribe.
	if s.Plans != nil {
		if _, err := s.Plans.Subscribe(ctx, user.ID, models.PlanFree); err != nil && s.Logger != nil {
			s.Logger.Warn("assign free plan failed", zap.Uint64("user_id", user.ID), zap.Error(err))
		}
	}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Authorization("invalid credentials")
	}
	if user.IsBlocked {
		return nil, apperr.Authorization("account blocked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Authorization("invalid credentials")
	}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.JWTSecret))
}
