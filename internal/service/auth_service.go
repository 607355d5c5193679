package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/titulhq/titul-gateway/internal/config"
	"github.com/titulhq/titul-gateway/internal/model"
	"github.com/titulhq/titul-gateway/internal/upstream"
)

// Claims extends JWT standard claims with the gateway session fields.
// The role mirrors the upstream user record at login time; the upstream
// re-checks authorization on every admin write regardless.
type Claims struct {
	jwt.RegisteredClaims
	TelegramID int64      `json:"telegram_id"`
	Name       string     `json:"name"`
	Role       model.Role `json:"role"`
}

// Session is the issued token plus the user snapshot behind it.
type Session struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// AuthService issues and validates gateway session tokens.
type AuthService struct {
	cfg *config.Config
	rdb *redis.Client
	api *upstream.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, api *upstream.Client) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb, api: api}
}

// OpenSession resolves the Telegram user upstream and issues a JWT
// carrying their role snapshot. Users the upstream does not know get a
// plain user-role session so they can still take tests.
func (s *AuthService) OpenSession(ctx context.Context, telegramID int64, name string) (*Session, error) {
	user, err := s.api.GetUser(ctx, telegramID)
	if err != nil {
		var apiErr *upstream.APIError
		if !errors.As(err, &apiErr) || apiErr.Status != 404 {
			return nil, err
		}
		user = &model.User{TelegramID: telegramID, Name: name, Role: model.RoleUser}
	}
	if user.Name == "" {
		user.Name = name
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatInt(telegramID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TelegramID: user.TelegramID,
		Name:       user.Name,
		Role:       user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Session{Token: signed, User: *user}, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// RecallStudentName returns the display name remembered from the
// student's last attempt start, or "" when none is stored.
func (s *AuthService) RecallStudentName(ctx context.Context, telegramID int64) (string, error) {
	name, err := s.rdb.Get(ctx, config.CacheKey.StudentNameKey(telegramID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return name, err
}
