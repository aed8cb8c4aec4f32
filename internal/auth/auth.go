package auth

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/letsssgooo/coursedeck/internal/domain/models"
)

// ParseClaims разбирает токен доступа без проверки подписи.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims, nil
}

// UserID возвращает id пользователя из поля sub.
func (c *Claims) UserID() (int, error) {
	id, err := strconv.Atoi(c.Subject)
	if err != nil {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, c.Subject)
	}

	return id, nil
}

// Expired сообщает, истёк ли токен к моменту now. Токен без срока не истекает.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}

	return !now.Add(clockSkew).Before(c.ExpiresAt.Time)
}

// TokenStore хранит токен текущей сессии в памяти.
// Реализует client.TokenSource.
type TokenStore struct {
	mu     sync.RWMutex
	token  string
	claims *Claims
}

// NewTokenStore создаёт пустое хранилище токена.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Set сохраняет токен, если он разбирается и содержит id пользователя.
func (s *TokenStore) Set(token string) error {
	claims, err := ParseClaims(token)
	if err != nil {
		return err
	}

	if _, err = claims.UserID(); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.claims = claims
	s.mu.Unlock()

	return nil
}

// Token возвращает текущий токен или пустую строку.
func (s *TokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Claims возвращает поля текущего токена или nil.
func (s *TokenStore) Claims() *Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.claims
}

// Clear забывает токен (выход из аккаунта).
func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.claims = nil
	s.mu.Unlock()
}

// Valid сообщает, есть ли неистёкший токен.
func (s *TokenStore) Valid(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.claims != nil && !s.claims.Expired(now)
}

// RoleFor возвращает роль пользователя в курсе: автор курса — преподаватель.
func RoleFor(user *models.User, course *models.Course) Role {
	if user != nil && course != nil && course.TeacherID == user.ID {
		return RoleTeacher
	}

	return RoleStudent
}
