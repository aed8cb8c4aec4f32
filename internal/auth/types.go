package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Ошибки авторизации
var (
	ErrValidation   = errors.New("validation error")
	ErrInvalidToken = errors.New("invalid token")
)

// Role — роль пользователя по отношению к курсу.
type Role string

// Роли
const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Claims — поля токена доступа, которые нужны клиенту.
// Подпись не проверяется: это делает бэкенд.
type Claims struct {
	jwt.RegisteredClaims
}

// Допуск на расхождение часов клиента и бэкенда
const clockSkew = 5 * time.Second
