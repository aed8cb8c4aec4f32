package auth

import (
	"fmt"
	"net/mail"
	"strings"
)

// ParseEmail валидирует введённый email и отдает его в нижнем регистре
func ParseEmail(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" || len(strings.Fields(message)) != 1 {
		return "", fmt.Errorf("%w, email must be a single word", ErrValidation)
	}

	addr, err := mail.ParseAddress(message)
	if err != nil || addr.Address != message {
		return "", fmt.Errorf("%w, invalid email %q", ErrValidation, message)
	}

	return strings.ToLower(message), nil
}

// ParseRole валидирует сообщение пользователя и отдает роль
func ParseRole(message string) (Role, error) {
	message = strings.TrimSpace(message)
	if len(strings.Fields(message)) != 1 {
		return "", fmt.Errorf("%w, cannot parse role, invalid parameter", ErrValidation)
	}

	role := Role(strings.ToLower(message))
	switch role {
	case RoleTeacher, RoleStudent:
		return role, nil
	default:
		return "", fmt.Errorf("%w, unknown role %q", ErrValidation, message)
	}
}
