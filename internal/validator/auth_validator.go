package validator

import (
	"context"
	"regexp"

	"github.com/shinobi04/ThinkStore-backend/internal/usecase"
)

const (
	usernameMin = 5
	usernameMax = 50
	passwordMin = 8
	// bcryptは72バイトまで
	passwordMax = 72
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateSignup(ctx context.Context, username string, password string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	return validatePassword(password)
}

// ログインの入力を検証（強度ルールは見ない）
func (v *authValidator) ValidateLogin(ctx context.Context, username string, password string) error {
	if username == "" || password == "" {
		return usecase.NewValidationError("Username and password are required")
	}
	if len(username) > usernameMax || len(password) > passwordMax {
		return usecase.NewValidationError("Invalid credentials format")
	}
	return nil
}

func validateUsername(username string) error {
	switch {
	case len(username) < usernameMin:
		return usecase.NewValidationError("Username must be at least 5 characters")
	case len(username) > usernameMax:
		return usecase.NewValidationError("Username must not exceed 50 characters")
	case !usernamePattern.MatchString(username):
		return usecase.NewValidationError("Username can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < passwordMin {
		return usecase.NewValidationError("Password must be at least 8 characters")
	}
	if len(password) > passwordMax {
		return usecase.NewValidationError("Password must not exceed 72 bytes")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}

	switch {
	case !upper:
		return usecase.NewValidationError("Password must contain at least one uppercase letter")
	case !lower:
		return usecase.NewValidationError("Password must contain at least one lowercase letter")
	case !digit:
		return usecase.NewValidationError("Password must contain at least one number")
	case !special:
		return usecase.NewValidationError("Password must contain at least one special character")
	}
	return nil
}
