package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	apperr "github.com/Dan9191/money-marathon/internal/errors"
)

const (
	minPasswordLen = 6
	// bcrypt rejects longer inputs
	maxPasswordBytes = 72
	maxNameLen     = 100
)

func validateRegistration(name, email, password string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", apperr.Invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", "", apperr.Invalid("name", "must be at most %d characters", maxNameLen)
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return "", "", err
	}
	if len(password) < minPasswordLen {
		return "", "", apperr.Invalid("password", "must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return "", "", apperr.Invalid("password", "must be at most %d bytes", maxPasswordBytes)
	}
	return name, email, nil
}

func validateLogin(email, password string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", apperr.Invalid("password", "is required")
	}
	return email, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Invalid("email", "is not a valid address")
	}
	return email, nil
}

func validatePlanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Invalid("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", apperr.Invalid("name", "must be at most %d characters", maxNameLen)
	}
	return name, nil
}
