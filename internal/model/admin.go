package model

import (
	"fmt"
	"time"
)

// Admin is a staff account allowed to change item state.
type Admin struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// MinPasswordLength is the shortest accepted admin password.
const MinPasswordLength = 6

// ValidatePassword checks an admin password against the length policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters long", MinPasswordLength),
		}
	}
	return nil
}
