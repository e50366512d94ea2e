package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

var (
	// ErrInvalidCredentials is returned for an unknown username or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongPassword is returned when the current password does not match.
	ErrWrongPassword = errors.New("current password is incorrect")
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// RandomPassword creates a random password of the given length.
func RandomPassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("generating password: %w", err)
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

// Login checks the credentials and issues a session token.
func Login(ctx context.Context, db *sql.DB, secret, username, password string) (string, *model.Admin, error) {
	admin, err := store.GetAdminByUsername(ctx, db, username)
	if err != nil {
		return "", nil, err
	}
	if admin == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(secret, admin.ID, admin.Username)
	if err != nil {
		return "", nil, err
	}
	return token, admin, nil
}

// Logout revokes the session until it would have expired anyway.
func Logout(ctx context.Context, db *sql.DB, claims *Claims) error {
	return store.RevokeToken(ctx, db, claims.ID, claims.ExpiresAt.Time)
}

// Authorize validates the token and checks it has not been revoked.
func Authorize(ctx context.Context, db *sql.DB, secret, token string) (*Claims, error) {
	claims, err := ValidateToken(secret, token)
	if err != nil {
		return nil, err
	}

	revoked, err := store.IsTokenRevoked(ctx, db, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("token revoked")
	}
	return claims, nil
}

// ChangePassword replaces the admin's password after verifying the current one.
func ChangePassword(ctx context.Context, db *sql.DB, adminID int64, current, next string) error {
	if err := model.ValidatePassword(next); err != nil {
		return err
	}

	admin, err := store.GetAdmin(ctx, db, adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return fmt.Errorf("admin %d: %w", adminID, model.ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}

	return SetPassword(ctx, db, admin, next)
}

// SetPassword stores a new password for admin without checking the old one.
func SetPassword(ctx context.Context, db *sql.DB, admin *model.Admin, password string) error {
	if err := model.ValidatePassword(password); err != nil {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	ok, err := store.UpdateAdminPassword(ctx, db, admin.ID, hash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("admin %d: %w", admin.ID, model.ErrNotFound)
	}

	slog.Info("admin password changed", "admin", admin.Username)
	return nil
}
