package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"laludev-backend/internal/database"
	"laludev-backend/internal/models"
)

// BcryptCost is the work factor for stored administrator hashes.
const BcryptCost = 10

var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminStore is the persistence the credential check depends on.
type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*models.Administrator, error)
	Upsert(ctx context.Context, username, passwordHash string) (int64, error)
}

// Credentials verifies and provisions administrator passwords
type Credentials struct {
	admins    AdminStore
	dummyHash []byte
}

// NewCredentials creates a credential service over admins
func NewCredentials(admins AdminStore) *Credentials {
	// compared against when the username is unknown so both paths cost a bcrypt round
	dummy, err := bcrypt.GenerateFromPassword([]byte("laludev-dummy-password"), BcryptCost)
	if err != nil {
		panic(fmt.Sprintf("auth: failed to prepare dummy hash: %v", err))
	}
	return &Credentials{admins: admins, dummyHash: dummy}
}

// Verify checks username and password and returns the administrator ID.
// An unknown user and a wrong password both yield ErrInvalidCredentials.
func (c *Credentials) Verify(ctx context.Context, username, password string) (int64, error) {
	admin, err := c.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrAdminNotFound) {
			_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
			return 0, ErrInvalidCredentials
		}
		return 0, fmt.Errorf("failed to load administrator: %w", err)
	}

	// Verify password
	if err := VerifyPassword(admin.PasswordHash, password); err != nil {
		return 0, ErrInvalidCredentials
	}

	return admin.ID, nil
}

// Upsert creates the administrator or replaces its password
func (c *Credentials) Upsert(ctx context.Context, username, password string) (int64, error) {
	if strings.TrimSpace(username) == "" {
		return 0, errors.New("username is required")
	}
	if password == "" {
		return 0, errors.New("password is required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}

	id, err := c.admins.Upsert(ctx, username, hash)
	if err != nil {
		return 0, fmt.Errorf("failed to store administrator: %w", err)
	}
	return id, nil
}

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword compares plaintext password with stored hash.
func VerifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
