package ports

import (
	"context"

	"github.com/insanos/auth-server/internal/core/domain"
)

// CredentialStore defines persistence operations for user accounts.
//
// Implementations must enforce uniqueness of username and email at write time.
// Save reports a collision as domain.ErrUsernameTaken or domain.ErrEmailTaken,
// or domain.ErrUserExists when the colliding field is unknown.
type CredentialStore interface {
	// FindByUsername returns domain.ErrUserNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByEmail returns domain.ErrUserNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Save inserts user and returns it with its assigned ID.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
}

// PasswordHasher is a one-way password hash.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// LoginLimiter tracks failed logins per identifier.
type LoginLimiter interface {
	Locked(ctx context.Context, identifier string) (bool, error)
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}
