package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/insanos/auth-server/internal/core/domain"
	"github.com/insanos/auth-server/internal/core/ports"
)

// SeedUser describes an account created at startup when its email is unused.
type SeedUser struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

// DefaultSeedUsers returns the stock accounts with the given passwords.
func DefaultSeedUsers(userPassword, adminPassword string) []SeedUser {
	return []SeedUser{
		{Username: "insanos", Email: "user@insanos.com", Password: userPassword, Roles: []string{domain.RoleUser}},
		{Username: "admin", Email: "admin@insanos.com", Password: adminPassword, Roles: []string{domain.RoleUser, domain.RoleAdmin}},
	}
}

// SeedUsers creates each seed whose email is not yet registered and returns
// how many were created. Seeds without a password are skipped.
func SeedUsers(ctx context.Context, store ports.CredentialStore, hasher ports.PasswordHasher, seeds []SeedUser, log zerolog.Logger) (int, error) {
	created := 0
	for _, seed := range seeds {
		if seed.Password == "" {
			log.Warn().Str("username", seed.Username).Msg("seed user has no password, skipping")
			continue
		}

		exists, err := store.ExistsByEmail(ctx, seed.Email)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", seed.Username, err)
		}
		if exists {
			log.Debug().Str("username", seed.Username).Msg("seed user already present")
			continue
		}

		hash, err := hasher.Hash(seed.Password)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", seed.Username, err)
		}

		roles := seed.Roles
		if len(roles) == 0 {
			roles = []string{domain.RoleUser}
		}

		now := time.Now().UTC()
		_, err = store.Save(ctx, &domain.User{
			Username:     seed.Username,
			Email:        seed.Email,
			PasswordHash: hash,
			Roles:        roles,
			Enabled:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrUserExists) {
				log.Warn().Err(err).Str("username", seed.Username).Msg("seed user conflicts with an existing account")
				continue
			}
			return created, fmt.Errorf("seed %s: %w", seed.Username, err)
		}

		created++
		log.Info().Str("username", seed.Username).Strs("roles", roles).Msg("seed user created")
	}
	return created, nil
}
