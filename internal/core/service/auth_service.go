package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/insanos/auth-server/internal/core/domain"
	"github.com/insanos/auth-server/internal/core/ports"
	"github.com/insanos/auth-server/internal/metrics"
)

// AuthService implements login, registration and token-to-claims resolution.
type AuthService struct {
	store   ports.CredentialStore
	hasher  ports.PasswordHasher
	tokens  ports.TokenService
	limiter ports.LoginLimiter
	log     zerolog.Logger
	now     func() time.Time

	// dummyHash is verified against when no usable account matches, so a
	// rejected login costs one hash comparison either way.
	dummyHash string
}

// NewAuthService wires the service. limiter may be nil to disable lockouts.
func NewAuthService(
	store ports.CredentialStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	limiter ports.LoginLimiter,
	log zerolog.Logger,
) *AuthService {
	dummy, err := hasher.Hash("dummy-password-for-unknown-accounts")
	if err != nil {
		log.Warn().Err(err).Msg("failed to prepare dummy password hash")
	}
	return &AuthService{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		limiter:   limiter,
		log:       log,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// Authenticate verifies creds and issues a session token. Unknown users,
// disabled users and wrong passwords all fail with domain.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if creds.Identifier == "" || creds.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		locked, err := s.limiter.Locked(ctx, creds.Identifier)
		if err != nil {
			s.log.Warn().Err(err).Msg("login limiter check failed, continuing")
		} else if locked {
			metrics.LoginAttemptsTotal.WithLabelValues("locked").Inc()
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.lookup(ctx, creds.Identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(creds.Password, s.dummyHash)
			s.failed(ctx, creds.Identifier)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	hash := user.PasswordHash
	if !user.Enabled {
		hash = s.dummyHash
	}
	if !s.hasher.Verify(creds.Password, hash) || !user.Enabled {
		s.failed(ctx, creds.Identifier)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, creds.Identifier); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login limiter")
		}
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user authenticated")

	return &domain.Session{
		Token:     token.Raw,
		Type:      domain.TokenType,
		ExpiresAt: token.ExpiresAt,
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Roles:     user.Roles,
	}, nil
}

// lookup matches identifier as a username first. Usernames may contain "@",
// so the email lookup is only a fallback.
func (s *AuthService) lookup(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := s.store.FindByUsername(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) && strings.Contains(identifier, "@") {
		return s.store.FindByEmail(ctx, identifier)
	}
	return user, err
}

func (s *AuthService) failed(ctx context.Context, identifier string) {
	metrics.LoginAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
	s.log.Info().Str("identifier", identifier).Msg("login rejected")
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, identifier); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}

// Register creates a new enabled account. Requested roles are mapped with
// domain.ResolveRoles.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidRegistration
	}
	if len(in.Password) > domain.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidRegistration, domain.MaxPasswordBytes)
	}

	exists, err := s.store.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrUsernameTaken
	}

	exists, err = s.store.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        domain.ResolveRoles(in.Roles),
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.store.Save(ctx, user)
	if err != nil {
		// A concurrent registration may win the race after the checks above.
		if errors.Is(err, domain.ErrUserExists) {
			return nil, s.conflict(ctx, in)
		}
		if errors.Is(err, domain.ErrUsernameTaken) || errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues(roleLabel(created.Roles)).Inc()
	s.log.Info().
		Int64("user_id", created.ID).
		Str("username", created.Username).
		Strs("roles", created.Roles).
		Msg("user registered")

	return created, nil
}

// conflict works out which unique field a racing insert collided on.
func (s *AuthService) conflict(ctx context.Context, in ports.RegisterInput) error {
	if exists, err := s.store.ExistsByEmail(ctx, in.Email); err == nil && exists {
		if taken, err := s.store.ExistsByUsername(ctx, in.Username); err != nil || !taken {
			return domain.ErrEmailTaken
		}
	}
	return domain.ErrUsernameTaken
}

// ResolveClaims validates raw and loads the subject's current account data.
// Token failures are returned as is; a missing or disabled account yields
// domain.ErrUnauthenticated.
func (s *AuthService) ResolveClaims(ctx context.Context, raw string) (*domain.Claims, error) {
	tc, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	user, err := s.store.FindByUsername(ctx, tc.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve claims: %w", err)
	}
	if !user.Enabled {
		return nil, domain.ErrUnauthenticated
	}

	return &domain.Claims{
		TokenClaims: *tc,
		UserID:      user.ID,
		Email:       user.Email,
		Roles:       user.Roles,
	}, nil
}

func roleLabel(roles []string) string {
	if len(roles) == 0 {
		return "none"
	}
	return strings.Join(roles, ",")
}
