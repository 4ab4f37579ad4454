package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/insanos/auth-server/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// TokenService issues and validates HS256 signed JWTs carrying sub, iat and exp.
// The secret is fixed for the lifetime of the service.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		// Expiry is checked by Validate so the boundary second stays valid.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithStrictDecoding(),
			jwt.WithoutClaimsValidation(),
		),
		now: time.Now,
	}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject valid from now until now+TTL.
func (s *TokenService) Issue(subject string) (*domain.Token, error) {
	if subject == "" {
		return nil, domain.ErrEmptySubject
	}
	if len(s.secret) == 0 {
		return nil, errors.New("token service: signing secret not configured")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &domain.Token{
		Raw: raw,
		TokenClaims: domain.TokenClaims{
			Subject:   subject,
			IssuedAt:  claims.IssuedAt.Time,
			ExpiresAt: claims.ExpiresAt.Time,
		},
	}, nil
}

// Validate verifies the signature and expiry of raw and returns its claims.
// It fails with domain.ErrTokenMalformed, domain.ErrTokenBadSignature or
// domain.ErrTokenExpired.
func (s *TokenService) Validate(raw string) (*domain.TokenClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, s.classify(raw, err)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrTokenMalformed
	}

	// Valid up to and including the expiry instant.
	if s.now().After(claims.ExpiresAt.Time) {
		return nil, domain.ErrTokenExpired
	}

	out := &domain.TokenClaims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// ExtractSubject validates raw and returns its subject.
func (s *TokenService) ExtractSubject(raw string) (string, error) {
	claims, err := s.Validate(raw)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// classify maps a jwt parse error onto the domain token errors. A signature
// segment that fails to decode while header and payload are well formed counts
// as a bad signature, not a malformed token.
func (s *TokenService) classify(raw string, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrTokenBadSignature
	case errors.Is(err, jwt.ErrTokenMalformed):
		parts := strings.Split(raw, ".")
		if len(parts) != 3 {
			return domain.ErrTokenMalformed
		}
		unsigned := parts[0] + "." + parts[1] + "."
		if _, _, uerr := s.parser.ParseUnverified(unsigned, &jwt.RegisteredClaims{}); uerr == nil {
			return domain.ErrTokenBadSignature
		}
		return domain.ErrTokenMalformed
	default:
		return domain.ErrTokenMalformed
	}
}
