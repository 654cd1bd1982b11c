// Package token issues and verifies signed, time-limited session tokens.
//
// Tokens are self-contained JWTs with claims sub (user id), role and exp.
// Nothing is stored server-side, so a token stays valid until it expires
// even if the account is blocked afterwards.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
)

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = 30 * time.Minute

// Config carries the process-wide signing settings.
type Config struct {
	Secret    []byte
	Algorithm string // HS256, HS384 or HS512
	TTL       time.Duration
}

// Claims is the decoded payload of a valid token.
type Claims struct {
	UserID    int64
	Role      domain.RoleName
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies session tokens.
type Service struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewService validates cfg and returns a Service.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token: empty signing secret")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token: unsupported algorithm %q", alg)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: cfg.Secret, method: method, ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of s that reads the current time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	c := *s
	c.now = now
	return &c
}

// Issue signs a token for userID and role using the configured TTL.
func (s *Service) Issue(userID int64, role domain.RoleName) (string, error) {
	return s.IssueWithTTL(userID, role, s.ttl)
}

// IssueWithTTL signs a token that expires ttl from now.
func (s *Service) IssueWithTTL(userID int64, role domain.RoleName, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	claims := jwtClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, structure and expiry. It returns
// domain.ErrTokenExpired or domain.ErrTokenInvalid on failure.
func (s *Service) Verify(raw string) (*Claims, error) {
	var claims jwtClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.Role == "" {
		return nil, fmt.Errorf("%w: missing subject or role", domain.ErrTokenInvalid)
	}

	out := &Claims{
		UserID:    userID,
		Role:      domain.RoleName(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
