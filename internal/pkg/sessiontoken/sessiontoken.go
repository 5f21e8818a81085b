// Package sessiontoken issues and verifies the stateless session tokens
// handed out by the session exchange. A token binds a subject (email) to an
// expiry and nothing else: privileges are always re-resolved server-side.
package sessiontoken

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	keyInfo    = "session-token"
	keyLength  = 32
	defaultTTL = 24 * time.Hour
)

var (
	ErrInvalid = errors.New("invalid session token")
	ErrExpired = errors.New("session token expired")
)

// Claims are the session token claims. Subject carries the email.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs and parses HS256 session tokens.
type Issuer struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// DeriveKey stretches the configured secret into the HMAC key used for
// session tokens, so the raw secret is never used directly as a signing key.
func DeriveKey(secret string) ([]byte, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session secret is empty")
	}
	key := make([]byte, keyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return key, nil
}

// NewIssuer builds an Issuer. A non-positive ttl falls back to 24h.
func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{key: key, issuer: issuer, ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Sign issues a token for subject.
func (i *Issuer) Sign(subject string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("subject is required")
	}
	now := i.now().UTC()
	exp := now.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies the signature, issuer and expiry of token.
func (i *Issuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return i.key, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}
