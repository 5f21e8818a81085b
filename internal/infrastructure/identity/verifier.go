// Package identity verifies assertions issued by the federated identity
// provider and extracts the subject identifier and display attributes.
package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

const defaultLeeway = 30 * time.Second

// Options configures a Verifier. At least one of HMACSecret or PublicKeys is
// required; Issuer and Audience are enforced when non-empty.
type Options struct {
	Issuer     string
	Audience   string
	HMACSecret string
	PublicKeys map[string]*rsa.PublicKey
	Leeway     time.Duration
}

// Verifier checks identity provider ID tokens.
type Verifier struct {
	opts    Options
	methods []string
	now     func() time.Time
}

type assertionClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// NewVerifier validates opts and returns a Verifier.
func NewVerifier(opts Options) (*Verifier, error) {
	var methods []string
	if opts.HMACSecret != "" {
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if len(opts.PublicKeys) > 0 {
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}
	if len(methods) == 0 {
		return nil, errors.New("identity: no verification key configured")
	}
	if opts.Leeway <= 0 {
		opts.Leeway = defaultLeeway
	}
	return &Verifier{opts: opts, methods: methods, now: time.Now}, nil
}

// Verify parses assertion and returns the identity it asserts.
func (v *Verifier) Verify(_ context.Context, assertion string) (domain.Identity, error) {
	if assertion == "" {
		return domain.Identity{}, fmt.Errorf("%w: empty assertion", domain.ErrIdentityInvalid)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.opts.Leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.opts.Issuer))
	}
	if v.opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.opts.Audience))
	}

	claims := &assertionClaims{}
	tkn, err := jwt.ParseWithClaims(assertion, claims, v.keyFor, parserOpts...)
	if err != nil || !tkn.Valid {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrIdentityInvalid, err)
	}

	email := domain.NormalizeEmail(claims.Email)
	if email == "" {
		return domain.Identity{}, fmt.Errorf("%w: assertion carries no email", domain.ErrIdentityInvalid)
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return domain.Identity{}, fmt.Errorf("%w: email not verified", domain.ErrIdentityInvalid)
	}

	return domain.Identity{
		Email:       email,
		DisplayName: claims.Name,
		AvatarURL:   claims.Picture,
	}, nil
}

func (v *Verifier) keyFor(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		return []byte(v.opts.HMACSecret), nil
	case *jwt.SigningMethodRSA:
		kid, _ := token.Header["kid"].(string)
		key, ok := v.opts.PublicKeys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return key, nil
	default:
		return nil, jwt.ErrTokenSignatureInvalid
	}
}

// LoadPublicKeys reads a JSON object mapping key ids to PEM encoded RSA
// public keys or X.509 certificates, the format identity providers publish
// their signing certificates in.
func LoadPublicKeys(path string) (map[string]*rsa.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity keys: %w", err)
	}
	return ParsePublicKeys(raw)
}

// ParsePublicKeys is LoadPublicKeys for an in-memory document.
func ParsePublicKeys(raw []byte) (map[string]*rsa.PublicKey, error) {
	var pems map[string]string
	if err := json.Unmarshal(raw, &pems); err != nil {
		return nil, fmt.Errorf("decode identity keys: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("identity key %q: %w", kid, err)
		}
		keys[kid] = key
	}
	return keys, nil
}
