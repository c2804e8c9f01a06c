// Package credentials mints and validates bearer credentials. Every
// credential is an HS512 JWT signed with its own random key; the key lives
// only in the key store, so a credential verifies only while the issuing
// process still holds that key.
package credentials

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// KeySize is the length in bytes of every per-credential signing key.
// HS512 wants at least 64.
const KeySize = 64

// Claims is the payload carried by a credential.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// Keys is the subset of the key store the issuer needs.
type Keys interface {
	Store(credential string, key []byte)
	Get(credential string) ([]byte, bool)
	Remove(credential string)
}

type Issuer struct {
	keys    Keys
	now     func() time.Time
	randKey func(int) ([]byte, error)
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source for iat/exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// WithKeySource overrides the random source for signing keys.
func WithKeySource(fn func(int) ([]byte, error)) Option {
	return func(i *Issuer) { i.randKey = fn }
}

func NewIssuer(keys Keys, opts ...Option) *Issuer {
	i := &Issuer{
		keys:    keys,
		now:     time.Now,
		randKey: common.RandomBytes,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue mints a credential for subjectID carrying roles, valid for ttl.
// A zero ttl produces a credential that is already expired.
func (i *Issuer) Issue(subjectID string, roles []string, ttl time.Duration) (string, error) {
	key, err := i.randKey(KeySize)
	if err != nil {
		return "", fmt.Errorf("signing key generation: %w", err)
	}
	defer common.WipeByteArray(key)

	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles: append([]string{}, roles...),
	})

	credential, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing credential: %w", err)
	}

	i.keys.Store(credential, key)
	return credential, nil
}

// Validate checks that credential's key is still held, its signature
// verifies against that key and it has not expired. Every failure is
// reported as common.ErrInvalidCredential.
func (i *Issuer) Validate(credential string) (*Claims, error) {
	key, ok := i.keys.Get(credential)
	if !ok {
		return nil, common.ErrInvalidCredential
	}
	defer common.WipeByteArray(key)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(credential, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			// the key is useless from now on
			i.keys.Remove(credential)
		}
		return nil, common.ErrInvalidCredential
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidCredential
	}
	if claims.Roles == nil {
		claims.Roles = []string{}
	}

	return claims, nil
}

// Invalidate forgets credential's key. It always succeeds.
func (i *Issuer) Invalidate(credential string) {
	i.keys.Remove(credential)
}
