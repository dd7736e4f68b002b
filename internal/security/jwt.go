package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

const algRS256 = "RS256"

// DefaultSessionTTL is the validity window of a session token.
const DefaultSessionTTL = 7 * 24 * time.Hour

type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens. It signs with HS256 and a shared
// secret unless a KeyRing is set, in which case it signs RS256 with the
// ring's signing key and verifies against any key in the ring by kid.
type Issuer struct {
	secret []byte
	keys   *KeyRing
	ttl    time.Duration
	now    func() time.Time
}

func NewHS256Issuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: normTTL(ttl), now: time.Now}
}

func NewRS256Issuer(ring *KeyRing, ttl time.Duration) *Issuer {
	return &Issuer{keys: ring, ttl: normTTL(ttl), now: time.Now}
}

func normTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultSessionTTL
	}
	return ttl
}

// WithClock replaces the time source used for iat/exp and for validation.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

func (i *Issuer) Issue(uid string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	c := Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Subject:   uid,
		},
	}
	if i.keys != nil {
		k := i.keys.Signing()
		t := jwt.NewWithClaims(jwt.SigningMethodRS256, c)
		t.Header["kid"] = k.Kid
		s, err := t.SignedString(k.Private)
		return s, exp, err
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	s, err := t.SignedString(i.secret)
	return s, exp, err
}

// Verify returns the user id carried by token. Malformed tokens, bad
// signatures and unexpected algorithms yield ErrInvalidToken; tokens past
// their expiry yield ErrTokenExpired.
func (i *Issuer) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	method := jwt.SigningMethodHS256.Alg()
	if i.keys != nil {
		method = algRS256
	}
	t, err := jwt.ParseWithClaims(token, &Claims{}, i.keyFunc,
		jwt.WithValidMethods([]string{method}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return "", ErrInvalidToken
	}
	uid := c.UID
	if uid == "" {
		uid = c.Subject
	}
	if uid == "" {
		return "", ErrInvalidToken
	}
	return uid, nil
}

func (i *Issuer) keyFunc(t *jwt.Token) (interface{}, error) {
	if i.keys == nil {
		return i.secret, nil
	}
	kid, _ := t.Header["kid"].(string)
	if pk, ok := i.keys.Lookup(kid); ok {
		return pk, nil
	}
	return nil, errors.New("unknown kid")
}

// JWKS returns the public keys that verify tokens from this issuer. It is
// empty in HS256 mode.
func (i *Issuer) JWKS() JWKS {
	if i.keys == nil {
		return JWKS{Keys: []JWK{}}
	}
	return i.keys.JWKS()
}
