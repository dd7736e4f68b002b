package security_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tazhibayda/authflow/internal/security"
)

func writeTempRSA(t *testing.T) string {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "rsa.pem")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(k)}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestHS256_IssueVerify(t *testing.T) {
	iss := security.NewHS256Issuer("s3cret", 0)

	tok, exp, err := iss.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	if d := time.Until(exp); d < 7*24*time.Hour-time.Minute || d > 7*24*time.Hour {
		t.Fatalf("unexpected expiry window: %v", d)
	}
	uid, err := iss.Verify(tok)
	if err != nil || uid != "u1" {
		t.Fatalf("verify: uid=%q err=%v", uid, err)
	}
}

func TestHS256_ExpiredAfterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	iss := security.NewHS256Issuer("s3cret", 7*24*time.Hour).WithClock(func() time.Time { return now })

	tok, _, err := iss.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(7*24*time.Hour - time.Second)
	if _, err := iss.Verify(tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	now = now.Add(2 * time.Second)
	if _, err := iss.Verify(tok); !errors.Is(err, security.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestHS256_WrongSecret(t *testing.T) {
	tok, _, err := security.NewHS256Issuer("right", 0).Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.NewHS256Issuer("wrong", 0).Verify(tok); !errors.Is(err, security.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	iss := security.NewHS256Issuer("k", 0)
	for _, tok := range []string{"", "not.a.jwt", "abc"} {
		if _, err := iss.Verify(tok); !errors.Is(err, security.ErrInvalidToken) {
			t.Fatalf("%q: expected ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestVerify_RejectsNoneAlg(t *testing.T) {
	c := security.Claims{UID: "u1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.NewHS256Issuer("k", 0).Verify(tok); !errors.Is(err, security.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRS256_JWKSRoundTrip(t *testing.T) {
	ring, err := security.LoadKeyRing(security.KeyFile{Kid: "kidA", Path: writeTempRSA(t)}, security.KeyFile{})
	if err != nil {
		t.Fatal(err)
	}
	iss := security.NewRS256Issuer(ring, time.Minute)

	tok, _, err := iss.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}

	keyfunc := func(tk *jwt.Token) (interface{}, error) {
		kid, _ := tk.Header["kid"].(string)
		if pk, ok := ring.Lookup(kid); ok {
			return pk, nil
		}
		return nil, errors.New("no key by kid")
	}
	parsed, err := jwt.ParseWithClaims(tok, &security.Claims{}, keyfunc, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil || !parsed.Valid {
		t.Fatalf("invalid token: %v", err)
	}
	if c := parsed.Claims.(*security.Claims); c.UID != "u1" {
		t.Fatalf("claims mismatch: %#v", c)
	}

	if uid, err := iss.Verify(tok); err != nil || uid != "u1" {
		t.Fatalf("verify: uid=%q err=%v", uid, err)
	}
	set := iss.JWKS()
	if len(set.Keys) != 1 || set.Keys[0].Kid != "kidA" || set.Keys[0].Alg != "RS256" {
		t.Fatalf("jwks: %#v", set)
	}
}

func TestRS256_RejectsHS256Token(t *testing.T) {
	ring, err := security.LoadKeyRing(security.KeyFile{Kid: "kidA", Path: writeTempRSA(t)}, security.KeyFile{})
	if err != nil {
		t.Fatal(err)
	}
	tok, _, err := security.NewHS256Issuer("k", 0).Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := security.NewRS256Issuer(ring, 0).Verify(tok); !errors.Is(err, security.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
