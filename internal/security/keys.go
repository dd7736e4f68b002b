package security

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
)

// SigningKey is an RSA key pair published under Kid.
type SigningKey struct {
	Kid     string
	Private *rsa.PrivateKey
}

func (k *SigningKey) Public() *rsa.PublicKey { return &k.Private.PublicKey }

// KeyFile locates a PEM encoded RSA private key.
type KeyFile struct {
	Kid  string
	Path string
}

func (f KeyFile) set() bool { return f.Kid != "" || f.Path != "" }

// KeyRing signs with one key and verifies against every key it holds. A
// rotation publishes the next key first; once caches have picked it up the
// next key is configured as the active one.
type KeyRing struct {
	signing *SigningKey
	keys    []*SigningKey
}

// LoadKeyRing reads the active key and, when configured, the next key.
func LoadKeyRing(active, next KeyFile) (*KeyRing, error) {
	act, err := ReadSigningKey(active)
	if err != nil {
		return nil, fmt.Errorf("active key: %w", err)
	}
	if !next.set() {
		return NewKeyRing(act)
	}
	nxt, err := ReadSigningKey(next)
	if err != nil {
		return nil, fmt.Errorf("next key: %w", err)
	}
	return NewKeyRing(act, nxt)
}

// NewKeyRing signs with active and also accepts tokens signed by others.
func NewKeyRing(active *SigningKey, others ...*SigningKey) (*KeyRing, error) {
	r := &KeyRing{signing: active}
	for _, k := range append([]*SigningKey{active}, others...) {
		if k.Kid == "" {
			return nil, errors.New("key id is required")
		}
		if _, dup := r.Lookup(k.Kid); dup {
			return nil, fmt.Errorf("duplicate key id %q", k.Kid)
		}
		r.keys = append(r.keys, k)
	}
	return r, nil
}

func ReadSigningKey(f KeyFile) (*SigningKey, error) {
	if f.Kid == "" || f.Path == "" {
		return nil, errors.New("both key id and key path are required")
	}
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	priv, err := parseRSAPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return &SigningKey{Kid: f.Kid, Private: priv}, nil
}

func parseRSAPrivateKey(raw []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("no PEM block")
	}
	if block.Type == "RSA PRIVATE KEY" {
		return x509.ParsePKCS1PrivateKey(block.Bytes)
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("unsupported PEM type %q", block.Type)
	}
	k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	if rk, ok := k.(*rsa.PrivateKey); ok {
		return rk, nil
	}
	return nil, fmt.Errorf("PKCS#8 key is %T, want RSA", k)
}

func (r *KeyRing) Signing() *SigningKey { return r.signing }

// Lookup finds the verification key published under kid.
func (r *KeyRing) Lookup(kid string) (*rsa.PublicKey, bool) {
	for _, k := range r.keys {
		if k.Kid == kid {
			return k.Public(), true
		}
	}
	return nil, false
}

// JWK is an RSA public key in RFC 7517 form.
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWKS lists the signing key first, then the rest in load order.
func (r *KeyRing) JWKS() JWKS {
	set := JWKS{Keys: make([]JWK, 0, len(r.keys))}
	for _, k := range r.keys {
		set.Keys = append(set.Keys, jwkOf(k))
	}
	return set
}

func jwkOf(k *SigningKey) JWK {
	pub := k.Public()
	b64 := base64.RawURLEncoding.EncodeToString
	return JWK{
		Kty: "RSA",
		Kid: k.Kid,
		Use: "sig",
		Alg: algRS256,
		N:   b64(pub.N.Bytes()),
		E:   b64(big.NewInt(int64(pub.E)).Bytes()),
	}
}
