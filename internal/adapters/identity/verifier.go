package identity

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidIDToken reports a malformed, unsigned or mis-issued ID token.
	ErrInvalidIDToken = errors.New("identity: invalid ID token")
	// ErrIDTokenExpired reports an expired ID token.
	ErrIDTokenExpired = errors.New("identity: ID token expired")
	// ErrInvalidNonce reports a nonce mismatch between session and token.
	ErrInvalidNonce = errors.New("identity: nonce mismatch")
)

// Identity is the verified subject carried out of an ID token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// jwksCache fetches the provider's RSA signing keys and caches them by
// key ID. Keys are refetched after the TTL or on an unknown kid, which
// covers provider key rotation without a restart.
type jwksCache struct {
	url  string
	http *http.Client
	ttl  time.Duration

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func newJWKSCache(url string, client *http.Client) *jwksCache {
	return &jwksCache{
		url:  url,
		http: client,
		ttl:  15 * time.Minute,
		keys: map[string]*rsa.PublicKey{},
	}
}

// key returns the public key for kid, refreshing the cache when the kid
// is unknown or the cache is stale.
func (j *jwksCache) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if k, ok := j.keys[kid]; ok && time.Since(j.fetchedAt) < j.ttl {
		return k, nil
	}
	if err := j.refreshLocked(ctx); err != nil {
		return nil, err
	}
	k, ok := j.keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown signing key %q", kid)
	}
	return k, nil
}

func (j *jwksCache) refreshLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return err
	}
	resp, err := j.http.Do(req)
	if err != nil {
		return fmt.Errorf("jwks fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks fetch: status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("jwks decode: %w", err)
	}

	keys := map[string]*rsa.PublicKey{}
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			continue
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: int(new(big.Int).SetBytes(eBytes).Int64()),
		}
	}
	if len(keys) == 0 {
		return errors.New("jwks: no usable RSA keys")
	}
	j.keys = keys
	j.fetchedAt = time.Now()
	return nil
}

// Verifier validates ID tokens against the provider's published keys.
type Verifier struct {
	issuer   string
	clientID string
	leeway   time.Duration
	jwks     *jwksCache
}

// NewVerifier builds a verifier for one provider and client registration.
func NewVerifier(cfg Config) *Verifier {
	return &Verifier{
		issuer:   cfg.Issuer,
		clientID: cfg.ClientID,
		leeway:   time.Minute,
		jwks:     newJWKSCache(cfg.JWKSURL, &http.Client{Timeout: 10 * time.Second}),
	}
}

// Verify checks the token's signature, issuer, audience, expiry and nonce.
// PRE: expectedNonce is the value stored on the session at login start,
// or empty to skip the check
// POST: Identity.Subject is non-empty
func (v *Verifier) Verify(ctx context.Context, idToken, expectedNonce string) (Identity, error) {
	if idToken == "" {
		return Identity{}, ErrInvalidIDToken
	}

	token, err := jwt.Parse(idToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token missing kid header")
		}
		return v.jwks.key(ctx, kid)
	}, jwt.WithLeeway(v.leeway))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrIDTokenExpired
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidIDToken
	}

	if iss, _ := claims["iss"].(string); iss != v.issuer {
		return Identity{}, fmt.Errorf("%w: issuer %q", ErrInvalidIDToken, iss)
	}
	if !audienceContains(claims["aud"], v.clientID) {
		return Identity{}, fmt.Errorf("%w: audience mismatch", ErrInvalidIDToken)
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, fmt.Errorf("%w: missing sub", ErrInvalidIDToken)
	}
	if expectedNonce != "" {
		if nonce, _ := claims["nonce"].(string); nonce != expectedNonce {
			return Identity{}, ErrInvalidNonce
		}
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return Identity{Subject: sub, Email: email, Name: name}, nil
}

// audienceContains handles aud as either a string or an array of strings.
func audienceContains(aud interface{}, want string) bool {
	switch a := aud.(type) {
	case string:
		return a == want
	case []interface{}:
		for _, item := range a {
			if s, ok := item.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}
