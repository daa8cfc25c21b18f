// Package apikey provides an API key authenticator that validates
// bearer tokens against a static key store using SHA-256 hashing
// and constant-time comparison.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/relaykit/relay/pkg/auth"
)

// keyEntry maps a key hash to an identity.
type keyEntry struct {
	keyHash [32]byte
	subject string
}

// Authenticator validates bearer tokens against a static key store.
type Authenticator struct {
	keys []keyEntry
}

// Entry is the configuration format for API keys.
type Entry struct {
	Key     string
	Subject string
}

// New creates an API key authenticator from a list of raw keys and subjects.
// Keys are hashed immediately; plaintext keys are not stored.
func New(entries []Entry) *Authenticator {
	a := &Authenticator{}
	for _, e := range entries {
		a.keys = append(a.keys, keyEntry{
			keyHash: sha256.Sum256([]byte(e.Key)),
			subject: e.Subject,
		})
	}
	return a
}

// Authenticate extracts the bearer token and validates it.
// Returns Allow if valid, Deny if a bearer token is present but invalid,
// Abstain if no Authorization header or not a Bearer token.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.Result {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.Result{Decision: auth.Abstain}
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return auth.Result{Decision: auth.Abstain}
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return auth.Result{Decision: auth.Deny, Err: auth.ErrUnauthenticated}
	}

	tokenHash := sha256.Sum256([]byte(token))

	for _, entry := range a.keys {
		if subtle.ConstantTimeCompare(tokenHash[:], entry.keyHash[:]) == 1 {
			return auth.Result{
				Decision: auth.Allow,
				Identity: &auth.Identity{Subject: entry.subject},
			}
		}
	}

	return auth.Result{Decision: auth.Deny, Err: auth.ErrUnauthenticated}
}
