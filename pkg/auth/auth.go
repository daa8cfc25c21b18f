package auth

import (
	"context"
	"errors"
	"net/http"
)

// Decision represents the three possible outcomes of authentication.
type Decision int

const (
	// Allow means credentials are valid. The chain stops and the identity is used.
	Allow Decision = iota

	// Deny means credentials are present but invalid. The chain stops and the
	// request is rejected.
	Deny

	// Abstain means this authenticator cannot handle the credentials type.
	// The chain continues to the next authenticator.
	Abstain
)

// Result carries the outcome of an authentication attempt.
type Result struct {
	Decision Decision
	Identity *Identity // populated only when Decision == Allow
	Err      error     // populated only when Decision == Deny
}

// Identity represents an authenticated caller.
type Identity struct {
	// Subject is the unique identifier (required, non-empty).
	Subject string
}

// Authenticator examines request credentials and returns a three-outcome vote.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) Result
}

// ErrUnauthenticated is returned when credentials are missing or invalid.
var ErrUnauthenticated = errors.New("authentication required")

// Chain evaluates authenticators in order using three-outcome voting.
type Chain struct {
	// Authenticators are evaluated left to right.
	Authenticators []Authenticator

	// DefaultDecision is used when all authenticators abstain.
	// Use Allow for open deployments (auth.type "none") or Deny otherwise.
	DefaultDecision Decision
}

// Authenticate runs the chain. Stops on the first Allow or Deny.
// If all abstain, returns the default decision.
func (c *Chain) Authenticate(ctx context.Context, r *http.Request) Result {
	for _, authn := range c.Authenticators {
		result := authn.Authenticate(ctx, r)
		if result.Decision != Abstain {
			return result
		}
	}

	if c.DefaultDecision == Allow {
		return Result{
			Decision: Allow,
			Identity: &Identity{Subject: "anonymous"},
		}
	}

	return Result{
		Decision: Deny,
		Err:      ErrUnauthenticated,
	}
}
