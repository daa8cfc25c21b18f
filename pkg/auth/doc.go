// Package auth provides pluggable authentication for the responder HTTP API.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Allow (identity found), Deny
// (credentials invalid), or Abstain (can't handle). A configurable default
// decision applies when all authenticators abstain.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from the
// completion engine.
package auth
